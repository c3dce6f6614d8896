package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      name,
		PhotoURL:  "",
		Role:      role,
		Status:    models.StatusActive,
		CreatedAt: now,
		LastLogin: &now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateEvent inserts an event with the given fields and returns its ID.
func (f *Fixtures) CreateEvent(ctx context.Context, fields bson.M) primitive.ObjectID {
	f.t.Helper()

	id := primitive.NewObjectID()
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return id
}
