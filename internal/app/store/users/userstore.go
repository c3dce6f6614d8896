package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Conn hands out the users collection, connecting on first use.
type Conn interface {
	Users(ctx context.Context) (*mongo.Collection, error)
}

type Store struct {
	conn Conn
	now  func() time.Time
}

func New(conn Conn) *Store {
	return &Store{conn: conn, now: time.Now}
}

// upsertAttempts bounds how often Upsert flips between update and insert
// when another request creates the same email in between.
const upsertAttempts = 3

var errEmailRequired = apierr.NewValidationError("email is required")

func (s *Store) coll(ctx context.Context) (*mongo.Collection, error) {
	c, err := s.conn.Users(ctx)
	if err != nil {
		return nil, apierr.NewDatabaseError("connect", err)
	}
	return c, nil
}

// timestamp is the store's notion of now, at the millisecond precision
// MongoDB keeps, so returned documents match what a later read sees.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// GetByEmail loads a user by normalized email. A missing user is a
// NotFoundError.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, errEmailRequired
	}
	c, err := s.coll(ctx)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apierr.NewNotFoundError("User not found")
		}
		return models.User{}, apierr.NewDatabaseError("get user", err)
	}
	return u, nil
}

// List returns every user. It never returns a nil slice.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, bson.M{})
	if err != nil {
		return nil, apierr.NewDatabaseError("list users", err)
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, apierr.NewDatabaseError("list users", err)
	}
	return out, nil
}

// RoleOf returns the stored role for email. ok is false when no such user
// exists; that is not an error.
func (s *Store) RoleOf(ctx context.Context, email string) (role models.Role, ok bool, err error) {
	email = normalize.Email(email)
	if email == "" {
		return "", false, nil
	}
	c, err := s.coll(ctx)
	if err != nil {
		return "", false, err
	}
	var doc struct {
		Role models.Role `bson:"role"`
	}
	proj := options.FindOne().SetProjection(bson.M{"role": 1})
	if err := c.FindOne(ctx, bson.M{"email": email}, proj).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, apierr.NewDatabaseError("get role", err)
	}
	return doc.Role, true, nil
}

// UpdateDoc is the $set applied to an existing user by Upsert. lastLogin is
// always refreshed; name and photoURL only when supplied and non-empty; role
// only when supplied together with the admin-request flag.
func UpdateDoc(p models.UserProfile, now time.Time) bson.M {
	set := bson.M{"lastLogin": now}
	if p.Name != nil && *p.Name != "" {
		set["name"] = *p.Name
	}
	if p.PhotoURL != nil && *p.PhotoURL != "" {
		set["photoURL"] = *p.PhotoURL
	}
	if p.Role != nil && p.AdminRequest {
		set["role"] = *p.Role
	}
	return set
}

// NewUser builds the document Upsert inserts for an unseen email.
func NewUser(email string, p models.UserProfile, now time.Time) models.User {
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		CreatedAt: now,
		LastLogin: &now,
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PhotoURL != nil {
		u.PhotoURL = *p.PhotoURL
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}

// Upsert updates the user with this email or creates one. created reports
// which happened. If a concurrent request inserts the same email first, the
// unique index rejects our insert and the update is retried.
func (s *Store) Upsert(ctx context.Context, email string, p models.UserProfile) (u models.User, created bool, err error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, false, errEmailRequired
	}
	if p.Role != nil && !p.Role.Valid() {
		return models.User{}, false, apierr.NewValidationError(`role must be "user"|"organizer"|"admin"`)
	}
	c, err := s.coll(ctx)
	if err != nil {
		return models.User{}, false, err
	}

	now := s.timestamp()
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < upsertAttempts; attempt++ {
		err := c.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": UpdateDoc(p, now)}, after).Decode(&u)
		if err == nil {
			return u, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, false, apierr.NewDatabaseError("update user", err)
		}

		nu := NewUser(email, p, now)
		if _, err := c.InsertOne(ctx, nu); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			return models.User{}, false, apierr.NewDatabaseError("create user", err)
		}
		return nu, true, nil
	}
	return models.User{}, false, apierr.NewDatabaseError("upsert user", errors.New("email contended by concurrent writers"))
}

// UpdateRole sets a user's role. An invalid role is a ValidationError and a
// missing user a NotFoundError.
func (s *Store) UpdateRole(ctx context.Context, email string, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, apierr.NewValidationError(`role must be "user"|"organizer"|"admin"`)
	}
	return s.setField(ctx, email, "role", role, "update role")
}

// UpdateStatus sets a user's status. An invalid status is a ValidationError
// and a missing user a NotFoundError.
func (s *Store) UpdateStatus(ctx context.Context, email string, st models.Status) (models.User, error) {
	if !st.Valid() {
		return models.User{}, apierr.NewValidationError(`status must be "active"|"suspended"`)
	}
	return s.setField(ctx, email, "status", st, "update status")
}

func (s *Store) setField(ctx context.Context, email, field string, value any, op string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, errEmailRequired
	}
	c, err := s.coll(ctx)
	if err != nil {
		return models.User{}, err
	}

	var u models.User
	err = c.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{field: value, "updatedAt": s.timestamp()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apierr.NewNotFoundError("User not found")
		}
		return models.User{}, apierr.NewDatabaseError(op, err)
	}
	return u, nil
}

// Delete removes a user by email. A missing user yields a zero count.
func (s *Store) Delete(ctx context.Context, email string) (models.DeleteAck, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.DeleteAck{}, errEmailRequired
	}
	c, err := s.coll(ctx)
	if err != nil {
		return models.DeleteAck{}, err
	}
	res, err := c.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return models.DeleteAck{}, apierr.NewDatabaseError("delete user", err)
	}
	return models.DeleteAck{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
