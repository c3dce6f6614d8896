package validators_test

import (
	"testing"

	"github.com/dalemusser/eventhub/internal/app/system/validators"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"users", "events"} {
		if !found[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEnsureAll_RejectsInvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	users := db.Collection("users")
	if _, err := users.InsertOne(ctx, bson.M{"email": "ok@example.com", "role": "organizer", "status": "active"}); err != nil {
		t.Fatalf("valid insert failed: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"email": "bad@example.com", "role": "superadmin", "status": "active"}); err == nil {
		t.Error("expected insert with an out-of-enum role to fail")
	}
	if _, err := users.InsertOne(ctx, bson.M{"email": "bad2@example.com", "role": "user", "status": "banned"}); err == nil {
		t.Error("expected insert with an out-of-enum status to fail")
	}
}

func TestUsersSchema_ListsEveryRole(t *testing.T) {
	schema := validators.UsersSchema()["$jsonSchema"].(bson.M)
	props := schema["properties"].(bson.M)
	enum := props["role"].(bson.M)["enum"].(bson.A)
	if len(enum) != 3 {
		t.Errorf("role enum: got %v", enum)
	}
}
