// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections if missing and attaches JSON-Schema
// validators. On deployments that don't support collMod/validators, we log
// and skip.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", UsersSchema())
	// Events are free-form; the collection only needs to exist.
	ensure("events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		logger.Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// Another instance may have created it first.
		if isNamespaceExistsErr(err) {
			return nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	logger.Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

func commandMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandMatches(err, 115, "not implemented", "not supported")
}

// UsersSchema requires every user to carry an email and exactly one of the
// defined roles and statuses.
func UsersSchema() bson.M {
	roles := bson.A{}
	for _, r := range models.Roles {
		roles = append(roles, string(r))
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "role", "status"},
			"properties": bson.M{
				"email":     bson.M{"bsonType": "string", "minLength": 1},
				"name":      bson.M{"bsonType": "string"},
				"photoURL":  bson.M{"bsonType": "string"},
				"role":      bson.M{"enum": roles},
				"status":    bson.M{"enum": bson.A{string(models.StatusActive), string(models.StatusSuspended)}},
				"createdAt": bson.M{"bsonType": "date"},
				"lastLogin": bson.M{"bsonType": "date"},
				"updatedAt": bson.M{"bsonType": "date"},
			},
		},
	}
}
