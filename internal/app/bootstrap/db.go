// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/app/system/mongoconn"
	"github.com/dalemusser/eventhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConnectDB builds the connection manager. The connection itself is lazy:
// the first store call dials, so the service can start listening while the
// database is still unreachable and report that through /healthz.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	mgr := mongoconn.New(
		mongoconn.URIDialer(appCfg.MongoURI(), appCfg.DBMaxPoolSize),
		appCfg.DBName,
		logger,
		mongoconn.WithOnConnect(func(ctx context.Context, db *mongo.Database) error {
			return ensureSchemaOn(ctx, db, logger)
		}),
	)
	logger.Info("mongo connection manager ready (lazy)",
		zap.String("host", appCfg.DBHost),
		zap.String("database", appCfg.DBName))
	return DBDeps{Mongo: mgr}, nil
}

// EnsureSchema has nothing to do up front: dialing here would defeat the
// lazy connection. ensureSchemaOn runs once the first connection exists.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}

// ensureSchemaOn attaches the users validator and the unique email index.
// Both are idempotent.
func ensureSchemaOn(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, db, logger); err != nil {
		logger.Warn("collection validators not fully applied", zap.Error(err))
	}
	return indexes.EnsureAll(ctx, db, logger)
}
