// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown closes the MongoDB connection if one was ever opened. A close
// error is returned so the process exits non-zero.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Mongo == nil {
		return nil
	}
	if !deps.Mongo.Connected() {
		logger.Info("mongo was never connected; nothing to close")
	}
	return deps.Mongo.Close(ctx)
}
