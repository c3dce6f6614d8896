// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/mongoconn"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EventHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: db_user, db_name, etc.
//   - Environment variables: EVENTHUB_DB_USER, EVENTHUB_DB_NAME, etc.
//   - Command-line flags: --db_user, --db_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "db_scheme", Default: "mongodb+srv", Desc: "MongoDB URI scheme: 'mongodb+srv' or 'mongodb'"},
	{Name: "db_user", Default: "", Desc: "MongoDB username (required)"},
	{Name: "db_pass", Default: "", Desc: "MongoDB password (required)"},
	{Name: "db_host", Default: "cluster0.mongodb.net", Desc: "MongoDB host or Atlas cluster address"},
	{Name: "db_name", Default: "eventhub", Desc: "MongoDB database name"},
	{Name: "db_app_name", Default: "eventhub", Desc: "appName reported to MongoDB"},
	{Name: "db_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},

	// Request body size is WAFFLE's max_request_body_bytes.
	{Name: "cors_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},
}

// LoadConfig loads WAFFLE core config and EventHub config.
//
// Precedence is flags > env > files > defaults, as WAFFLE merges them.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DBScheme:      appValues.String("db_scheme"),
		DBUser:        appValues.String("db_user"),
		DBPass:        appValues.String("db_pass"),
		DBHost:        appValues.String("db_host"),
		DBName:        appValues.String("db_name"),
		DBAppName:     appValues.String("db_app_name"),
		DBMaxPoolSize: uint64(appValues.Int("db_max_pool_size")),

		CORSOrigins: splitList(appValues.String("cors_origins")),
	}

	return coreCfg, appCfg, nil
}

// MongoURI builds the connection string from the configured parts.
func (c AppConfig) MongoURI() string {
	return mongoconn.BuildURI(mongoconn.URIParams{
		Scheme:   c.DBScheme,
		User:     c.DBUser,
		Password: c.DBPass,
		Host:     c.DBHost,
		AppName:  c.DBAppName,
	})
}

// ValidateConfig aborts startup when credentials are missing or the
// assembled URI is malformed. Nothing has been dialed at this point.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if strings.TrimSpace(appCfg.DBUser) == "" {
		err := apierr.NewStartupConfigError("db_user", "missing required database username (EVENTHUB_DB_USER)")
		logger.Error("invalid configuration", zap.String("key", err.Key), zap.Error(err))
		return err
	}
	if appCfg.DBPass == "" {
		err := apierr.NewStartupConfigError("db_pass", "missing required database password (EVENTHUB_DB_PASS)")
		logger.Error("invalid configuration", zap.String("key", err.Key), zap.Error(err))
		return err
	}
	if strings.TrimSpace(appCfg.DBHost) == "" {
		return apierr.NewStartupConfigError("db_host", "database host must not be empty")
	}
	if strings.TrimSpace(appCfg.DBName) == "" {
		return apierr.NewStartupConfigError("db_name", "database name must not be empty")
	}

	if err := wafflemongo.ValidateURI(appCfg.MongoURI()); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
