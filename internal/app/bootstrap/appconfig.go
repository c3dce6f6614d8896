// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for EventHub.
//
// Values come from environment variables (EVENTHUB_*), configuration files,
// or command-line flags, loaded in LoadConfig. Listen ports, log level and
// environment name live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB connection. DBUser and DBPass are required; they are
	// percent-encoded into the connection string built by MongoURI.
	DBScheme      string // "mongodb+srv" (Atlas) or "mongodb"
	DBUser        string
	DBPass        string
	DBHost        string // e.g. cluster0.mongodb.net
	DBName        string
	DBAppName     string // appName URI option, shows up in Atlas metrics
	DBMaxPoolSize uint64

	// HTTP surface. The body size cap is CoreConfig.MaxRequestBodyBytes.
	CORSOrigins []string // allowed origins; "*" allows any
}
