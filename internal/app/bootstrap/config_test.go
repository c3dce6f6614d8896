package bootstrap

import (
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// validAppConfig uses a plain mongodb:// host so URI validation needs no
// SRV lookup.
func validAppConfig() AppConfig {
	return AppConfig{
		DBScheme:      "mongodb",
		DBUser:        "eventhub",
		DBPass:        "s3cret",
		DBHost:        "localhost:27017",
		DBName:        "eventhub",
		DBAppName:     "eventhub",
		DBMaxPoolSize: 100,
		CORSOrigins:   []string{"*"},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantKey string
	}{
		{"missing user", func(c *AppConfig) { c.DBUser = "" }, "db_user"},
		{"blank user", func(c *AppConfig) { c.DBUser = "   " }, "db_user"},
		{"missing password", func(c *AppConfig) { c.DBPass = "" }, "db_pass"},
		{"missing host", func(c *AppConfig) { c.DBHost = "" }, "db_host"},
		{"missing database name", func(c *AppConfig) { c.DBName = "" }, "db_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(nil, cfg, testLogger())
			var sce *apierr.StartupConfigError
			if !errors.As(err, &sce) {
				t.Fatalf("expected StartupConfigError, got %v", err)
			}
			if sce.Key != tt.wantKey {
				t.Errorf("key: got %q, want %q", sce.Key, tt.wantKey)
			}
		})
	}
}

func TestMongoURI_EncodesCredentials(t *testing.T) {
	cfg := validAppConfig()
	cfg.DBScheme = "mongodb+srv"
	cfg.DBHost = "cluster0.mongodb.net"
	cfg.DBUser = "event admin"
	cfg.DBPass = "p@ss:w/rd"

	uri := cfg.MongoURI()

	if !strings.HasPrefix(uri, "mongodb+srv://") {
		t.Errorf("unexpected scheme in %q", uri)
	}
	if strings.Contains(uri, "p@ss") {
		t.Errorf("password was not escaped: %q", uri)
	}
	if !strings.Contains(uri, "@cluster0.mongodb.net/") {
		t.Errorf("host missing from %q", uri)
	}
	if !strings.Contains(uri, "appName=eventhub") {
		t.Errorf("appName missing from %q", uri)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example.com, ,https://b.example.com ")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("splitList: got %v", got)
	}
}
