// Package timeouts holds the per-operation deadlines applied to store calls.
//
//   - Ping: liveness checks and the initial connect
//   - Short: single-document reads and writes keyed by id or email
//   - Medium: collection scans (list, latest)
//
// Values default to the constants below and may be overridden once at
// startup with Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 5 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 15 * time.Second
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium}
}

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Ping
}

func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Short
}

func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Medium
}

// Configure overrides the non-zero values in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		cur.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		cur.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		cur.Medium = cfg.Medium
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT and TIMEOUT_MEDIUM as
// Go durations ("2s", "500ms"). Unset, unparsable or non-positive values are
// skipped. It returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	applied := 0
	for name, dst := range map[string]*time.Duration{
		"TIMEOUT_PING":   &cfg.Ping,
		"TIMEOUT_SHORT":  &cfg.Short,
		"TIMEOUT_MEDIUM": &cfg.Medium,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			applied++
		}
	}
	Configure(cfg)
	return applied
}

// WithTimeout derives a context bounded by timeout. The returned cancel logs
// a warning when the deadline was what ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
