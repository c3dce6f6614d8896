// Package mongoconn owns the single MongoDB connection the service shares
// across requests. The connection is opened lazily by the first caller that
// needs it and reused by everyone after that.
package mongoconn

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	EventsCollection = "events"
	UsersCollection  = "users"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("mongoconn: manager closed")

// Dialer opens a connected client. It should fail if the deployment is not
// reachable rather than returning a client that will fail later.
type Dialer func(ctx context.Context) (*mongo.Client, error)

// Handles are the collection handles every store works against.
type Handles struct {
	Events *mongo.Collection
	Users  *mongo.Collection
}

type conn struct {
	client  *mongo.Client
	db      *mongo.Database
	handles Handles

	// setup tracks the on-connect hook for this client.
	setupMu   sync.Mutex
	setupDone atomic.Bool
	lastSetup time.Time
}

// Manager memoizes one client and its collection handles.
//
// The zero value is not usable; construct with New.
type Manager struct {
	dial       Dialer
	dbName     string
	log        *zap.Logger
	onConnect  func(ctx context.Context, db *mongo.Database) error
	setupWait  time.Duration
	setupRetry time.Duration
	setupRuns  atomic.Int64

	// mu serializes dial and close. Readers on the fast path only touch cur.
	mu     sync.Mutex
	cur    atomic.Pointer[conn]
	closed bool
	dials  atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithOnConnect registers fn to run after the first successful dial. fn
// gets its own deadline, detached from the caller's request. Its error is
// logged, not returned to the caller of Acquire, and fn runs again on a
// later Acquire until it succeeds once.
func WithOnConnect(fn func(ctx context.Context, db *mongo.Database) error) Option {
	return func(m *Manager) { m.onConnect = fn }
}

// WithSetupTimeout bounds each on-connect run. Zero uses timeouts.Medium.
func WithSetupTimeout(d time.Duration) Option {
	return func(m *Manager) { m.setupWait = d }
}

// WithSetupRetryInterval sets the minimum gap between on-connect attempts
// after a failure.
func WithSetupRetryInterval(d time.Duration) Option {
	return func(m *Manager) { m.setupRetry = d }
}

// DefaultSetupRetryInterval spaces out on-connect retries.
const DefaultSetupRetryInterval = 30 * time.Second

// New builds a Manager. Nothing is dialed until the first Acquire.
func New(dial Dialer, dbName string, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{dial: dial, dbName: dbName, log: logger, setupRetry: DefaultSetupRetryInterval}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Acquire returns the shared collection handles, dialing on first use.
// Concurrent first callers wait on the same dial. A failed dial is not
// remembered; the next call tries again.
func (m *Manager) Acquire(ctx context.Context) (Handles, error) {
	c := m.cur.Load()
	if c == nil {
		var err error
		if c, err = m.connect(ctx); err != nil {
			return Handles{}, err
		}
	}
	m.ensureSetup(ctx, c)
	return c.handles, nil
}

func (m *Manager) connect(ctx context.Context) (*conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if c := m.cur.Load(); c != nil {
		return c, nil
	}

	m.dials.Add(1)
	client, err := m.dial(ctx)
	if err != nil {
		m.log.Error("mongo connect failed", zap.String("database", m.dbName), zap.Error(err))
		return nil, err
	}

	db := client.Database(m.dbName)
	c := &conn{
		client: client,
		db:     db,
		handles: Handles{
			Events: db.Collection(EventsCollection),
			Users:  db.Collection(UsersCollection),
		},
	}
	m.cur.Store(c)
	m.log.Info("mongo connected", zap.String("database", m.dbName))
	return c, nil
}

// ensureSetup runs the on-connect hook until it has succeeded once for c.
// A caller that finds another run in progress does not wait for it.
func (m *Manager) ensureSetup(ctx context.Context, c *conn) {
	if m.onConnect == nil || c.setupDone.Load() {
		return
	}
	if !c.setupMu.TryLock() {
		return
	}
	defer c.setupMu.Unlock()

	if c.setupDone.Load() {
		return
	}
	if !c.lastSetup.IsZero() && time.Since(c.lastSetup) < m.setupRetry {
		return
	}
	c.lastSetup = time.Now()

	wait := m.setupWait
	if wait <= 0 {
		wait = timeouts.Medium()
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wait)
	defer cancel()

	m.setupRuns.Add(1)
	if err := m.onConnect(sctx, c.db); err != nil {
		m.log.Warn("mongo on-connect setup failed, will retry",
			zap.Duration("retry_after", m.setupRetry),
			zap.Error(err))
		return
	}
	c.setupDone.Store(true)
	m.log.Info("mongo on-connect setup complete", zap.String("database", m.dbName))
}

// Events returns the events collection handle.
func (m *Manager) Events(ctx context.Context) (*mongo.Collection, error) {
	h, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return h.Events, nil
}

// Users returns the users collection handle.
func (m *Manager) Users(ctx context.Context) (*mongo.Collection, error) {
	h, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return h.Users, nil
}

// Ping acquires the connection if needed and sends a liveness check.
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := m.Acquire(ctx); err != nil {
		return err
	}
	c := m.cur.Load()
	if c == nil {
		return ErrClosed
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// Connected reports whether a client is currently open.
func (m *Manager) Connected() bool {
	return m.cur.Load() != nil
}

// SetupComplete reports whether the on-connect hook has succeeded for the
// current client. It is true when no hook is registered.
func (m *Manager) SetupComplete() bool {
	c := m.cur.Load()
	if c == nil {
		return false
	}
	return m.onConnect == nil || c.setupDone.Load()
}

// SetupRuns reports how many times the on-connect hook has been invoked.
func (m *Manager) SetupRuns() int64 {
	return m.setupRuns.Load()
}

// Dials reports how many times the dialer has been invoked.
func (m *Manager) Dials() int64 {
	return m.dials.Load()
}

// Close disconnects the client if one was opened. Acquire fails afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	c := m.cur.Swap(nil)
	if c == nil {
		return nil
	}
	m.log.Info("disconnecting mongo client")
	if err := c.client.Disconnect(ctx); err != nil {
		m.log.Error("mongo disconnect failed", zap.Error(err))
		return err
	}
	return nil
}
