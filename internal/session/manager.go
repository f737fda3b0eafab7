// Package session owns the single live database connection the console
// works against.
//
// The Manager is an explicit object injected into the console service.
// Connect replaces the current handle under a write lock; readers take the
// current handle under a read lock. A request that obtained the old handle
// before a reconnect may still fail against the closed store.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/logger"
)

// Opener opens a store for a connection config (dial.Open in production).
type Opener func(ctx context.Context, cfg *docstore.Config) (docstore.Store, error)

// Info describes the current connection for the UI header.
type Info struct {
	Connected   bool       `json:"connected"`
	Backend     string     `json:"backend,omitempty"`
	URI         string     `json:"uri,omitempty"`
	Database    string     `json:"database,omitempty"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
}

// Manager holds at most one open store.
// It is safe for concurrent use by multiple goroutines.
type Manager struct {
	open Opener
	base docstore.Config
	log  *logger.Logger
	now  func() time.Time

	mu    sync.RWMutex
	store docstore.Store
	info  Info
}

// NewManager returns a disconnected manager. base supplies pool settings
// and timeouts for every connection; its URI and Database are ignored.
func NewManager(open Opener, base *docstore.Config, log *logger.Logger) *Manager {
	if base == nil {
		base = docstore.DefaultConfig("")
	}
	if log == nil {
		log = logger.Global()
	}
	return &Manager{open: open, base: *base, log: log.Component("session"), now: time.Now}
}

// Connect closes the current connection, if any, and opens uri. On failure
// the manager stays disconnected; it never keeps a broken handle.
func (m *Manager) Connect(ctx context.Context, uri, dbName string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return errs.New(errs.ErrKindConnectionFailed, "connection string is required")
	}
	dbName = strings.TrimSpace(dbName)
	redacted := Redact(uri)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			m.log.WarnWith("closing previous connection failed", err, logger.Fields{
				"backend": m.info.Backend,
				"uri":     m.info.URI,
			})
		}
		m.store = nil
		m.info = Info{}
	}

	cfg := m.base
	cfg.URI = uri
	cfg.Database = dbName

	store, err := m.open(ctx, &cfg)
	if err != nil {
		m.log.WarnWith("connect failed", err, logger.Fields{"uri": redacted})
		return err
	}

	connectedAt := m.now().UTC()
	m.store = store
	m.info = Info{
		Connected:   true,
		Backend:     store.Backend(),
		URI:         redacted,
		Database:    dbName,
		ConnectedAt: &connectedAt,
	}

	m.log.InfoWith("connected", logger.Fields{
		"backend":  store.Backend(),
		"uri":      redacted,
		"database": dbName,
	})
	return nil
}

// Store returns the live store or a NotConnected error.
func (m *Manager) Store() (docstore.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.store == nil {
		return nil, errs.New(errs.ErrKindNotConnected, "Not connected to a database")
	}
	return m.store, nil
}

// DefaultDatabase is the database named at connect time ("" when none).
func (m *Manager) DefaultDatabase() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info.Database
}

// Info returns a snapshot of the connection state.
func (m *Manager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

// Close closes the live connection, if any. Safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	err := m.store.Close(ctx)
	m.store = nil
	m.info = Info{}
	return err
}
