// Package session keeps per-browser state between requests. The catalogue
// only needs it for one-shot flash messages shown after a redirect.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session data keys
const (
	keyFlashKind    = "flash_kind"
	keyFlashMessage = "flash_message"
)

// DefaultLifetime bounds how long an unread flash message survives.
const DefaultLifetime = 24 * time.Hour

// Flash kinds map to the alert styles of the pages.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a message queued for the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Manager wraps scs.SessionManager with flash message helpers.
type Manager struct {
	*scs.SessionManager

	store     *sqlite3store.SQLite3Store
	closeOnce sync.Once
}

// NewManager creates a session manager persisting to the sessions table of
// sqlDB. The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, secureCookies bool) (*Manager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	store := sqlite3store.NewWithCleanupInterval(sqlDB, time.Hour)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = DefaultLifetime

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // survives the post-redirect-get hop
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm, store: store}, nil
}

// Close stops the expired-session cleanup. Call it before closing the
// database handle passed to NewManager.
func (m *Manager) Close() {
	m.closeOnce.Do(m.store.StopCleanup)
}

// AddFlash queues a message for the next page render. A later call replaces
// an unread message.
func (m *Manager) AddFlash(ctx context.Context, kind, message string) {
	m.Put(ctx, keyFlashKind, kind)
	m.Put(ctx, keyFlashMessage, message)
}

// PopFlash returns and clears the queued message, if any.
func (m *Manager) PopFlash(ctx context.Context) (Flash, bool) {
	message := m.PopString(ctx, keyFlashMessage)
	kind := m.PopString(ctx, keyFlashKind)
	if message == "" {
		return Flash{}, false
	}
	if kind == "" {
		kind = FlashSuccess
	}
	return Flash{Kind: kind, Message: message}, true
}
