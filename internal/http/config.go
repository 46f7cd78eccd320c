package http

import (
	"github.com/mrlokans/library-manager/internal/database"
	"github.com/mrlokans/library-manager/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    BookStore
	Database *database.Database // health checks; optional

	// Flash messages; without it messages are not carried across redirects
	Sessions *session.Manager

	// CSRF protection for HTML forms, enabled when the secret is set
	CSRFSecret    []byte
	SecureCookies bool

	// File locations
	UploadsDir       string // staged cover uploads
	DefaultCoverPath string // placeholder image; a built-in SVG is used when missing

	// Upload limit in bytes; zero means DefaultMaxUploadBytes
	MaxUploadBytes int64

	// Called once after the Exit page has been rendered
	OnExit func()

	// Application info
	Version string
}

// DefaultMaxUploadBytes caps cover uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

func (cfg RouterConfig) maxUploadBytes() int64 {
	if cfg.MaxUploadBytes > 0 {
		return cfg.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}
