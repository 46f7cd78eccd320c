package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Session
		Uploads
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Storage struct {
		CoversDir        string // Persisted cover images
		UploadsDir       string // Staged uploads awaiting persistence
		DefaultCoverPath string // Placeholder served when a book has no cover
	}

	Session struct {
		Secret        string
		SecureCookies bool // Set to false for local dev without HTTPS
		CSRFEnabled   bool
	}

	Uploads struct {
		SweepSchedule string // Cron format: "*/30 * * * *" = every 30 minutes
		Retention     time.Duration
		MaxSizeMB     int64
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("covers_dir", DefaultCoversDir)
	v.SetDefault("uploads_dir", DefaultUploadsDir)
	v.SetDefault("default_cover_path", DefaultCoverImagePath)

	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_enabled", true)

	v.SetDefault("uploads_sweep_schedule", DefaultSweepSchedule)
	v.SetDefault("uploads_retention", DefaultUploadRetention)
	v.SetDefault("max_upload_size_mb", 10)

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			CoversDir:        v.GetString("COVERS_DIR"),
			UploadsDir:       v.GetString("UPLOADS_DIR"),
			DefaultCoverPath: v.GetString("DEFAULT_COVER_PATH"),
		},
		Session: Session{
			Secret:        v.GetString("SESSION_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
			CSRFEnabled:   v.GetBool("CSRF_ENABLED"),
		},
		Uploads: Uploads{
			SweepSchedule: v.GetString("UPLOADS_SWEEP_SCHEDULE"),
			Retention:     v.GetDuration("UPLOADS_RETENTION"),
			MaxSizeMB:     v.GetInt64("MAX_UPLOAD_SIZE_MB"),
		},
	}
	return cfg
}

// Resolve turns every configured path into an absolute path so nothing
// downstream depends on the process working directory.
func (c *Config) Resolve() error {
	paths := []*string{
		&c.Database.Path,
		&c.Storage.CoversDir,
		&c.Storage.UploadsDir,
		&c.Storage.DefaultCoverPath,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve path %q: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
