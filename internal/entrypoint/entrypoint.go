package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-manager/internal/config"
	http_controllers "github.com/mrlokans/library-manager/internal/http"
	"github.com/mrlokans/library-manager/internal/library"
	"github.com/mrlokans/library-manager/internal/scheduler"
	"github.com/mrlokans/library-manager/internal/session"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM arrives or exit is closed,
// then shuts it down within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, exit <-chan struct{}, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Printf("Received %s", sig)
	case <-exit:
		log.Printf("Exit requested")
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Resources are released after in-flight requests are done with them
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires the library, sessions, router and uploads sweeper and serves
// until shutdown.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting Library Manager v%s", version)

	if err := cfg.Resolve(); err != nil {
		return err
	}

	lib, err := library.Open(cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}

	sqlDB, err := lib.Database().DB.DB()
	if err != nil {
		lib.Close()
		return fmt.Errorf("get sql handle: %w", err)
	}
	sessions, err := session.NewManager(sqlDB, cfg.Session.SecureCookies)
	if err != nil {
		lib.Close()
		return fmt.Errorf("init sessions: %w", err)
	}

	var csrfSecret []byte
	if cfg.Session.CSRFEnabled {
		csrfSecret, err = sessionSecret(cfg.Session.Secret)
		if err != nil {
			sessions.Close()
			lib.Close()
			return fmt.Errorf("csrf secret: %w", err)
		}
	} else {
		log.Printf("WARNING: CSRF protection is disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := scheduler.NewUploadsSweeper(cfg.Storage.UploadsDir, cfg.Uploads.Retention, cfg.Uploads.SweepSchedule)
	if err := sweeper.Start(ctx); err != nil {
		log.Printf("WARNING: uploads sweeper not started: %v", err)
	}

	exit := make(chan struct{})
	var exitOnce sync.Once

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Books:            lib,
		Database:         lib.Database(),
		Sessions:         sessions,
		CSRFSecret:       csrfSecret,
		SecureCookies:    cfg.Session.SecureCookies,
		UploadsDir:       cfg.Storage.UploadsDir,
		DefaultCoverPath: cfg.Storage.DefaultCoverPath,
		MaxUploadBytes:   cfg.Uploads.MaxSizeMB << 20,
		OnExit:           func() { exitOnce.Do(func() { close(exit) }) },
		Version:          version,
	})

	onShutdown := func(ctx context.Context) {
		sweeper.Stop()
		// The session cleanup goroutine shares the database handle
		sessions.Close()
		if err := lib.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return Serve(router, cfg, exit, onShutdown)
}

// sessionSecret decodes a hex secret, uses any other value as raw bytes,
// and generates a random one when empty.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil && len(secret) >= 32 {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	log.Printf("SESSION_SECRET not set, generated a random one; forms expire on restart")
	return secret, nil
}
