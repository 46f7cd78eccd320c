package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepResult summarises one pass over the uploads directory.
type SweepResult struct {
	Removed int
	Kept    int
	Errors  int
}

// UploadsSweeper periodically removes staged cover uploads that were never
// persisted, for example when a request failed half way.
type UploadsSweeper struct {
	dir       string
	retention time.Duration
	schedule  string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool

	// Guarded separately from mu: Stop holds mu while waiting for a running sweep.
	lastMu    sync.RWMutex
	lastRun   time.Time
	lastSweep SweepResult
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NewUploadsSweeper creates a sweeper for dir. Files older than retention are
// removed on every tick of schedule.
func NewUploadsSweeper(dir string, retention time.Duration, schedule string) *UploadsSweeper {
	return &UploadsSweeper{
		dir:       dir,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(cronParser)),
	}
}

// Start schedules the sweep and stops it when ctx is cancelled.
func (s *UploadsSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(time.Now()); err != nil {
			log.Printf("Uploads sweeper: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Uploads sweeper: started with schedule '%s', retention %s. Next run: %v",
		s.schedule, s.retention, s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running sweep and stops the schedule.
func (s *UploadsSweeper) Stop() {
	s.mu.Lock()

	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cron.Remove(s.entryID)
	stopped := s.cron.Stop()
	s.mu.Unlock()

	// The running sweep, if any, finishes outside the lock
	<-stopped.Done()
	log.Printf("Uploads sweeper: stopped")
}

// IsRunning returns whether the schedule is active.
func (s *UploadsSweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns when the last sweep finished and what it did.
func (s *UploadsSweeper) LastRun() (time.Time, SweepResult) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastRun, s.lastSweep
}

// Sweep removes regular files in the uploads directory last modified more
// than the retention before now. Subdirectories are left alone. A missing
// directory is an empty sweep.
func (s *UploadsSweeper) Sweep(now time.Time) (SweepResult, error) {
	var result SweepResult

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read uploads dir: %w", err)
	}

	cutoff := now.Add(-s.retention)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			result.Errors++
			continue
		}
		if info.ModTime().After(cutoff) {
			result.Kept++
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Uploads sweeper: failed to remove %s: %v", path, err)
			result.Errors++
			continue
		}
		result.Removed++
	}

	s.lastMu.Lock()
	s.lastRun = now
	s.lastSweep = result
	s.lastMu.Unlock()

	if result.Removed > 0 || result.Errors > 0 {
		log.Printf("Uploads sweeper: removed %d stale upload(s), kept %d, errors %d", result.Removed, result.Kept, result.Errors)
	}
	return result, nil
}
