package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"crisp/interview/internal/session"

	"github.com/robfig/cron/v3"
)

// SessionReaperJob periodically deletes sessions that have been idle
// past the configured threshold. Completed sessions are reaped on a
// shorter threshold since nothing further happens to them.
type SessionReaperJob struct {
	store  session.Store
	config *ReaperConfig
	cron   *cron.Cron
	now    func() time.Time
}

// ReaperConfig contains configuration for the reaper job
type ReaperConfig struct {
	Schedule         string        // Cron schedule (e.g., "*/30 * * * *" for every 30 minutes)
	IdleThreshold    time.Duration // Delete sessions untouched for this long
	CompleteRetained time.Duration // Retention for completed sessions
	Enabled          bool
}

// NewSessionReaperJob creates a new reaper job
func NewSessionReaperJob(store session.Store, config *ReaperConfig) *SessionReaperJob {
	return &SessionReaperJob{
		store:  store,
		config: config,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start begins the scheduled reaper job
func (srj *SessionReaperJob) Start() error {
	if !srj.config.Enabled {
		log.Println("Session reaper is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting session reaper with schedule: %s", srj.config.Schedule)

	_, err := srj.cron.AddFunc(srj.config.Schedule, func() {
		if _, err := srj.RunReap(); err != nil {
			log.Printf("Reaper job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reaper job: %w", err)
	}

	srj.cron.Start()
	log.Println("Session reaper started successfully")

	return nil
}

// Stop stops the scheduled reaper job
func (srj *SessionReaperJob) Stop() {
	if srj.cron != nil {
		srj.cron.Stop()
		log.Println("Session reaper stopped")
	}
}

// RunReap performs a single reap pass and reports how many sessions
// were deleted.
func (srj *SessionReaperJob) RunReap() (int, error) {
	ctx := context.Background()

	ids, err := srj.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	reaped := 0
	now := srj.now()
	for _, id := range ids {
		state, err := srj.store.Load(ctx, id)
		if err != nil {
			// Already gone or unreadable; skip it.
			continue
		}

		threshold := srj.config.IdleThreshold
		if state.IsComplete {
			threshold = srj.config.CompleteRetained
		}
		if now.Sub(state.UpdatedAt) < threshold {
			continue
		}

		if err := srj.store.Delete(ctx, id); err != nil {
			log.Printf("Failed to reap session %s: %v", id, err)
			continue
		}
		reaped++
	}

	if reaped > 0 {
		log.Printf("Reaped %d idle sessions", reaped)
	}

	return reaped, nil
}
