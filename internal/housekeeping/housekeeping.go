package housekeeping

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/store"
)

// jobTimeout bounds a single housekeeping run.
const jobTimeout = time.Minute

// Scheduler runs periodic database maintenance.
type Scheduler struct {
	cron *cron.Cron
	db   *sql.DB
	now  func() time.Time
}

// New creates a Scheduler for conn. Nothing runs until Register and Start.
func New(conn *sql.DB) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		db:   conn,
		now:  time.Now,
	}
}

// Register schedules the maintenance job. schedule is a standard five-field
// cron spec or a descriptor such as "@every 1h".
func (s *Scheduler) Register(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("register housekeeping job %q: %w", schedule, err)
	}
	return nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("housekeeping scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("housekeeping job still running at shutdown")
	}
	slog.Info("housekeeping scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunNow(ctx); err != nil {
		slog.Error("housekeeping failed", "error", err)
	}
}

// RunNow purges expired token revocations and checkpoints the WAL.
func (s *Scheduler) RunNow(ctx context.Context) error {
	purged, err := store.PurgeRevokedTokens(ctx, s.db, s.now())
	if err != nil {
		return err
	}
	if err := db.Checkpoint(ctx, s.db); err != nil {
		return err
	}

	slog.Info("housekeeping done", "purged_tokens", purged)
	return nil
}
