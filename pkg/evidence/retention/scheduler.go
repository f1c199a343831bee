package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs Gate.Revalidate on a cron schedule. Kept close to
// verbatim from the teacher's scheduler.go: cron-scheduled periodic
// background work is exactly what both the teacher's pruner and this gate
// need (DESIGN.md).
type Scheduler struct {
	gate    *Gate
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new retention scheduler.
func NewScheduler(gate *Gate) *Scheduler {
	return &Scheduler{
		gate:   gate,
		cron:   cron.New(),
		logger: slog.Default().With("component", "evidence.retention.scheduler"),
	}
}

// Start begins the scheduled revalidation sweep based on
// gate.config.RevalidateSchedule. If empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gate.config.RevalidateSchedule == "" {
		s.logger.Info("revalidate schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.gate.config.RevalidateSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.gate.config.RevalidateSchedule, err)
	}

	_, err := s.cron.AddFunc(s.gate.config.RevalidateSchedule, func() {
		s.runRevalidation(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule revalidation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started", "schedule", s.gate.config.RevalidateSchedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runRevalidation(ctx context.Context) {
	s.logger.Info("starting scheduled retention revalidation")
	result, err := s.gate.Revalidate(ctx)
	if err != nil {
		s.logger.Error("scheduled revalidation failed", "error", err)
		return
	}
	s.logger.Info("scheduled revalidation completed", "reaudited", result.Reaudited, "quarantined", result.Quarantined)
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled revalidation time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
