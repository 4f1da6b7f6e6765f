package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// replayRunsKept bounds the replay log.
const replayRunsKept = 100

// Scheduler runs a replay pass every configured interval and logs each one.
// After a restart the first pass is due one interval after the last logged
// start, so restarting the process does not reset the clock.
type Scheduler struct {
	config domain.SchedulerConfig
	log    driven.ReplayLog
	syncer driving.SyncOrchestrator
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler. log and syncer may be nil.
func NewScheduler(
	config domain.SchedulerConfig,
	log driven.ReplayLog,
	syncer driving.SyncOrchestrator,
) *Scheduler {
	return &Scheduler{
		config: config,
		log:    log,
		syncer: syncer,
		now:    time.Now,
	}
}

// Start runs the schedule. It blocks until Stop is called or ctx ends.
// A disabled schedule just waits.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if !s.config.Enabled || s.config.Interval <= 0 {
		logger.Debug("scheduler: periodic replay disabled")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		}
	}

	timer := time.NewTimer(s.firstDelay(ctx))
	defer timer.Stop()
	logger.Info("scheduler: replaying every %s", s.config.Interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-timer.C:
			s.runPass(ctx)
			timer.Reset(s.config.Interval)
		}
	}
}

// Stop ends the schedule. A pass in flight finishes on its own.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// firstDelay returns how long to wait before the first pass.
func (s *Scheduler) firstDelay(ctx context.Context) time.Duration {
	if s.log == nil {
		return s.config.Interval
	}
	runs, err := s.log.Recent(ctx, 1)
	if err != nil {
		logger.Warn("scheduler: read replay log: %v", err)
		return s.config.Interval
	}
	if len(runs) == 0 {
		return s.config.Interval
	}
	delay := runs[0].NextDue(s.config.Interval).Sub(s.now())
	if delay < 0 {
		return 0
	}
	return delay
}

// runPass runs one replay pass and logs it. A pass skipped because the
// register is offline or already replaying is logged as skipped, not failed.
func (s *Scheduler) runPass(ctx context.Context) domain.ReplayRun {
	run := domain.ReplayRun{StartedAt: s.now().UTC()}

	if s.syncer != nil {
		report, err := s.syncer.SyncAll(ctx)
		switch {
		case errors.Is(err, domain.ErrOffline):
			run.Skipped = domain.SkipOffline
		case errors.Is(err, domain.ErrSyncInProgress):
			run.Skipped = domain.SkipBusy
		case err != nil:
			run.Error = err.Error()
			logger.Warn("scheduler: replay failed: %v", err)
		default:
			run.Report = report
		}
	}
	run.EndedAt = s.now().UTC()

	if run.Skipped != domain.SkipNone {
		logger.Debug("scheduler: replay skipped (%s)", run.Skipped)
	}

	if s.log != nil {
		if _, err := s.log.Record(ctx, &run); err != nil {
			logger.Warn("scheduler: record replay run: %v", err)
		}
		if err := s.log.Trim(ctx, replayRunsKept); err != nil {
			logger.Warn("scheduler: trim replay log: %v", err)
		}
	}
	return run
}
