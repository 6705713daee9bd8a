// Package scheduler runs the periodic background jobs using gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/goroutine"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// JobFunc adapts a function to BatchJob.
type JobFunc func(ctx context.Context) (int, error)

func (f JobFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

// Scheduler wraps a single gocron scheduler. Every job starts immediately and
// then repeats on its interval. A run that overlaps the previous one is
// rescheduled instead of stacking up.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	mu      sync.Mutex
	names   []string
	started bool
	done    chan struct{}

	// ctxMu is separate from mu so running jobs never wait on Stop.
	ctxMu   sync.RWMutex
	baseCtx context.Context
}

func NewScheduler(log logger.Interface) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		logger:    log.Named("scheduler"),
		baseCtx:   context.Background(),
	}, nil
}

// Register adds a duration job named name.
func (s *Scheduler) Register(name string, interval time.Duration, run BatchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval <= 0 {
		return fmt.Errorf("job %s needs a positive interval", name)
	}
	for _, n := range s.names {
		if n == name {
			return fmt.Errorf("job %s is already registered", name)
		}
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			s.runOnce(name, interval, run)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(name),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	s.names = append(s.names, name)
	s.logger.Infow("registered job", "job", name, "interval", interval)
	return nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// Start starts the scheduler. Runs see ctx, and cancelling it stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctxMu.Lock()
	s.baseCtx = ctx
	s.ctxMu.Unlock()
	s.started = true
	s.done = make(chan struct{})
	done := s.done

	s.scheduler.Start()
	s.logger.Infow("scheduler started", "job_count", len(s.scheduler.Jobs()))

	goroutine.SafeGo(s.logger, "scheduler:context", func() {
		select {
		case <-ctx.Done():
			s.logger.Infow("scheduler context cancelled")
			s.Stop()
		case <-done:
		}
	})
}

// Stop shuts the scheduler down and waits for running jobs to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	close(s.done)

	s.logger.Infow("stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Errorw("scheduler shutdown with error", "error", err)
		return
	}
	s.logger.Infow("scheduler stopped")
}

func (s *Scheduler) context() context.Context {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.baseCtx
}

func (s *Scheduler) runOnce(name string, interval time.Duration, run BatchJob) {
	ctx, cancel := context.WithTimeout(s.context(), interval)
	defer cancel()

	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("job panicked", "job", name, "panic", r)
		}
	}()

	count, err := run.Execute(ctx)
	if err != nil {
		s.logger.Errorw("job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		s.logger.Infow("job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
		return
	}
	s.logger.Debugw("job found nothing to do", "job", name)
}
