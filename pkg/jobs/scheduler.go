package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic background work.
type Task func(ctx context.Context) error

// SchedulerConfig configures retry behaviour of scheduled tasks.
type SchedulerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type entry struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler runs registered tasks on fixed intervals until stopped.
type Scheduler struct {
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	entries []entry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler builds an idle scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scheduler{maxRetries: cfg.MaxRetries, retryDelay: cfg.RetryDelay, logger: cfg.Logger}
}

// Every registers a task. Tasks must be registered before Start.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("task %s: scheduler already started", name)
	}
	s.entries = append(s.entries, entry{name: name, interval: interval, task: task})
	return nil
}

// Start launches one goroutine per task. Each task runs once immediately and then on
// every tick. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(e)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "tasks", len(s.entries))
}

// Stop cancels every task and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) loop(e entry) {
	defer s.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	s.run(e)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(e)
		}
	}
}

// run executes the task, retrying failures up to maxRetries times.
func (s *Scheduler) run(e entry) {
	for attempt := 0; ; attempt++ {
		err := e.task(s.ctx)
		if err == nil {
			return
		}
		if attempt >= s.maxRetries || s.ctx.Err() != nil {
			s.logger.Sugar().Errorw("task failed", "task", e.name, "attempts", attempt+1, "error", err)
			return
		}
		s.logger.Sugar().Warnw("task failed, retrying", "task", e.name, "attempt", attempt+1, "error", err)

		timer := time.NewTimer(s.retryDelay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
