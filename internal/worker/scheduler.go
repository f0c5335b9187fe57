package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Config holds retry and shutdown settings for the scheduler
type Config struct {
	RetryAttempts   int           // Attempts per tick, including the first
	RetryDelay      time.Duration // Base delay between retries, doubled each attempt
	JobTimeout      time.Duration // Deadline for a single attempt
	ShutdownTimeout time.Duration // Time to wait for running jobs on Stop
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		JobTimeout:      30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// JobStats describes the runs of one job.
type JobStats struct {
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// Scheduler runs periodic maintenance jobs with retry logic
type Scheduler struct {
	config  Config
	jobs    []Job
	log     *zap.Logger
	stats   map[string]*JobStats
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex
}

// NewScheduler creates a scheduler for the given jobs
func NewScheduler(log *zap.Logger, config Config, jobs ...Job) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	stats := make(map[string]*JobStats, len(jobs))
	for _, job := range jobs {
		stats[job.Name] = &JobStats{}
	}

	return &Scheduler{
		config: config,
		jobs:   jobs,
		log:    log,
		stats:  stats,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches one goroutine per job
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive", job.Name)
		}
	}

	s.log.Info("starting scheduler",
		zap.Int("jobs", len(s.jobs)),
		zap.Int("retry_attempts", s.config.RetryAttempts),
	)

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	s.started = true
	return nil
}

// Stop cancels all jobs and waits for running ones to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not started")
	}
	s.started = false
	s.mu.Unlock()

	s.log.Info("stopping scheduler")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("scheduler stopped gracefully")
	case <-time.After(s.config.ShutdownTimeout):
		s.log.Warn("scheduler shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	return nil
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	log := s.log.With(zap.String("job", job.Name))
	log.Info("job scheduled", zap.Duration("interval", job.Interval))

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runWithRetry(log, job)
		case <-s.ctx.Done():
			log.Info("job stopped")
			return
		}
	}
}

// runWithRetry runs one tick of a job with exponential backoff
func (s *Scheduler) runWithRetry(log *zap.Logger, job Job) {
	attempts := s.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := s.attemptContext()
		err := job.Run(ctx)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("job succeeded after retry", zap.Int("attempt", attempt))
			}
			s.record(job.Name, nil)
			return
		}

		lastErr = err
		log.Warn("job failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}

		delay := s.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			log.Info("scheduler shutdown during retry delay")
			s.record(job.Name, lastErr)
			return
		}
	}

	log.Error("job failed after all retries",
		zap.Int("attempts", attempts),
		zap.Error(lastErr),
	)
	s.record(job.Name, lastErr)
}

func (s *Scheduler) attemptContext() (context.Context, context.CancelFunc) {
	if s.config.JobTimeout > 0 {
		return context.WithTimeout(s.ctx, s.config.JobTimeout)
	}
	return context.WithCancel(s.ctx)
}

func (s *Scheduler) record(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats[name]
	st.Runs++
	st.LastRun = time.Now()
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
}

// GetStats returns a snapshot of per-job statistics
func (s *Scheduler) GetStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]JobStats, len(s.stats))
	for name, st := range s.stats {
		out[name] = *st
	}
	return out
}

// Started reports whether the scheduler is running
func (s *Scheduler) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
