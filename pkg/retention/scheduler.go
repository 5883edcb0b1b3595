package retention

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ErrorHandler receives the failure of a scheduled run. It is called on the
// scheduler's goroutine and must not block for long; the next run waits for it.
type ErrorHandler interface {
	HandleError(err error)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(err error)

// HandleError calls f(err).
func (f ErrorHandlerFunc) HandleError(err error) { f(err) }

// Scheduler runs a Cleaner on a cron schedule until stopped. Runs never
// overlap, and a failed run is reported to the ErrorHandler without
// affecting later runs.
type Scheduler struct {
	cleaner *Cleaner
	handler ErrorHandler
	policy  atomic.Pointer[Policy]
	expr    string
	logger  *slog.Logger

	cron  *cron.Cron
	entry cron.EntryID
	runMu sync.Mutex

	mu      sync.Mutex
	running bool
}

type schedulerConfig struct {
	location *time.Location
	logger   *slog.Logger
	cleaner  *Cleaner
}

// SchedulerOption configures Schedule.
type SchedulerOption func(*schedulerConfig)

// WithLocation evaluates the cron expression in loc (default time.Local).
func WithLocation(loc *time.Location) SchedulerOption {
	return func(c *schedulerConfig) { c.location = loc }
}

// WithSchedulerLogger sets the scheduler's logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(c *schedulerConfig) { c.logger = logger }
}

// WithCleaner runs cleanups with cl instead of a default Cleaner.
func WithCleaner(cl *Cleaner) SchedulerOption {
	return func(c *schedulerConfig) { c.cleaner = cl }
}

// Schedule registers policy to be cleaned on expr and starts the scheduler.
// An empty expr means DefaultSchedule. A malformed expression or invalid
// policy is returned here and nothing is scheduled; failures of later runs
// go to handler only.
func Schedule(policy Policy, expr string, handler ErrorHandler, opts ...SchedulerOption) (*Scheduler, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	if handler == nil {
		return nil, errors.New("error handler is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retention policy: %w", err)
	}
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}

	cfg := schedulerConfig{location: time.Local}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default().With("component", "retention.scheduler")
	}
	if cfg.cleaner == nil {
		cfg.cleaner = NewCleaner(WithLogger(cfg.logger))
	}

	cl := cronLogger{logger: cfg.logger}
	s := &Scheduler{
		cleaner: cfg.cleaner,
		handler: handler,
		expr:    expr,
		logger:  cfg.logger,
		cron: cron.New(
			cron.WithLocation(cfg.location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	s.policy.Store(&policy)
	s.entry = s.cron.Schedule(sched, cron.FuncJob(s.run))

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", expr,
		"dir", policy.Dir,
		"max_age_days", policy.MaxAgeDays,
	)
	return s, nil
}

// run executes one cleanup against the policy current at trigger time.
func (s *Scheduler) run() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	policy := *s.policy.Load()
	logger := s.logger.With("run_id", uuid.NewString())
	logger.Debug("starting scheduled cleanup", "dir", policy.Dir)

	res, err := s.cleaner.Clean(policy)
	if err != nil {
		logger.Warn("scheduled cleanup failed", "error", err)
		s.handler.HandleError(err)
		return
	}
	logger.Debug("scheduled cleanup finished",
		"scanned", res.Scanned,
		"deleted_count", len(res.Deleted),
	)
}

// RunNow performs a cleanup immediately, outside the schedule. It waits for
// an in-flight scheduled run to finish first.
func (s *Scheduler) RunNow() (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.cleaner.Clean(*s.policy.Load())
}

// UpdatePolicy replaces the policy used from the next run on. A run already in
// progress keeps the policy it started with.
func (s *Scheduler) UpdatePolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid retention policy: %w", err)
	}
	s.policy.Store(&p)
	s.logger.Info("retention policy updated",
		"dir", p.Dir,
		"max_age_days", p.MaxAgeDays,
	)
	return nil
}

// Policy returns the current policy.
func (s *Scheduler) Policy() Policy {
	return *s.policy.Load()
}

// Expression returns the cron expression the scheduler was registered with.
func (s *Scheduler) Expression() string {
	return s.expr
}

// NextRun returns the next trigger time, or nil if stopped or none remains.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop stops the scheduler and waits for a running cleanup to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// cronLogger routes robfig/cron's logging into slog. Its Info output is per
// tick, so it is demoted to Debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
