package retention

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const day = 24 * time.Hour

// Policy selects what a cleanup run removes: every entry of Dir whose
// modification time is more than MaxAgeDays whole days ago.
type Policy struct {
	Dir        string
	MaxAgeDays int
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.Dir == "" {
		return errors.New("retention directory is required")
	}
	if p.MaxAgeDays < 0 {
		return fmt.Errorf("max age days must be >= 0, got %d", p.MaxAgeDays)
	}
	return nil
}

// Result summarises a successful run.
type Result struct {
	Scanned int      `json:"scanned"`
	Deleted []string `json:"deleted"`
}

// Cleaner deletes expired files from a flat directory.
type Cleaner struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cleaner) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) { c.logger = logger }
}

// WithMetrics records run outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Cleaner) { c.metrics = m }
}

// NewCleaner creates a Cleaner.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "retention.cleaner")
	}
	return c
}

// Clean runs p once with a default Cleaner.
func Clean(dir string, maxAgeDays int) (Result, error) {
	return NewCleaner().Clean(Policy{Dir: dir, MaxAgeDays: maxAgeDays})
}

// Clean deletes every entry of p.Dir older than p.MaxAgeDays. An invalid
// policy is rejected before the directory is read.
//
// The run is fail-fast: an unlistable directory, an unreadable entry or a
// failed delete ends it with a *CleanupError and later entries are left
// alone. Subdirectories get no special treatment; removing a non-empty one
// fails like any other delete.
func (c *Cleaner) Clean(p Policy) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid retention policy: %w", err)
	}
	began := time.Now()
	res, err := c.clean(p, c.now())
	c.metrics.observe(res, err, time.Since(began))
	return res, err
}

func (c *Cleaner) clean(p Policy, now time.Time) (Result, error) {
	var res Result

	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return res, &CleanupError{Kind: KindDirectoryUnreadable, Dir: p.Dir, Err: err}
	}

	for _, entry := range entries {
		path := filepath.Join(p.Dir, entry.Name())
		res.Scanned++

		info, err := os.Stat(path)
		if err != nil {
			return res, &CleanupError{Kind: KindMetadataUnavailable, Dir: p.Dir, Path: path, Err: err}
		}

		age := ageInDays(now, info.ModTime())
		if age <= p.MaxAgeDays {
			continue
		}

		if err := os.Remove(path); err != nil {
			return res, &CleanupError{Kind: KindDeleteFailed, Dir: p.Dir, Path: path, Err: err}
		}
		res.Deleted = append(res.Deleted, path)
		c.logger.Debug("removed expired file",
			"path", path,
			"age_days", age,
		)
	}

	if len(res.Deleted) > 0 {
		c.logger.Info("retention cleanup completed",
			"dir", p.Dir,
			"scanned", res.Scanned,
			"deleted_count", len(res.Deleted),
			"max_age_days", p.MaxAgeDays,
		)
	} else {
		c.logger.Debug("retention cleanup completed, nothing expired",
			"dir", p.Dir,
			"scanned", res.Scanned,
		)
	}
	return res, nil
}

// ageInDays counts whole days from modified to now, truncated toward zero.
// Files from the future have a negative age.
func ageInDays(now, modified time.Time) int {
	return int(now.Sub(modified) / day)
}
