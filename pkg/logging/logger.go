package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/logkeeper/pkg/must"
)

// DefaultUTCOffset is the offset timestamps are rendered in.
const DefaultUTCOffset = "+08:00"

// levelAll lets the sink handlers accept anything; the target filter decides.
const levelAll = slog.Level(math.MinInt32)

var defaultZone = must.OkCtx(parseOffset(DefaultUTCOffset))("DefaultUTCOffset is a valid offset")

// ErrAlreadyInitialized is returned by a second call to Init.
var ErrAlreadyInitialized = errors.New("logging: already initialized")

var initialized atomic.Bool

// Options configures the pipeline.
type Options struct {
	// BinName is the primary target and the file name stem ({BinName}.log).
	BinName string

	// Targets are extra targets enabled at the same level as BinName.
	Targets []string

	// Debug selects LevelDebug instead of LevelInfo.
	Debug bool

	// Directory holds the log files. Empty resolves with ResolveDir("", "").
	Directory string

	// Console receives the human readable stream (default os.Stdout).
	Console io.Writer

	// BufferSize is the file sink queue capacity (default DefaultBufferSize).
	BufferSize int

	// MaxSizeMB caps one day's file (default DefaultMaxSizeMB).
	MaxSizeMB int

	// UTCOffset is the timestamp offset, e.g. "+08:00" (default DefaultUTCOffset).
	UTCOffset string
}

// Pipeline is the constructed logging state: the shared filter, both sinks
// and the file writer that must be flushed at shutdown.
type Pipeline struct {
	root   *targetHandler
	filter *Filter
	handle *Handle
	guard  *Guard
	dir    string
	file   *DailyFile
}

// New builds a pipeline without touching slog.Default. Most programs call
// Init instead.
func New(opts Options) (*Pipeline, error) {
	if opts.BinName == "" {
		return nil, errors.New("logging: bin name is required")
	}

	zone := defaultZone
	if opts.UTCOffset != "" && opts.UTCOffset != DefaultUTCOffset {
		z, err := parseOffset(opts.UTCOffset)
		if err != nil {
			return nil, fmt.Errorf("invalid utc offset: %w", err)
		}
		zone = z
	}

	dir := opts.Directory
	if dir == "" {
		dir = ResolveDir("", "")
	}

	file, err := NewDailyFile(dir, opts.BinName+".log", opts.MaxSizeMB, zone)
	if err != nil {
		return nil, err
	}
	async := NewAsyncWriter(file, opts.BufferSize)

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       levelAll,
		ReplaceAttr: timeIn(zone),
	}
	sinks := NewMultiHandler(
		slog.NewTextHandler(console, handlerOpts),
		slog.NewJSONHandler(async, handlerOpts),
	)

	level := DebugLevel(opts.Debug)
	names := append([]string{opts.BinName}, opts.Targets...)
	filter := NewFilter(NewTargets(level, names...))

	return &Pipeline{
		root:   newTargetHandler(filter, sinks),
		filter: filter,
		handle: &Handle{filter: filter},
		guard:  &Guard{writer: async},
		dir:    dir,
		file:   file,
	}, nil
}

// Init builds the pipeline and installs it as slog.Default, bound to
// opts.BinName. It may be called once per process.
//
// The Guard must be kept until shutdown and closed then; closing it early
// loses queued file output. The Handle changes the threshold at runtime.
func Init(opts Options) (*Guard, *Handle, error) {
	if !initialized.CompareAndSwap(false, true) {
		return nil, nil, ErrAlreadyInitialized
	}
	p, err := New(opts)
	if err != nil {
		initialized.Store(false)
		return nil, nil, err
	}
	slog.SetDefault(p.Logger(opts.BinName))
	return p.guard, p.handle, nil
}

// MustInit is Init for programs that cannot run without logging.
func MustInit(opts Options) (*Guard, *Handle) {
	guard, handle, err := Init(opts)
	if err != nil {
		must.Never(fmt.Sprintf("logging init failed: %v", err))
	}
	return guard, handle
}

// Logger returns a logger whose records carry target.
func (p *Pipeline) Logger(target string) *slog.Logger {
	return slog.New(p.root).With(TargetKey, target)
}

// Handler returns the root handler, unbound to any target.
func (p *Pipeline) Handler() slog.Handler {
	return p.root
}

// Handle returns the live threshold handle.
func (p *Pipeline) Handle() *Handle {
	return p.handle
}

// Guard returns the flush guard.
func (p *Pipeline) Guard() *Guard {
	return p.guard
}

// Dir returns the directory the file sink writes to.
func (p *Pipeline) Dir() string {
	return p.dir
}

// FilePath returns the active log file path.
func (p *Pipeline) FilePath() string {
	return p.file.Path()
}

// Handle changes the shared threshold of a running pipeline. It is safe for
// concurrent use.
type Handle struct {
	filter *Filter
}

// SetLevel sets every target to level.
func (h *Handle) SetLevel(level slog.Level) {
	h.filter.Modify(func(t Targets) Targets { return t.WithLevel(level) })
}

// SetLevelText parses level (see ParseLevel) and applies it to every target.
func (h *Handle) SetLevelText(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	h.SetLevel(l)
	return nil
}

// SetDebug switches every target between LevelDebug and LevelInfo.
func (h *Handle) SetDebug(debug bool) {
	h.SetLevel(DebugLevel(debug))
}

// SetTargetLevel overrides one target, adding it if absent.
func (h *Handle) SetTargetLevel(target string, level slog.Level) {
	h.filter.Modify(func(t Targets) Targets { return t.With(target, level) })
}

// Targets returns a snapshot of the active targets.
func (h *Handle) Targets() Targets {
	return h.filter.Load()
}

// Guard flushes the file sink when closed.
type Guard struct {
	writer *AsyncWriter
	once   sync.Once
	err    error
}

// Close drains queued records into the file and closes it.
func (g *Guard) Close() error {
	g.once.Do(func() {
		g.err = g.writer.Close()
	})
	return g.err
}

// parseOffset turns "+08:00" style offsets into a fixed zone.
func parseOffset(offset string) (*time.Location, error) {
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, err
	}
	_, secs := t.Zone()
	return time.FixedZone("UTC"+offset, secs), nil
}

func timeIn(zone *time.Location) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
			a.Value = slog.StringValue(a.Value.Time().In(zone).Format(time.RFC3339Nano))
		}
		return a
	}
}
