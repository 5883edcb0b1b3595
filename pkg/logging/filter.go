package logging

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
)

// TargetKey is the record attribute holding the source tag.
const TargetKey = "target"

// Target separators. "billing/worker", "billing.worker" and "billing::worker"
// all match the target "billing".
var targetSeparators = []string{"/", ".", "::"}

// Targets maps target names to their minimum level. Targets values are
// immutable; the With methods return modified copies.
type Targets struct {
	levels map[string]slog.Level
	lowest slog.Level
}

func newTargets(levels map[string]slog.Level) Targets {
	t := Targets{levels: levels}
	first := true
	for _, l := range levels {
		if first || l < t.lowest {
			t.lowest = l
			first = false
		}
	}
	return t
}

// NewTargets returns Targets enabling every name at level.
func NewTargets(level slog.Level, names ...string) Targets {
	levels := make(map[string]slog.Level, len(names))
	for _, n := range names {
		if n != "" {
			levels[n] = level
		}
	}
	return newTargets(levels)
}

// With returns a copy with name set to level.
func (t Targets) With(name string, level slog.Level) Targets {
	levels := make(map[string]slog.Level, len(t.levels)+1)
	for k, v := range t.levels {
		levels[k] = v
	}
	levels[name] = level
	return newTargets(levels)
}

// WithLevel returns a copy with every target set to level.
func (t Targets) WithLevel(level slog.Level) Targets {
	levels := make(map[string]slog.Level, len(t.levels))
	for k := range t.levels {
		levels[k] = level
	}
	return newTargets(levels)
}

// Admits reports whether some target accepts records at level.
func (t Targets) Admits(level slog.Level) bool {
	return len(t.levels) > 0 && level >= t.lowest
}

// Level returns the level of the most specific target matching target.
func (t Targets) Level(target string) (slog.Level, bool) {
	best := -1
	var level slog.Level
	for name, l := range t.levels {
		if len(name) > best && matchTarget(name, target) {
			best = len(name)
			level = l
		}
	}
	return level, best >= 0
}

// Enabled reports whether a record for target at level passes.
func (t Targets) Enabled(target string, level slog.Level) bool {
	threshold, ok := t.Level(target)
	return ok && level >= threshold
}

// Names returns the configured target names in sorted order.
func (t Targets) Names() []string {
	names := make([]string, 0, len(t.levels))
	for n := range t.levels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t Targets) String() string {
	parts := make([]string, 0, len(t.levels))
	for _, n := range t.Names() {
		parts = append(parts, n+"="+t.levels[n].String())
	}
	return strings.Join(parts, ",")
}

func matchTarget(name, target string) bool {
	if target == name {
		return true
	}
	if !strings.HasPrefix(target, name) {
		return false
	}
	rest := target[len(name):]
	for _, sep := range targetSeparators {
		if strings.HasPrefix(rest, sep) {
			return true
		}
	}
	return false
}

// Filter holds the active Targets. Readers never block; writers replace the
// whole value.
type Filter struct {
	cur atomic.Pointer[Targets]
}

// NewFilter returns a Filter initialised to t.
func NewFilter(t Targets) *Filter {
	f := &Filter{}
	f.cur.Store(&t)
	return f
}

// Load returns the active Targets.
func (f *Filter) Load() Targets {
	return *f.cur.Load()
}

// Store replaces the active Targets.
func (f *Filter) Store(t Targets) {
	f.cur.Store(&t)
}

// Modify applies fn to the active Targets and stores the result. Concurrent
// calls are serialised by retrying on conflict.
func (f *Filter) Modify(fn func(Targets) Targets) {
	for {
		old := f.cur.Load()
		next := fn(*old)
		if f.cur.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Admits reports whether some active target accepts records at level.
func (f *Filter) Admits(level slog.Level) bool {
	return f.cur.Load().Admits(level)
}

// Enabled reports whether the active Targets pass a record.
func (f *Filter) Enabled(target string, level slog.Level) bool {
	return f.cur.Load().Enabled(target, level)
}

// ParseLevel parses debug, info, warn (warning) and error, ignoring case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// DebugLevel returns LevelDebug when debug is set and LevelInfo otherwise.
func DebugLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
