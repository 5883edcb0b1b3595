package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const dayLayout = "2006-01-02"

// DefaultMaxSizeMB caps a single day's file before lumberjack starts an extra
// backup within the same day.
const DefaultMaxSizeMB = 1024

// DailyFile writes to dir/name and starts a new file on the first write of
// each calendar day. The previous day's file is renamed to name.YYYY-MM-DD.
type DailyFile struct {
	mu   sync.Mutex
	out  *lumberjack.Logger
	path string
	loc  *time.Location
	day  string
	now  func() time.Time
}

// NewDailyFile creates dir if needed and prepares dir/name for appending.
// Days are computed in loc.
func NewDailyFile(dir, name string, maxSizeMB int, loc *time.Location) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if loc == nil {
		loc = time.Local
	}

	path := filepath.Join(dir, name)
	f := &DailyFile{
		out: &lumberjack.Logger{
			Filename:  path,
			MaxSize:   maxSizeMB,
			LocalTime: true,
		},
		path: path,
		loc:  loc,
		now:  time.Now,
	}

	// An existing file keeps its own day so a restart after midnight still
	// rolls it over.
	if info, err := os.Stat(path); err == nil {
		f.day = info.ModTime().In(loc).Format(dayLayout)
	} else {
		f.day = f.now().In(loc).Format(dayLayout)
	}
	return f, nil
}

// Path returns the active file path.
func (f *DailyFile) Path() string {
	return f.path
}

// Write implements io.Writer.
func (f *DailyFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	today := f.now().In(f.loc).Format(dayLayout)
	if today != f.day {
		if err := f.rollover(); err != nil {
			return 0, err
		}
		f.day = today
	}
	return f.out.Write(p)
}

// rollover closes the active file and moves it aside under its day. The next
// Write reopens a fresh file at the original path.
func (f *DailyFile) rollover() error {
	if err := f.out.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return nil
	}

	target := f.path + "." + f.day
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s.%s.%d", f.path, f.day, i)
	}
	if err := os.Rename(f.path, target); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

// Close closes the active file.
func (f *DailyFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Close()
}
