package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the concurrent test below.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestPipeline(t *testing.T, debug bool, targets ...string) (*Pipeline, *syncBuffer) {
	t.Helper()
	console := &syncBuffer{}
	p, err := New(Options{
		BinName:   "app",
		Targets:   targets,
		Debug:     debug,
		Directory: t.TempDir(),
		Console:   console,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Guard().Close() })
	return p, console
}

func readFileRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	return records
}

func TestNew_RequiresBinName(t *testing.T) {
	_, err := New(Options{Directory: t.TempDir()})
	assert.Error(t, err)
}

func TestNew_InvalidOffset(t *testing.T) {
	_, err := New(Options{BinName: "app", Directory: t.TempDir(), UTCOffset: "eight"})
	assert.ErrorContains(t, err, "invalid utc offset")
}

func TestPipeline_BothSinks(t *testing.T) {
	p, console := newTestPipeline(t, false)

	p.Logger("app").Info("started", "port", 8080)
	require.NoError(t, p.Guard().Close())

	assert.Contains(t, console.String(), "msg=started")
	assert.Contains(t, console.String(), "port=8080")
	assert.Contains(t, console.String(), "target=app")

	records := readFileRecords(t, p.FilePath())
	require.Len(t, records, 1)
	assert.Equal(t, "started", records[0]["msg"])
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "app", records[0]["target"])

	ts, ok := records[0]["time"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(ts, "+08:00"), "time %q not in +08:00", ts)
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestPipeline_FileNamedAfterBinary(t *testing.T) {
	p, _ := newTestPipeline(t, false)
	assert.Equal(t, "app.log", fileBase(p.FilePath()))
	assert.Equal(t, p.Dir(), strings.TrimSuffix(p.FilePath(), "/app.log"))
}

func TestPipeline_DropsUnknownTargets(t *testing.T) {
	p, console := newTestPipeline(t, true, "lib")

	p.Logger("app").Info("from app")
	p.Logger("lib/store").Info("from lib child")
	p.Logger("noise").Error("from noise")
	slog.New(p.Handler()).Error("untagged")
	require.NoError(t, p.Guard().Close())

	out := console.String()
	assert.Contains(t, out, "from app")
	assert.Contains(t, out, "from lib child")
	assert.NotContains(t, out, "from noise")
	assert.NotContains(t, out, "untagged")

	assert.Len(t, readFileRecords(t, p.FilePath()), 2)
}

func TestPipeline_PerRecordTarget(t *testing.T) {
	p, console := newTestPipeline(t, false, "lib")
	p.Handle().SetTargetLevel("lib", slog.LevelError)

	logger := p.Logger("app")
	logger.Info("kept", TargetKey, "app")
	logger.Info("dropped", TargetKey, "lib")

	out := console.String()
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "dropped")
}

func TestPipeline_PerRecordTargetMoreVerbose(t *testing.T) {
	p, console := newTestPipeline(t, false, "lib")
	p.Handle().SetTargetLevel("lib", slog.LevelDebug)

	logger := p.Logger("app")
	logger.Debug("lib debug via record", TargetKey, "lib")
	logger.Debug("app debug")
	require.NoError(t, p.Guard().Close())

	out := console.String()
	assert.Contains(t, out, "lib debug via record")
	assert.NotContains(t, out, "app debug", "bound target stays at its own level")

	records := readFileRecords(t, p.FilePath())
	require.Len(t, records, 1)
	assert.Equal(t, "lib", records[0][TargetKey])
}

func TestPipeline_RecordTargetWrittenOnce(t *testing.T) {
	p, console := newTestPipeline(t, false, "lib")

	p.Logger("app").With("k", "v").Info("override", TargetKey, "lib")
	p.Logger("app").Info("bound")
	require.NoError(t, p.Guard().Close())

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 1, strings.Count(lines[0], "target="))
	assert.Contains(t, lines[0], "target=lib")
	assert.Contains(t, lines[0], "k=v")
	assert.Equal(t, 1, strings.Count(lines[1], "target="))
	assert.Contains(t, lines[1], "target=app")

	f, err := os.ReadFile(p.FilePath())
	require.NoError(t, err)
	fileLines := strings.Split(strings.TrimSpace(string(f)), "\n")
	require.Len(t, fileLines, 2)
	assert.Equal(t, 1, strings.Count(fileLines[0], `"target":`))
	assert.Contains(t, fileLines[0], `"target":"lib"`)
}

func TestHandle_ThresholdChange(t *testing.T) {
	p, console := newTestPipeline(t, false)
	logger := p.Logger("app")

	logger.Debug("before change")
	assert.NotContains(t, console.String(), "before change")

	p.Handle().SetLevel(slog.LevelDebug)
	logger.Debug("after change")
	require.NoError(t, p.Guard().Close())

	assert.Contains(t, console.String(), "after change")
	assert.NotContains(t, console.String(), "before change")

	records := readFileRecords(t, p.FilePath())
	require.Len(t, records, 1)
	assert.Equal(t, "after change", records[0]["msg"])
}

func TestHandle_SetLevelText(t *testing.T) {
	p, console := newTestPipeline(t, true)
	h := p.Handle()

	require.NoError(t, h.SetLevelText("warn"))
	p.Logger("app").Info("quiet")
	p.Logger("app").Warn("loud")
	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")

	assert.Error(t, h.SetLevelText("chatty"))
	lvl, ok := h.Targets().Level("app")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestHandle_SetDebug(t *testing.T) {
	p, _ := newTestPipeline(t, false, "lib")
	h := p.Handle()

	h.SetDebug(true)
	for _, name := range []string{"app", "lib"} {
		lvl, _ := h.Targets().Level(name)
		assert.Equal(t, slog.LevelDebug, lvl, name)
	}

	h.SetDebug(false)
	lvl, _ := h.Targets().Level("lib")
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestHandle_ConcurrentWithLogging(t *testing.T) {
	p, _ := newTestPipeline(t, false)
	logger := p.Logger("app")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				logger.Debug("tick", "j", j)
			}
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Handle().SetDebug((i+j)%2 == 0)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, p.Guard().Close())
}

func TestGuard_CloseIdempotent(t *testing.T) {
	p, _ := newTestPipeline(t, false)
	require.NoError(t, p.Guard().Close())
	require.NoError(t, p.Guard().Close())
}

func TestInit_OncePerProcess(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	opts := Options{BinName: "app", Directory: t.TempDir(), Console: &syncBuffer{}}
	guard, handle, err := Init(opts)
	require.NoError(t, err)
	require.NotNil(t, handle)
	defer guard.Close()

	_, _, err = Init(opts)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestParseOffset(t *testing.T) {
	loc, err := parseOffset("+08:00")
	require.NoError(t, err)
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*3600, offset)

	loc, err = parseOffset("-05:30")
	require.NoError(t, err)
	_, offset = time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -(5*3600 + 30*60), offset)

	_, err = parseOffset("UTC")
	assert.Error(t, err)
}

func fileBase(path string) string {
	i := strings.LastIndex(path, "/")
	return path[i+1:]
}
