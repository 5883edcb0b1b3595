package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyFile_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	f, err := NewDailyFile(dir, "app.log", 0, time.UTC)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("hello\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	assert.Equal(t, filepath.Join(dir, "app.log"), f.Path())
}

func TestDailyFile_RollsOverAtMidnight(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)

	f, err := NewDailyFile(dir, "app.log", 0, time.UTC)
	require.NoError(t, err)
	defer f.Close()
	f.now = func() time.Time { return now }
	f.day = now.Format(dayLayout)

	_, err = f.Write([]byte("day one\n"))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = f.Write([]byte("day two\n"))
	require.NoError(t, err)

	old, err := os.ReadFile(filepath.Join(dir, "app.log.2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "day one\n", string(old))

	cur, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Equal(t, "day two\n", string(cur))
}

func TestDailyFile_RollsOverStaleFileOnFirstWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(path, stale, stale))

	f, err := NewDailyFile(dir, "app.log", 0, time.Local)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("new\n"))
	require.NoError(t, err)

	rotated := filepath.Join(dir, "app.log."+stale.In(time.Local).Format(dayLayout))
	old, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(old))

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(cur))
}

func TestDailyFile_RotationNameCollision(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log.2026-03-01"), []byte("earlier\n"), 0o644))

	f, err := NewDailyFile(dir, "app.log", 0, time.UTC)
	require.NoError(t, err)
	defer f.Close()
	f.now = func() time.Time { return now }
	f.day = now.Format(dayLayout)

	_, err = f.Write([]byte("later\n"))
	require.NoError(t, err)
	now = now.Add(24 * time.Hour)
	_, err = f.Write([]byte("next\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "app.log.2026-03-01.1"))
	require.NoError(t, err)
	assert.Equal(t, "later\n", string(data))
}
