package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhcgn/mbox-stat/stats"
)

func TestMemoryTracker(t *testing.T) {
	tracker := NewMemoryTracker()
	key := Key{Path: "/mail/inbox", Size: 10, ModTime: 1}

	_, ok := tracker.Lookup(key)
	assert.False(t, ok)

	require.NoError(t, tracker.Store(key, stats.Tally{Messages: 2, Read: 1}))
	tally, ok := tracker.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, stats.Tally{Messages: 2, Read: 1}, tally)

	_, ok = tracker.Lookup(Key{Path: "/mail/inbox", Size: 11, ModTime: 1})
	assert.False(t, ok)
	assert.Equal(t, Snapshot{Entries: 1}, tracker.Snapshot())
}

func TestFileTrackerPersists(t *testing.T) {
	dir := t.TempDir()
	key := Key{Path: "/mail/inbox", Size: 42, ModTime: 7}

	tracker, err := NewFileTracker(dir)
	require.NoError(t, err)
	require.NoError(t, tracker.Store(key, stats.Tally{Size: 42, Messages: 1}))
	require.NoError(t, tracker.Store(key, stats.Tally{Size: 42, Messages: 3}))
	require.NoError(t, tracker.Close())
	require.NoError(t, tracker.Close())

	reopened, err := NewFileTracker(dir)
	require.NoError(t, err)
	defer reopened.Close()

	tally, ok := reopened.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, stats.Tally{Size: 42, Messages: 3}, tally)
	assert.Equal(t, Snapshot{Entries: 1}, reopened.Snapshot())
}

func TestFileTrackerSkipsUnchangedStore(t *testing.T) {
	dir := t.TempDir()
	key := Key{Path: "/mail/inbox", Size: 1, ModTime: 1}

	tracker, err := NewFileTracker(dir)
	require.NoError(t, err)
	require.NoError(t, tracker.Store(key, stats.Tally{Messages: 1}))
	require.NoError(t, tracker.Store(key, stats.Tally{Messages: 1}))
	require.NoError(t, tracker.Close())

	data, err := os.ReadFile(filepath.Join(dir, "results.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(data))
}

func TestFileTrackerRejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.jsonl"), []byte("{not json\n"), 0o600))

	_, err := NewFileTracker(dir)
	assert.ErrorContains(t, err, "parse state line 1")
}

func TestNewFileTrackerEmptyDir(t *testing.T) {
	_, err := NewFileTracker("  ")
	assert.Error(t, err)
}

func TestKeyFor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inbox.mbox")
	require.NoError(t, os.WriteFile(path, []byte("From a@x 1 Jan\n"), 0o600))

	mtime := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	info, err := os.Stat(path)
	require.NoError(t, err)

	key := KeyFor(path, info)
	assert.Equal(t, path, key.Path)
	assert.Equal(t, int64(15), key.Size)
	assert.Equal(t, mtime.UnixNano(), key.ModTime)
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
