package state

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhcgn/mbox-stat/stats"
)

// Key identifies one version of a mailbox file. A file that changed size or
// modification time gets a new key.
type Key struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

// KeyFor builds the key of the file at path from its stat result.
func KeyFor(path string, info os.FileInfo) Key {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Key{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

type Tracker interface {
	Lookup(key Key) (stats.Tally, bool)
	Store(key Key, tally stats.Tally) error
	Snapshot() Snapshot
}

type Snapshot struct {
	Entries int
}

type MemoryTracker struct {
	mu      sync.RWMutex
	results map[Key]stats.Tally
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{results: make(map[Key]stats.Tally)}
}

func (m *MemoryTracker) Lookup(key Key) (stats.Tally, bool) {
	m.mu.RLock()
	tally, ok := m.results[key]
	m.mu.RUnlock()
	return tally, ok
}

func (m *MemoryTracker) Store(key Key, tally stats.Tally) error {
	m.mu.Lock()
	m.results[key] = tally
	m.mu.Unlock()
	return nil
}

func (m *MemoryTracker) Snapshot() Snapshot {
	m.mu.RLock()
	count := len(m.results)
	m.mu.RUnlock()
	return Snapshot{Entries: count}
}

// FileTracker persists scan results so unchanged mailboxes are not scanned
// again on later runs.
type FileTracker struct {
	*MemoryTracker
	path    string
	writer  *bufio.Writer
	file    *os.File
	writeMu sync.Mutex
}

type fileRecord struct {
	Key      Key         `json:"key"`
	Tally    stats.Tally `json:"tally"`
	StoredAt time.Time   `json:"stored_at"`
}

func NewFileTracker(stateDir string) (*FileTracker, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, fmt.Errorf("state directory is empty")
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	tracker := &FileTracker{
		MemoryTracker: NewMemoryTracker(),
		path:          filepath.Join(stateDir, "results.jsonl"),
	}

	if err := tracker.load(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(tracker.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open state file for append: %w", err)
	}
	tracker.file = file
	tracker.writer = bufio.NewWriterSize(file, 64*1024) // 64KB buffer

	return tracker, nil
}

func (f *FileTracker) load() error {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}

		var record fileRecord
		if err := json.Unmarshal(text, &record); err != nil {
			return fmt.Errorf("parse state line %d: %w", line, err)
		}
		if record.Key.Path == "" {
			continue
		}

		// Later lines win.
		f.mu.Lock()
		f.results[record.Key] = record.Tally
		f.mu.Unlock()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	return nil
}

func (f *FileTracker) Store(key Key, tally stats.Tally) error {
	f.mu.Lock()
	if existing, ok := f.results[key]; ok && existing == tally {
		f.mu.Unlock()
		return nil
	}
	f.results[key] = tally
	f.mu.Unlock()

	data, err := json.Marshal(fileRecord{Key: key, Tally: tally, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode state record: %w", err)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("write state record: %w", err)
	}
	if err := f.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	return nil
}

// Close flushes and closes the state file.
func (f *FileTracker) Close() error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if f.file == nil {
		return nil
	}

	var firstErr error
	if err := f.writer.Flush(); err != nil {
		firstErr = fmt.Errorf("flush state file: %w", err)
	}
	if err := f.file.Sync(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("sync state file: %w", err)
	}
	if err := f.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close state file: %w", err)
	}
	f.file = nil
	f.writer = nil

	return firstErr
}
