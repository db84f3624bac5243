package state

import (
	"fmt"
	"testing"

	"github.com/dhcgn/mbox-stat/stats"
)

// BenchmarkFileTracker_Store benchmarks the state tracker write performance
func BenchmarkFileTracker_Store(b *testing.B) {
	tracker, err := NewFileTracker(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer tracker.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := Key{Path: fmt.Sprintf("/mail/box-%d", i), Size: int64(i), ModTime: int64(i)}
		if err := tracker.Store(key, stats.Tally{Messages: i}); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()

	if err := tracker.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkFileTracker_Lookup benchmarks lookup performance
func BenchmarkFileTracker_Lookup(b *testing.B) {
	tracker, err := NewFileTracker(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer tracker.Close()

	// Pre-populate with 1000 entries
	for i := 0; i < 1000; i++ {
		key := Key{Path: fmt.Sprintf("/mail/box-%d", i), Size: int64(i), ModTime: int64(i)}
		if err := tracker.Store(key, stats.Tally{Messages: i}); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := Key{Path: fmt.Sprintf("/mail/box-%d", i%1000), Size: int64(i % 1000), ModTime: int64(i % 1000)}
		tracker.Lookup(key)
	}
}
