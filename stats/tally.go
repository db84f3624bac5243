package stats

import (
	imapv2 "github.com/emersion/go-imap/v2"

	"github.com/dhcgn/mbox-stat/model"
)

// Tally accumulates the status counters of one mailbox file.
type Tally struct {
	Size      int64 `json:"size"`
	Messages  int   `json:"messages"`
	Read      int   `json:"read"`
	NonRecent int   `json:"non_recent"`
	Answered  int   `json:"answered"`
	Flagged   int   `json:"flagged"`
	Draft     int   `json:"draft"`
	Deleted   int   `json:"deleted"`
}

// Add counts one message with the given flag string. Every character is
// counted, so duplicates count more than once; unknown characters are
// ignored.
func (t *Tally) Add(flags string) {
	t.Messages++
	for _, c := range flags {
		switch model.Flag(c) {
		case model.FlagRead:
			t.Read++
		case model.FlagNonRecent:
			t.NonRecent++
		case model.FlagAnswered:
			t.Answered++
		case model.FlagFlagged:
			t.Flagged++
		case model.FlagDraft:
			t.Draft++
		case model.FlagDeleted:
			t.Deleted++
		}
	}
}

// AddRecord is Add for a scanned record.
func (t *Tally) AddRecord(r model.Record) {
	t.Add(r.Flags)
}

// Unread is derived from the read counter, not tracked separately.
func (t Tally) Unread() int {
	return t.Messages - t.Read
}

// Count returns the counter for a known flag.
func (t Tally) Count(f model.Flag) int {
	switch f {
	case model.FlagRead:
		return t.Read
	case model.FlagNonRecent:
		return t.NonRecent
	case model.FlagAnswered:
		return t.Answered
	case model.FlagFlagged:
		return t.Flagged
	case model.FlagDraft:
		return t.Draft
	case model.FlagDeleted:
		return t.Deleted
	}
	return 0
}

// IMAPCounts breaks the counters down by IMAP system flag.
func (t Tally) IMAPCounts() map[imapv2.Flag]int {
	counts := make(map[imapv2.Flag]int, len(model.KnownFlags))
	for _, f := range model.KnownFlags {
		if flag, ok := f.IMAP(); ok {
			counts[flag] = t.Count(f)
		}
	}
	return counts
}

// Merge adds the counters of other to t.
func (t *Tally) Merge(other Tally) {
	t.Size += other.Size
	t.Messages += other.Messages
	t.Read += other.Read
	t.NonRecent += other.NonRecent
	t.Answered += other.Answered
	t.Flagged += other.Flagged
	t.Draft += other.Draft
	t.Deleted += other.Deleted
}

func (t Tally) LogAttrs() []any {
	attrs := []any{"size", t.Size, "messages", t.Messages, "unread", t.Unread()}
	for _, f := range model.KnownFlags {
		attrs = append(attrs, f.String(), t.Count(f))
	}
	return attrs
}
