package model

import imapv2 "github.com/emersion/go-imap/v2"

// Flag is a single status character found in a Status: or X-Status: header.
type Flag rune

const (
	FlagRead      Flag = 'R'
	FlagNonRecent Flag = 'O'
	FlagAnswered  Flag = 'A'
	FlagFlagged   Flag = 'F'
	FlagDraft     Flag = 'T'
	FlagDeleted   Flag = 'D'
)

// KnownFlags lists the recognised status characters in tally order.
var KnownFlags = []Flag{FlagRead, FlagNonRecent, FlagAnswered, FlagFlagged, FlagDraft, FlagDeleted}

func (f Flag) String() string {
	switch f {
	case FlagRead:
		return "read"
	case FlagNonRecent:
		return "non-recent"
	case FlagAnswered:
		return "answered"
	case FlagFlagged:
		return "flagged"
	case FlagDraft:
		return "draft"
	case FlagDeleted:
		return "deleted"
	}
	return "unknown(" + string(rune(f)) + ")"
}

// IMAP returns the IMAP system flag equivalent to f. Non-recent has no
// settable IMAP counterpart (\Recent is server-managed), so ok is false.
func (f Flag) IMAP() (flag imapv2.Flag, ok bool) {
	switch f {
	case FlagRead:
		return imapv2.FlagSeen, true
	case FlagAnswered:
		return imapv2.FlagAnswered, true
	case FlagFlagged:
		return imapv2.FlagFlagged, true
	case FlagDraft:
		return imapv2.FlagDraft, true
	case FlagDeleted:
		return imapv2.FlagDeleted, true
	}
	return "", false
}
