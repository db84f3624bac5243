package stats

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ClearLine erases the current terminal line so a summary overwrites any
// progress bar drawn before it.
const ClearLine = "\033[K"

// Formatter renders summary lines with the digit grouping of a locale.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Summary returns the summary line for path without the line clearing
// prefix or trailing newline.
func (f *Formatter) Summary(path string, t Tally) string {
	return path + ": " + f.printer.Sprintf("size=%d, count=%d, downloaded=%d, unread=%d, deleted=%d",
		t.Size, t.Messages, t.NonRecent, t.Unread(), t.Deleted)
}
