package stats

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

type EventType string

const (
	EventTypeScanned EventType = "scanned"
	EventTypeCached  EventType = "cached"
	EventTypeError   EventType = "error"
)

// Event reports the outcome of one mailbox file.
type Event struct {
	Type  EventType
	Path  string
	Tally Tally
	Err   error
}

// Summary aggregates the events of a whole run.
type Summary struct {
	Files     int
	Scanned   int
	Cached    int
	Errors    int
	Totals    Tally
	LastError error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"files", s.Files,
		"scanned", s.Scanned,
		"cached", s.Cached,
		"errors", s.Errors,
		"messages", s.Totals.Messages,
		"unread", s.Totals.Unread(),
		"deleted", s.Totals.Deleted,
		"size", humanize.IBytes(uint64(s.Totals.Size)),
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector folds events into a Summary. Files are processed one after
// another, so events are applied synchronously.
type Collector struct {
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Apply(evt Event) {
	c.summary.Files++
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
		c.summary.Totals.Merge(evt.Tally)
	case EventTypeCached:
		c.summary.Cached++
		c.summary.Totals.Merge(evt.Tally)
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	return c.summary
}

// EventStream is implemented by whatever drives the per-file loop.
type EventStream interface {
	Subscribe(fn func(Event))
}

// Reporter logs every file result and a run summary.
type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(stream EventStream, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
	stream.Subscribe(reporter.consume)
	return reporter
}

func (r *Reporter) consume(evt Event) {
	r.collector.Apply(evt)
	if r.logger == nil {
		return
	}

	switch evt.Type {
	case EventTypeScanned, EventTypeCached:
		r.logger.Info("mailbox "+string(evt.Type), "path", evt.Path,
			"size", humanize.IBytes(uint64(evt.Tally.Size)),
			"messages", humanize.Comma(int64(evt.Tally.Messages)))
		r.logger.Debug("mailbox counters", append([]any{"path", evt.Path}, evt.Tally.LogAttrs()...)...)
		for flag, n := range evt.Tally.IMAPCounts() {
			r.logger.Debug("imap flag", "path", evt.Path, "flag", string(flag), "count", n)
		}
	case EventTypeError:
		r.logger.Error("mailbox failed", "path", evt.Path, "err", evt.Err)
	}
}

// Finish logs the run summary and returns it.
func (r *Reporter) Finish() Summary {
	summary := r.collector.Snapshot()
	if r.logger != nil {
		attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
		r.logger.Info("stats summary", attrs...)
	}
	return summary
}
