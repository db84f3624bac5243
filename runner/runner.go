package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dhcgn/mbox-stat/config"
	"github.com/dhcgn/mbox-stat/mbox"
	"github.com/dhcgn/mbox-stat/model"
	"github.com/dhcgn/mbox-stat/progress"
	"github.com/dhcgn/mbox-stat/state"
	"github.com/dhcgn/mbox-stat/stats"
)

var (
	ErrFilesFailed   = errors.New("some mailboxes could not be scanned")
	ErrCountMismatch = errors.New("message counts differ from go-mbox")
)

// Runner scans the configured mailboxes strictly one after another and
// prints one summary line per file.
type Runner struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer

	display   progress.Display
	formatter *stats.Formatter
	tracker   state.Tracker

	subscribers []func(stats.Event)
	failed      int
}

func New(cfg config.Config, out io.Writer, logger *slog.Logger) (*Runner, error) {
	display, err := progress.New(cfg.Progress, out)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		display:   display,
		formatter: stats.NewFormatter(cfg.Locale),
	}

	if cfg.StateDir != "" {
		tracker, err := state.NewFileTracker(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("state tracker: %w", err)
		}
		r.tracker = tracker
	}

	return r, nil
}

// Subscribe registers fn to receive one event per processed file.
func (r *Runner) Subscribe(fn func(stats.Event)) {
	r.subscribers = append(r.subscribers, fn)
}

func (r *Runner) EmitEvent(evt stats.Event) {
	for _, fn := range r.subscribers {
		fn(evt)
	}
}

// Close releases the result cache, if any.
func (r *Runner) Close() error {
	if c, ok := r.tracker.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run processes every path in order. A path that cannot be stat'ed or read
// aborts the run. A malformed mailbox aborts the run unless KeepGoing is
// set, in which case it is reported as an error event and ErrFilesFailed is
// returned at the end. Errors that abort the run, cancellation included,
// are only returned.
func (r *Runner) Run(ctx context.Context) error {
	defer r.logCache()

	for _, path := range r.cfg.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := r.processFile(ctx, path)
		if err == nil {
			continue
		}

		if r.cfg.KeepGoing && errors.Is(err, mbox.ErrMalformedMailbox) {
			r.EmitEvent(stats.Event{Type: stats.EventTypeError, Path: path, Err: err})
			r.failed++
			continue
		}
		return err
	}

	if r.failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, r.failed, len(r.cfg.Paths))
	}
	return nil
}

func (r *Runner) processFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat mbox: %w", err)
	}

	key := state.KeyFor(path, info)
	if r.tracker != nil {
		if tally, ok := r.tracker.Lookup(key); ok {
			r.printSummary(path, tally)
			r.EmitEvent(stats.Event{Type: stats.EventTypeCached, Path: path, Tally: tally})
			return nil
		}
	}

	tally, err := r.scan(ctx, path, info.Size())
	if err != nil {
		return err
	}

	if r.tracker != nil {
		if err := r.tracker.Store(key, tally); err != nil && r.logger != nil {
			r.logger.Warn("could not cache result", "path", path, "err", err)
		}
	}

	r.printSummary(path, tally)
	r.EmitEvent(stats.Event{Type: stats.EventTypeScanned, Path: path, Tally: tally})
	return nil
}

func (r *Runner) scan(ctx context.Context, path string, size int64) (stats.Tally, error) {
	tally := stats.Tally{Size: size}

	var opts mbox.Options
	if r.cfg.Progress != progress.ModeNone {
		opts.Progress = r.display
	}

	r.display.Start(path)
	defer r.display.Stop()

	err := mbox.Scan(ctx, path, opts, func(rec model.Record) error {
		tally.AddRecord(rec)
		return nil
	})
	if err != nil {
		return stats.Tally{}, err
	}
	return tally, nil
}

func (r *Runner) printSummary(path string, tally stats.Tally) {
	fmt.Fprintf(r.out, "%s%s\n", stats.ClearLine, r.formatter.Summary(path, tally))
}

// Verify counts the records of every path with the scanner and with go-mbox
// and prints one comparison line per file. Counts may legitimately differ
// for mailboxes holding "From MAILER_DAEMON" lines.
func (r *Runner) Verify(ctx context.Context) error {
	mismatches := 0
	for _, path := range r.cfg.Paths {
		records, err := mbox.CountRecords(ctx, path)
		if err != nil {
			return fmt.Errorf("count records: %w", err)
		}
		messages, err := mbox.CountMessages(path)
		if err != nil {
			return fmt.Errorf("count messages with go-mbox: %w", err)
		}

		match := records == messages
		if !match {
			mismatches++
		}
		fmt.Fprintf(r.out, "%s: records=%d, go-mbox=%d, match=%t\n", path, records, messages, match)
	}

	if mismatches > 0 {
		return fmt.Errorf("%w: %d of %d", ErrCountMismatch, mismatches, len(r.cfg.Paths))
	}
	return nil
}

func (r *Runner) logCache() {
	if r.tracker == nil || r.logger == nil {
		return
	}
	r.logger.Info("result cache", "dir", r.cfg.StateDir, "entries", r.tracker.Snapshot().Entries)
}
