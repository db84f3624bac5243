package mbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhcgn/mbox-stat/model"
)

var (
	boundaryPrefix = []byte("From ")
	daemonPrefix   = []byte("From MAILER_DAEMON")
)

// ErrMalformedMailbox is returned when the first line of a stream is not a
// boundary line.
var ErrMalformedMailbox = errors.New("malformed mailbox: first line is not a From_ line")

// MalformedError describes a mailbox rejected by the first-line check.
type MalformedError struct {
	Path      string
	FirstLine string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v (got %q)", ErrMalformedMailbox, e.FirstLine)
	}
	return fmt.Sprintf("%s: %v (got %q)", e.Path, ErrMalformedMailbox, e.FirstLine)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedMailbox
}

// Progress observes how far a scan has read. It must not influence the
// records produced.
type Progress interface {
	Update(done, total int)
}

// Options configures a Scanner.
type Options struct {
	// Path is only used to annotate errors when the stream is not a file
	// opened by Open.
	Path string
	// Progress receives (lines read, TotalLines) after every line.
	Progress Progress
	// TotalLines is the precomputed line count passed to Progress.
	TotalLines int
}

// IsBoundary reports whether line starts a new message. Lines starting with
// "From MAILER_DAEMON" are deliberately not boundaries.
func IsBoundary(line []byte) bool {
	return bytes.HasPrefix(line, boundaryPrefix) && !bytes.HasPrefix(line, daemonPrefix)
}

// Scanner splits a mailbox stream into message records. Records are
// produced one at a time and only their flag strings are retained.
//
// The first boundary line is consumed when the Scanner is created, so a
// record is emitted when the following boundary (or end of stream) is read.
type Scanner struct {
	br       *bufio.Reader
	closer   io.Closer
	opts     Options
	buf      []byte
	lines    int
	inHeader bool
	number   int
	start    int
	pending  []byte
	record   model.Record
	done     bool
	err      error
}

// Open opens the mailbox at path. When opts.Progress is set and
// opts.TotalLines is zero the file is counted first. The returned Scanner
// owns the file; Close must be called on it.
func Open(ctx context.Context, path string, opts Options) (*Scanner, error) {
	opts.Path = path

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mbox: %w", err)
	}

	if opts.Progress != nil && opts.TotalLines == 0 {
		n, err := CountLines(ctx, file)
		if err == nil {
			_, err = file.Seek(0, io.SeekStart)
		}
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("count lines: %w", err)
		}
		opts.TotalLines = n
	}

	s, err := NewScanner(file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	s.closer = file
	return s, nil
}

// NewScanner reads the first line of r and fails with a *MalformedError if
// it is not a boundary line. The caller keeps ownership of r.
func NewScanner(r io.Reader, opts Options) (*Scanner, error) {
	s := &Scanner{
		br:   bufio.NewReaderSize(r, 64*1024),
		opts: opts,
	}

	first, err := s.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read first line: %w", err)
	}
	if !bytes.HasPrefix(first, boundaryPrefix) {
		return nil, &MalformedError{Path: opts.Path, FirstLine: string(bytes.TrimRight(first, "\r\n"))}
	}

	s.lines = 1
	s.report()
	s.start = 1
	s.inHeader = true
	return s, nil
}

// Next advances to the next record. It returns false at end of stream, on a
// read error or when ctx is done; Err distinguishes these.
func (s *Scanner) Next(ctx context.Context) bool {
	if s.done {
		return false
	}

	for {
		if err := ctx.Err(); err != nil {
			s.fail(err)
			return false
		}

		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			s.emit()
			s.done = true
			return true
		}
		if err != nil {
			s.fail(fmt.Errorf("read line %d: %w", s.lines+1, err))
			return false
		}

		s.lines++
		s.report()

		if IsBoundary(line) {
			s.emit()
			s.start = s.lines
			s.inHeader = true
			return true
		}

		if !s.inHeader {
			continue
		}
		if len(line) == 1 && line[0] == '\n' {
			s.inHeader = false
			continue
		}
		s.pending = AppendStatusFlags(s.pending, line)
	}
}

// Record returns the record produced by the last successful call to Next.
func (s *Scanner) Record() model.Record {
	return s.record
}

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error {
	return s.err
}

// Close releases the file opened by Open. It is safe to call more than once.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *Scanner) emit() {
	s.record = model.Record{
		Number: s.number,
		Line:   s.start,
		Flags:  string(s.pending),
	}
	s.number++
	s.pending = s.pending[:0]
}

func (s *Scanner) fail(err error) {
	s.done = true
	if s.opts.Path != "" {
		err = fmt.Errorf("%s: %w", s.opts.Path, err)
	}
	s.err = err
}

func (s *Scanner) report() {
	if s.opts.Progress != nil {
		s.opts.Progress.Update(s.lines, s.opts.TotalLines)
	}
}

// readLine returns the next line including its newline. A final line
// without a newline is returned with a nil error; io.EOF is only returned
// with an empty line. The slice is valid until the next call.
func (s *Scanner) readLine() ([]byte, error) {
	line, err := s.br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		s.buf = append(s.buf[:0], line...)
		for errors.Is(err, bufio.ErrBufferFull) {
			line, err = s.br.ReadSlice('\n')
			s.buf = append(s.buf, line...)
		}
		line = s.buf
	}
	if errors.Is(err, io.EOF) && len(line) > 0 {
		return line, nil
	}
	return line, err
}

// Scan runs a Scanner over the mailbox at path and calls fn for every
// record. The file is closed on every return path.
func Scan(ctx context.Context, path string, opts Options, fn func(model.Record) error) error {
	s, err := Open(ctx, path, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	for s.Next(ctx) {
		if err := fn(s.Record()); err != nil {
			return err
		}
	}
	return s.Err()
}
