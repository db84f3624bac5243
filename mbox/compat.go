package mbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	mboxlib "github.com/emersion/go-mbox"
)

// CountMessages counts the messages in an mbox file using go-mbox, which
// splits on every From_ line. It is used to cross-check the Scanner.
func CountMessages(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	return countMessages(file)
}

func countMessages(r io.Reader) (int, error) {
	reader := mboxlib.NewReader(r)

	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}

		// Just consume the message without parsing
		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			return count, fmt.Errorf("message %d read: %w", count, err)
		}
		count++
	}
}

// CountRecords counts the records the Scanner produces for the file at path.
func CountRecords(ctx context.Context, path string) (int, error) {
	s, err := Open(ctx, path, Options{})
	if err != nil {
		return 0, err
	}
	defer s.Close()

	count := 0
	for s.Next(ctx) {
		count++
	}
	return count, s.Err()
}
