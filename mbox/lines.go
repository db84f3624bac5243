package mbox

import (
	"bytes"
	"context"
	"io"
)

// CountLines counts newline characters in r. A trailing line without a
// newline is not counted. ctx is checked between reads.
func CountLines(ctx context.Context, r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		n, err := r.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}
