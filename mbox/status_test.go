package mbox

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFlags(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "status", line: "Status: RO\n", want: "RO"},
		{name: "x-status", line: "X-Status: F\n", want: "F"},
		{name: "order preserved", line: "Status: OR\n", want: "OR"},
		{name: "no newline", line: "Status: R", want: "R"},
		{name: "crlf", line: "Status: RO\r\n", want: "RO"},
		{name: "tab separated value", line: "Status: \tA\n", want: "A"},
		{name: "unknown characters kept", line: "Status: RxZ\n", want: "RxZ"},
		{name: "non ascii value", line: "Status: Rä\n", want: "Rä"},
		{name: "bare field", line: "Status:\n", want: ""},
		{name: "field with trailing space only", line: "Status: \n", want: ""},
		{name: "extra token", line: "X-Status: A extra\n", want: ""},
		{name: "no space after colon", line: "Status:RO\n", want: ""},
		{name: "lowercase field", line: "status: RO\n", want: ""},
		{name: "leading whitespace", line: " Status: RO\n", want: ""},
		{name: "other field", line: "X-Mozilla-Status: 0001\n", want: ""},
		{name: "invalid utf8", line: "Status: R\xff\n", want: ""},
		{name: "unit separator splits", line: "Status: R\x1fO\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendStatusFlags(nil, []byte(tt.line))))
		})
	}
}

func TestAppendStatusFlags(t *testing.T) {
	var flags []byte
	flags = AppendStatusFlags(flags, []byte("Status: RO\n"))
	flags = AppendStatusFlags(flags, []byte("Subject: Status: D\n"))
	flags = AppendStatusFlags(flags, []byte("X-Status: F\n"))

	assert.Equal(t, "ROF", string(flags))
}

func TestIsBoundary(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"From a@x 1 Jan\n", true},
		{"From \n", true},
		{"From MAILER_DAEMON 1 Jan\n", false},
		{"From MAILER_DAEMONX\n", false},
		{"From MAILER-DAEMON 1 Jan\n", true},
		{"From: a@x\n", false},
		{">From a@x\n", false},
		{"From", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBoundary([]byte(tt.line)), "line %q", tt.line)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"no newline", 0},
		{"one\n", 1},
		{"one\ntwo", 1},
		{"\n\n\n", 3},
	}

	for _, tt := range tests {
		n, err := CountLines(context.Background(), strings.NewReader(tt.input))
		assert.NoError(t, err)
		assert.Equal(t, tt.want, n, "input %q", tt.input)
	}
}

func TestCountLinesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CountLines(ctx, strings.NewReader("one\ntwo\n"))
	assert.True(t, errors.Is(err, context.Canceled))
}
