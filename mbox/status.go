package mbox

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	statusField  = []byte("Status: ")
	xStatusField = []byte("X-Status: ")
)

// AppendStatusFlags appends the status characters carried by a header line
// to dst. Only "Status: " and "X-Status: " lines holding exactly one value
// token contribute; anything else, including invalid UTF-8, is skipped.
func AppendStatusFlags(dst, line []byte) []byte {
	if !bytes.HasPrefix(line, statusField) && !bytes.HasPrefix(line, xStatusField) {
		return dst
	}
	if !utf8.Valid(line) {
		return dst
	}

	fields := strings.FieldsFunc(string(line), isSpace)
	if len(fields) != 2 {
		return dst
	}
	return append(dst, fields[1]...)
}

// isSpace also treats the ASCII file, group, record and unit separators as
// whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
