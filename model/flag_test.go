package model

import (
	"testing"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
)

func TestFlagIMAP(t *testing.T) {
	tests := []struct {
		flag   Flag
		want   imapv2.Flag
		wantOK bool
	}{
		{FlagRead, imapv2.FlagSeen, true},
		{FlagAnswered, imapv2.FlagAnswered, true},
		{FlagFlagged, imapv2.FlagFlagged, true},
		{FlagDraft, imapv2.FlagDraft, true},
		{FlagDeleted, imapv2.FlagDeleted, true},
		{FlagNonRecent, "", false},
		{Flag('x'), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.flag.String(), func(t *testing.T) {
			got, ok := tt.flag.IMAP()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "read", FlagRead.String())
	assert.Equal(t, "non-recent", FlagNonRecent.String())
	assert.Equal(t, "unknown(N)", Flag('N').String())
}
