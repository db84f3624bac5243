package model

// Record is what survives of one message after segmentation: its position
// in the mailbox and the status characters collected from its header.
type Record struct {
	// Number is the zero-based ordinal of the message in its file.
	Number int
	// Line is the one-based line number of the message's boundary line.
	Line int
	// Flags holds the status characters in discovery order. Duplicates and
	// unrecognised characters are kept verbatim.
	Flags string
}
