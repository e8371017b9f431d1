package txn

import "errors"

// Buffering errors.
var (
	// ErrAlreadyBuffering is returned when Start is called while an
	// episode is already open.
	ErrAlreadyBuffering = errors.New("buffering already active")

	// ErrNotBuffering is returned when Stop or Cancel is called with no
	// open episode.
	ErrNotBuffering = errors.New("buffering not active")

	// ErrNoOccurrenceAtPoint is returned when Start finds no occurrence
	// at the given position.
	ErrNoOccurrenceAtPoint = errors.New("no occurrence at point")
)
