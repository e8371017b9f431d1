package ops

import "errors"

// Operator errors.
var (
	// ErrBufferingActive is returned when a bulk operator runs while a
	// buffered editing episode is open.
	ErrBufferingActive = errors.New("buffering active")

	// ErrNoOccurrences is returned when an operator or navigation call
	// finds the registry empty.
	ErrNoOccurrences = errors.New("no occurrences")
)
