package occur

import "errors"

// Errors returned by registry operations. All of them are local and
// recoverable: the registry is unchanged when they are returned, except
// ErrInconsistentLength which leaves it empty by design.
var (
	// ErrInconsistentLength indicates a pattern scan found matches of
	// unequal length. Creation is abandoned and the registry emptied.
	ErrInconsistentLength = errors.New("matches have inconsistent lengths")

	// ErrConflict indicates a proposed range overlaps an existing
	// editable occurrence.
	ErrConflict = errors.New("range conflicts with an existing occurrence")

	// ErrEmptyRegion indicates an explicit region with zero width.
	ErrEmptyRegion = errors.New("region is empty")

	// ErrLengthMismatch indicates an explicit region whose length differs
	// from the registry's uniform occurrence length.
	ErrLengthMismatch = errors.New("region length differs from occurrence length")

	// ErrNoMatch indicates a search found nothing. Non-fatal.
	ErrNoMatch = errors.New("no match")
)
