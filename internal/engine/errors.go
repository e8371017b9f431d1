package engine

import (
	"errors"

	"github.com/dshills/syncedit/internal/engine/occur"
	"github.com/dshills/syncedit/internal/engine/ops"
	"github.com/dshills/syncedit/internal/engine/txn"
)

// Errors returned by session operations.
var (
	// ErrSessionAborted indicates the synchronized-editing session was
	// terminated by an abort; only a fresh Activate revives it.
	ErrSessionAborted = errors.New("session aborted")

	// ErrNoPattern indicates AddNext/AddPrevious was called before any
	// pattern activation.
	ErrNoPattern = errors.New("no active pattern")
)

// Errors surfaced from sub-packages, re-exported for callers that only
// import the facade.
var (
	ErrInconsistentLength = occur.ErrInconsistentLength
	ErrConflict           = occur.ErrConflict
	ErrEmptyRegion        = occur.ErrEmptyRegion
	ErrLengthMismatch     = occur.ErrLengthMismatch
	ErrNoMatch            = occur.ErrNoMatch
	ErrBufferingActive    = ops.ErrBufferingActive
	ErrNoOccurrences      = ops.ErrNoOccurrences
	ErrAlreadyBuffering   = txn.ErrAlreadyBuffering
	ErrNotBuffering       = txn.ErrNotBuffering
)
