// Package occur maintains the registry of synchronized occurrences: the
// ordered set of editable ranges kept textually identical, plus a separate
// set of read-only ranges shown but never edited.
package occur

import (
	"fmt"

	"github.com/dshills/syncedit/internal/engine/buffer"
)

// Kind distinguishes occurrences that participate in synchronized edits
// from display-only ones.
type Kind uint8

const (
	// KindEditable occurrences receive and propagate edits.
	KindEditable Kind = iota

	// KindReadOnly occurrences are tracked for display and navigation
	// only.
	KindReadOnly
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEditable:
		return "editable"
	case KindReadOnly:
		return "read-only"
	default:
		return "unknown"
	}
}

// Occurrence is one tracked text region. Its position follows the buffer
// through the underlying tracked span.
type Occurrence struct {
	span *buffer.Span
	kind Kind
}

// Span returns the occurrence's tracked span. The pointer identity is how
// the synchronization engine matches incoming edit notifications to
// occurrences.
func (o *Occurrence) Span() *buffer.Span {
	return o.span
}

// Kind returns whether the occurrence is editable or read-only.
func (o *Occurrence) Kind() Kind {
	return o.kind
}

// Start returns the occurrence's current start offset.
func (o *Occurrence) Start() int {
	return o.span.Start
}

// End returns the occurrence's current end offset.
func (o *Occurrence) End() int {
	return o.span.End
}

// Len returns the occurrence's current length in bytes.
func (o *Occurrence) Len() int {
	return o.span.Len()
}

// String returns a human-readable representation of the occurrence.
func (o *Occurrence) String() string {
	return fmt.Sprintf("%s %s", o.kind, o.span)
}
