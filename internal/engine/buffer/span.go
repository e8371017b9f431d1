package buffer

import "fmt"

// Span is a half-open byte range [Start, End) tracked by a Buffer.
// Once registered with Track, its bounds are rebased after every edit so
// the span stays attached to the text between its boundaries. Insertions
// at either exact boundary extend the span; this keeps in-place typing
// inside the tracked region.
type Span struct {
	Start int // Inclusive start offset
	End   int // Exclusive end offset

	// Watched spans receive BeforeEdit/AfterEdit notifications.
	// Unwatched spans are rebased silently (display-only regions).
	Watched bool
}

// NewSpan creates an untracked span over [start, end).
func NewSpan(start, end int) *Span {
	return &Span{Start: start, End: end}
}

// String returns a human-readable representation of the span.
func (s *Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the length of the span in bytes.
func (s *Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero width.
func (s *Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if the offset lies inside the span.
func (s *Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Covers returns true if [start, end) lies entirely inside the span.
func (s *Span) Covers(start, end int) bool {
	return start >= s.Start && end <= s.End
}

// Overlaps returns true if the span overlaps [start, end).
func (s *Span) Overlaps(start, end int) bool {
	return start < s.End && end > s.Start
}

// rebase adjusts the span's bounds for a replacement of [start, end)
// by n bytes of new text.
//
// Pure insertions (start == end) use boundary-extending rules: the Start
// bound shifts only for insertions strictly before it, while the End bound
// shifts for insertions at or before it. A zero-width span at the insertion
// point therefore grows to cover the new text.
//
// Deletions and replacements shift bounds at or past the old end by the
// net length change and clip bounds strictly inside the replaced region.
func (s *Span) rebase(start, end, n int) {
	if start == end {
		// Pure insertion.
		if start < s.Start {
			s.Start += n
		}
		if start <= s.End {
			s.End += n
		}
		return
	}

	net := n - (end - start)

	switch {
	case s.Start >= end:
		s.Start += net
	case s.Start <= start:
		// Unchanged: replacement begins at or after the span start.
	default:
		s.Start = start
	}

	switch {
	case s.End >= end:
		s.End += net
	case s.End <= start:
		// Unchanged: replacement lies entirely after the span.
	default:
		s.End = start
	}

	if s.End < s.Start {
		s.End = s.Start
	}
}

// touchedBy reports whether an edit replacing [start, end) must be
// notified to this span. Pure insertions touch a span when the insertion
// point lies on or inside its bounds. Replacements touch a span when the
// replaced region overlaps it; a zero-width span is touched only when it
// lies strictly inside the replaced region.
func (s *Span) touchedBy(start, end int) bool {
	if start == end {
		return start >= s.Start && start <= s.End
	}
	if s.IsEmpty() {
		return start < s.Start && s.Start < end
	}
	return s.Overlaps(start, end)
}
