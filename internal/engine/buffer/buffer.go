package buffer

import (
	"errors"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrNothingToUndo    = errors.New("nothing to undo")
)

// Listener receives edit notifications for watched tracked spans.
//
// BeforeEdit is called prior to the mutation with the replaced region
// [start, end) in pre-edit coordinates. AfterEdit is called once the text
// has been mutated and every tracked span rebased; [start, end) is the new
// text's region and deletedLen is the length of the text it replaced.
type Listener interface {
	BeforeEdit(span *Span, start, end int)
	AfterEdit(span *Span, start, end, deletedLen int)
}

// Buffer is a mutable UTF-8 text buffer with tracked spans, per-span edit
// notifications, and an undo journal.
//
// The mutex guards the text and span state; listener callbacks run without
// it held. The edit protocol itself is single-threaded.
type Buffer struct {
	mu      sync.RWMutex
	content []byte
	rev     uint64
	lines   lineIndex

	spans     []*Span
	listeners []Listener

	journal journal
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithJournalLimit bounds the number of undo records kept.
// Zero or negative means unlimited.
func WithJournalLimit(n int) Option {
	return func(b *Buffer) {
		b.journal.limit = n
	}
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{}
	b.journal.recording = true
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromString creates a buffer with initial content. The initial content is
// not recorded in the undo journal.
func FromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.content = []byte(s)
	return b
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.content)
}

// TextRange returns the text in [start, end). Out-of-range bounds are
// clamped to the buffer.
func (b *Buffer) TextRange(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if start < 0 {
		start = 0
	}
	if end > len(b.content) {
		end = len(b.content)
	}
	if start >= end {
		return ""
	}
	return string(b.content[start:end])
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// Revision returns the current revision. It increments on every mutation.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rev
}

// Span Tracking

// Track registers a span for rebasement (and, if watched, notifications).
// A span must be tracked by at most one buffer.
func (b *Buffer) Track(s *Span) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spans = append(b.spans, s)
}

// Untrack removes a span from rebasement and notification delivery.
func (b *Buffer) Untrack(s *Span) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.spans {
		if t == s {
			b.spans = append(b.spans[:i], b.spans[i+1:]...)
			return
		}
	}
}

// AddListener registers an edit notification listener.
func (b *Buffer) AddListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters an edit notification listener.
func (b *Buffer) RemoveListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.listeners {
		if t == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Write Operations

// Insert inserts text at the given offset.
func (b *Buffer) Insert(at int, text string) error {
	return b.Replace(at, at, text)
}

// Delete removes the text in [start, end).
func (b *Buffer) Delete(start, end int) error {
	return b.Replace(start, end, "")
}

// Replace replaces the text in [start, end) with new text, rebasing every
// tracked span and firing Before/After notifications for each watched span
// the replaced region touches.
func (b *Buffer) Replace(start, end int, text string) error {
	b.mu.Lock()
	if start < 0 || start > end || end > len(b.content) {
		b.mu.Unlock()
		return ErrRangeInvalid
	}

	var touched []*Span
	for _, s := range b.spans {
		if s.Watched && s.touchedBy(start, end) {
			touched = append(touched, s)
		}
	}
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, s := range touched {
		for _, l := range listeners {
			l.BeforeEdit(s, start, end)
		}
	}

	b.mu.Lock()
	old := string(b.content[start:end])
	spliced := make([]byte, 0, len(b.content)-len(old)+len(text))
	spliced = append(spliced, b.content[:start]...)
	spliced = append(spliced, text...)
	spliced = append(spliced, b.content[end:]...)
	b.content = spliced

	for _, s := range b.spans {
		s.rebase(start, end, len(text))
	}
	b.rev++
	b.lines.invalidate()
	b.journal.add(editRecord{start: start, oldText: old, newText: text})
	newEnd := start + len(text)
	b.mu.Unlock()

	for _, s := range touched {
		for _, l := range listeners {
			l.AfterEdit(s, start, newEnd, len(old))
		}
	}
	return nil
}

// Edit is a pending replacement used by ApplyEdits.
type Edit struct {
	Start   int
	End     int
	NewText string
}

// ApplyEdits applies multiple edits. Edits must be sorted by descending
// Start and non-overlapping so earlier offsets stay valid.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i].End > edits[i-1].Start {
			return ErrRangeInvalid
		}
	}
	for _, e := range edits {
		if err := b.Replace(e.Start, e.End, e.NewText); err != nil {
			return err
		}
	}
	return nil
}
