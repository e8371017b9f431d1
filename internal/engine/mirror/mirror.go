// Package mirror implements the synchronization engine: it listens to the
// buffer's per-span edit notifications and propagates the net change from
// the edited occurrence to every other editable occurrence at the
// equivalent offset.
//
// The engine is single-threaded by contract. It deliberately carries no
// mutex: its own mirrored edits re-enter the listener callbacks, which are
// absorbed by the scoped mirroring guard.
package mirror

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/occur"
)

// pendingEdit identifies one physical edit between its Before and After
// notifications. The identity (buffer revision plus replaced region) is
// what detects the host firing a second Before/After pair for the same
// edit, which happens for insertions at a zero-width occurrence or at the
// shared boundary of two conjoined occurrences.
type pendingEdit struct {
	rev        uint64
	start, end int
	primary    *buffer.Span
	snapshot   string
	offset     int
}

// Engine mirrors edits across the occurrence registry and owns abort
// detection for the session.
type Engine struct {
	buf *buffer.Buffer
	reg *occur.Registry
	dmp *diffmatchpatch.DiffMatchPatch

	// mirroring is the scoped re-entrancy guard: true only while the
	// engine applies its own propagated edits.
	mirroring bool

	// buffering reports whether the transaction manager has deferred
	// propagation. Set by the session; nil means never.
	buffering func() bool

	pending *pendingEdit

	aborting bool
	aborted  bool
	onAbort  func()

	deferred           []func()
	undoCheckScheduled bool
}

// NewEngine creates a synchronization engine over a registry and registers
// it as a listener on the buffer.
func NewEngine(buf *buffer.Buffer, reg *occur.Registry) *Engine {
	e := &Engine{
		buf: buf,
		reg: reg,
		dmp: diffmatchpatch.New(),
	}
	buf.AddListener(e)
	return e
}

// Close detaches the engine from the buffer.
func (e *Engine) Close() {
	e.buf.RemoveListener(e)
}

// SetOnAbort registers the session-ending callback. It is invoked exactly
// once if the engine aborts.
func (e *Engine) SetOnAbort(fn func()) {
	e.onAbort = fn
}

// SetBufferingProbe wires the transaction manager's state so propagation
// is bypassed while a buffered episode is active.
func (e *Engine) SetBufferingProbe(fn func() bool) {
	e.buffering = fn
}

// Aborting reports whether an abort has been triggered (scheduled or
// already delivered).
func (e *Engine) Aborting() bool {
	return e.aborting
}

// Aborted reports whether the abort callback has been delivered.
func (e *Engine) Aborted() bool {
	return e.aborted
}

// Reset clears the abort state and any pending or deferred work, making
// the engine usable for a fresh occurrence set after an abort ended the
// previous one.
func (e *Engine) Reset() {
	e.pending = nil
	e.aborting = false
	e.aborted = false
	e.deferred = nil
	e.undoCheckScheduled = false
}

// Suppress runs fn with the mirroring guard held, so buffer edits made by
// fn are not re-propagated. Bulk operators and the buffered-mode replay
// use this; they are already authoritative over every occurrence.
func (e *Engine) Suppress(fn func() error) error {
	prev := e.mirroring
	e.mirroring = true
	defer func() { e.mirroring = prev }()
	return fn()
}

// FinishCommand runs the actions deferred to the end of the current host
// command: the abort scheduled by an escaping edit and the post-undo
// consistency check. The host must call it after every command.
func (e *Engine) FinishCommand() {
	queue := e.deferred
	e.deferred = nil
	e.undoCheckScheduled = false
	for _, fn := range queue {
		fn()
	}
}

// Listener implementation

// BeforeEdit snapshots the pre-edit text and performs escape detection.
func (e *Engine) BeforeEdit(span *buffer.Span, start, end int) {
	if e.mirroring || e.aborting {
		return
	}
	if e.buf.UndoInProgress() {
		e.scheduleUndoCheck()
		return
	}

	if start < span.Start || end > span.End {
		// The edit escapes the tracked region. React only after the host
		// command completes so we never tear down state mid-edit.
		e.aborting = true
		e.deferred = append(e.deferred, e.abortNow)
		return
	}

	if p := e.pending; p != nil && p.rev == e.buf.Revision() && p.start == start && p.end == end {
		// Second Before for the same physical edit (zero-width or
		// conjoined-boundary insertion). The first span stays primary.
		return
	}
	e.pending = &pendingEdit{
		rev:      e.buf.Revision(),
		start:    start,
		end:      end,
		primary:  span,
		snapshot: e.buf.TextRange(start, end),
		offset:   start - span.Start,
	}
}

// AfterEdit classifies the completed edit and mirrors it onto every other
// editable occurrence.
func (e *Engine) AfterEdit(span *buffer.Span, start, end, deletedLen int) {
	if e.mirroring || e.aborting {
		return
	}
	if e.buf.UndoInProgress() {
		e.scheduleUndoCheck()
		return
	}

	p := e.pending
	if p == nil {
		return
	}
	if span != p.primary {
		// Duplicate half of a double notification; already handled.
		return
	}
	e.pending = nil

	newText := e.buf.TextRange(start, end)
	if newText == p.snapshot {
		return
	}

	source := e.reg.BySpan(p.primary)
	if source == nil {
		return
	}
	e.reconcile(source)

	if e.buffering != nil && e.buffering() {
		return
	}

	e.propagate(source, p.offset, p.snapshot, newText)
}

// propagate applies the change oldText -> newText at the given offset
// inside every editable occurrence other than source. The replacement is
// first narrowed to its changed core so mirrored edits touch the minimum
// span.
func (e *Engine) propagate(source *occur.Occurrence, offset int, oldText, newText string) {
	prefix := e.dmp.DiffCommonPrefix(oldText, newText)
	suffix := e.dmp.DiffCommonSuffix(oldText[prefix:], newText[prefix:])
	replacement := newText[prefix : len(newText)-suffix]
	oldLen := len(oldText) - prefix - suffix

	err := e.Suppress(func() error {
		for _, o := range e.reg.Editable() {
			if o == source {
				continue
			}
			at := o.Start() + offset + prefix
			if err := e.buf.Replace(at, at+oldLen, replacement); err != nil {
				return err
			}
			e.reconcile(o)
		}
		return nil
	})
	if err != nil {
		// A mirrored edit that cannot be applied means the occurrence
		// set no longer describes the buffer. Terminal.
		e.aborting = true
		e.deferred = append(e.deferred, e.abortNow)
	}
}

// reconcile restores the conjoined-range invariant around an occurrence
// whose boundary just moved: an adjacent occurrence extended over the same
// insertion is clipped so the two meet exactly, with no overlap.
func (e *Engine) reconcile(o *occur.Occurrence) {
	prev, next := e.reg.Neighbors(o)
	if next != nil && next.Start() < o.End() {
		next.Span().Start = o.End()
		if next.Span().End < next.Span().Start {
			next.Span().End = next.Span().Start
		}
	}
	if prev != nil && prev.End() > o.Start() {
		prev.Span().End = o.Start()
	}
}

// scheduleUndoCheck defers a uniform-length verification to the end of the
// current command. An undo that desynchronizes the occurrences aborts the
// session.
func (e *Engine) scheduleUndoCheck() {
	if e.undoCheckScheduled {
		return
	}
	e.undoCheckScheduled = true
	e.deferred = append(e.deferred, func() {
		if e.aborting {
			return
		}
		if _, ok := e.reg.UniformLen(); !ok {
			e.aborting = true
			e.abortNow()
		}
	})
}

// abortNow delivers the abort exactly once and clears the registry.
// Terminal for the session.
func (e *Engine) abortNow() {
	if e.aborted {
		return
	}
	e.aborted = true
	e.aborting = true
	if e.onAbort != nil {
		e.onAbort()
	}
	e.reg.Clear()
}
