// Package txn implements buffered editing episodes: between Start and
// Stop, edits to the occurrence at point are not mirrored. Stop rolls
// the primary occurrence back to its baseline, then replays the final
// text onto every editable occurrence as a single undo group.
package txn

import (
	"sync"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/mirror"
	"github.com/dshills/syncedit/internal/engine/occur"
)

// Manager owns the buffering state for one session. Wire it to the
// mirror engine with eng.SetBufferingProbe(m.Active) so propagation is
// bypassed while an episode is open.
type Manager struct {
	mu  sync.Mutex
	buf *buffer.Buffer
	reg *occur.Registry
	eng *mirror.Engine

	active   bool
	primary  *occur.Occurrence
	baseline string
	cursor   int
	history  *buffer.History
}

// NewManager creates a buffering manager and registers it as the mirror
// engine's buffering probe.
func NewManager(buf *buffer.Buffer, reg *occur.Registry, eng *mirror.Engine) *Manager {
	m := &Manager{buf: buf, reg: reg, eng: eng}
	eng.SetBufferingProbe(m.Active)
	return m
}

// Active reports whether an episode is open.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Start opens a buffered episode on the occurrence at cursor. Undo
// recording is suspended for the episode's duration; the journal is
// stashed and restored on Stop or Cancel.
func (m *Manager) Start(cursor int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return ErrAlreadyBuffering
	}
	o := m.reg.ActiveAt(cursor)
	if o == nil || o.Kind() != occur.KindEditable {
		return ErrNoOccurrenceAtPoint
	}

	m.history = m.buf.History()
	m.buf.DisableUndo()

	m.primary = o
	m.baseline = m.buf.TextRange(o.Start(), o.End())
	m.cursor = cursor
	m.active = true
	return nil
}

// Stop closes the episode. If the primary occurrence's text is unchanged
// the episode is a no-op. Otherwise the primary is rolled back to its
// baseline and the final text is replayed onto every editable
// occurrence, journaled as one undo group anchored at the Start cursor.
// Returns whether anything changed.
func (m *Manager) Stop() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return false, ErrNotBuffering
	}
	m.active = false

	p := m.primary
	newText := m.buf.TextRange(p.Start(), p.End())

	if newText == m.baseline {
		m.restoreJournalLocked()
		return false, nil
	}

	// Roll back while recording is still off, so the journal sees only
	// the replay.
	err := m.eng.Suppress(func() error {
		return m.buf.Replace(p.Start(), p.End(), m.baseline)
	})
	m.restoreJournalLocked()
	if err != nil {
		return false, err
	}

	// Fence the replay into its own undo group, closed with the cursor
	// position from Start.
	m.buf.PushBoundary(m.cursor)
	if err := m.replayLocked(newText); err != nil {
		return false, err
	}
	m.buf.PushBoundary(m.cursor)
	return true, nil
}

// Cancel closes the episode and discards its edits, rolling the primary
// occurrence back to its baseline. Nothing is journaled.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return ErrNotBuffering
	}
	m.active = false

	p := m.primary
	var err error
	if m.buf.TextRange(p.Start(), p.End()) != m.baseline {
		err = m.eng.Suppress(func() error {
			return m.buf.Replace(p.Start(), p.End(), m.baseline)
		})
	}
	m.restoreJournalLocked()
	return err
}

// replayLocked writes text into every editable occurrence, highest
// offset first.
func (m *Manager) replayLocked(text string) error {
	occs := m.reg.Editable()
	for i := len(occs) - 1; i >= 0; i-- {
		o := occs[i]
		err := m.eng.Suppress(func() error {
			return m.buf.Replace(o.Start(), o.End(), text)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) restoreJournalLocked() {
	m.buf.EnableUndo()
	m.buf.SetHistory(m.history)
	m.history = nil
	m.primary = nil
}
