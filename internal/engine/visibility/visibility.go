// Package visibility computes hidden-region sets over the buffer: either
// the text between occurrences is hidden (keeping a margin of context
// lines visible around each), or the lines containing occurrences are.
// Hidden regions are recomputed wholesale on every toggle and applied
// through a host-supplied sink.
package visibility

import (
	"sync"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/occur"
)

// Region is a currently hidden buffer span [Start, End).
type Region struct {
	Start int
	End   int
}

// Sink receives the hidden-region set. Apply replaces the previous set
// wholesale; Apply(nil) restores full visibility.
type Sink interface {
	Apply(regions []Region)
}

// Mode identifies the active hide mode.
type Mode uint8

const (
	// ModeNone shows the whole buffer.
	ModeNone Mode = iota

	// ModeContext hides the text between occurrences.
	ModeContext

	// ModeOccurrence hides the lines containing occurrences.
	ModeOccurrence
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeContext:
		return "context"
	case ModeOccurrence:
		return "occurrence"
	default:
		return "unknown"
	}
}

// Manager owns the hidden-region computation for one session.
type Manager struct {
	mu   sync.Mutex
	buf  *buffer.Buffer
	reg  *occur.Registry
	sink Sink

	mode   Mode
	margin int
}

// NewManager creates a visibility manager writing to the given sink.
func NewManager(buf *buffer.Buffer, reg *occur.Registry, sink Sink) *Manager {
	return &Manager{buf: buf, reg: reg, sink: sink}
}

// Mode returns the active hide mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Margin returns the last-used context margin in lines.
func (m *Manager) Margin() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.margin
}

// HideContextLines hides every stretch of text between occurrences,
// keeping marginLines of context visible on each side of each occurrence.
// A negative margin is treated as zero. The previous hidden set, from
// either mode, is replaced. Returns the hidden regions.
func (m *Manager) HideContextLines(marginLines int) []Region {
	if marginLines < 0 {
		marginLines = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeContext
	m.margin = marginLines

	regions := m.contextRegions(marginLines)
	m.sink.Apply(regions)
	return regions
}

// HideOccurrenceLines hides exactly the lines containing occurrences,
// leaving context visible. Line blocks of occurrences within one blank
// line of each other merge into one hidden block. Returns the hidden
// regions.
func (m *Manager) HideOccurrenceLines() []Region {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeOccurrence

	regions := m.occurrenceRegions()
	m.sink.Apply(regions)
	return regions
}

// ShowAll clears every hidden region and restores normal display.
func (m *Manager) ShowAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeNone
	m.sink.Apply(nil)
}

// Refresh recomputes the current mode's hidden set with the last-used
// margin, for use after structural changes. Returns the hidden regions.
func (m *Manager) Refresh() []Region {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regions []Region
	switch m.mode {
	case ModeContext:
		regions = m.contextRegions(m.margin)
	case ModeOccurrence:
		regions = m.occurrenceRegions()
	default:
		m.sink.Apply(nil)
		return nil
	}
	m.sink.Apply(regions)
	return regions
}

// contextRegions returns the gaps between occurrence context windows.
func (m *Manager) contextRegions(margin int) []Region {
	occ := m.reg.Editable()
	if len(occ) == 0 {
		return nil
	}

	var regions []Region
	cursor := 0 // Exclusive end of the last visible window.
	for _, o := range occ {
		winStart := m.buf.LineStart(m.lineOfStart(o) - margin)
		winEnd := m.lineBlockEnd(m.lineOfEnd(o) + margin)
		if winStart > cursor {
			regions = append(regions, Region{Start: cursor, End: winStart})
		}
		if winEnd > cursor {
			cursor = winEnd
		}
	}
	if bufLen := m.buf.Len(); cursor < bufLen {
		regions = append(regions, Region{Start: cursor, End: bufLen})
	}
	return regions
}

// occurrenceRegions returns the line blocks holding occurrences, merging
// blocks separated by at most one line.
func (m *Manager) occurrenceRegions() []Region {
	occ := m.reg.Editable()
	if len(occ) == 0 {
		return nil
	}

	var regions []Region
	curStartLine, curEndLine := -1, -1
	flush := func() {
		if curStartLine < 0 {
			return
		}
		regions = append(regions, Region{
			Start: m.buf.LineStart(curStartLine),
			End:   m.lineBlockEnd(curEndLine),
		})
	}
	for _, o := range occ {
		startLine := m.lineOfStart(o)
		endLine := m.lineOfEnd(o)
		if curStartLine < 0 {
			curStartLine, curEndLine = startLine, endLine
			continue
		}
		if startLine <= curEndLine+2 {
			// Visually adjacent: at most one blank line between blocks.
			if endLine > curEndLine {
				curEndLine = endLine
			}
			continue
		}
		flush()
		curStartLine, curEndLine = startLine, endLine
	}
	flush()
	return regions
}

// lineOfStart returns the line holding the occurrence's first byte.
func (m *Manager) lineOfStart(o *occur.Occurrence) int {
	return m.buf.LineForOffset(o.Start())
}

// lineOfEnd returns the line holding the occurrence's last byte. A
// zero-width occurrence uses its position's line.
func (m *Manager) lineOfEnd(o *occur.Occurrence) int {
	end := o.End()
	if end > o.Start() {
		end--
	}
	return m.buf.LineForOffset(end)
}

// lineBlockEnd returns the exclusive offset just past a line's newline,
// so a hidden block swallows the line break too.
func (m *Manager) lineBlockEnd(line int) int {
	if line+1 >= m.buf.LineCount() {
		return m.buf.Len()
	}
	return m.buf.LineStart(line + 1)
}

// MemorySink is an in-memory Sink for tests and batch use.
type MemorySink struct {
	mu      sync.Mutex
	regions []Region
}

// Apply implements Sink.
func (s *MemorySink) Apply(regions []Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = append(s.regions[:0], regions...)
}

// Hidden returns the current hidden regions.
func (s *MemorySink) Hidden() []Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// IsVisible reports whether an offset is outside every hidden region.
func (s *MemorySink) IsVisible(offset int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions {
		if offset >= r.Start && offset < r.End {
			return false
		}
	}
	return true
}
