package occur

import (
	"sort"
	"sync"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/match"
)

// DefaultIndexThreshold is the registry size above which ApproximateIndex
// stops recounting and returns its last computed value.
const DefaultIndexThreshold = 1000

// ReadOnlyFunc reports whether any character in [start, end) carries a
// read-only marker. A nil func means nothing is read-only.
type ReadOnlyFunc func(start, end int) bool

// Registry owns the occurrence collections for one editing session.
// Editable occurrences are kept ordered by ascending start and, outside of
// mid-edit windows, all share one uniform length.
type Registry struct {
	mu  sync.RWMutex
	buf *buffer.Buffer

	editable []*Occurrence
	readOnly []*Occurrence

	indexThreshold int
	lastIndex      int
}

// Option configures a Registry.
type Option func(*Registry)

// WithIndexThreshold sets the editable-occurrence count above which
// ApproximateIndex retains its stale value instead of recounting.
func WithIndexThreshold(n int) Option {
	return func(r *Registry) {
		r.indexThreshold = n
	}
}

// NewRegistry creates an empty registry bound to a buffer.
func NewRegistry(buf *buffer.Buffer, opts ...Option) *Registry {
	r := &Registry{
		buf:            buf,
		indexThreshold: DefaultIndexThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateFromPattern scans [regionStart, regionEnd) for non-overlapping
// pattern matches and populates the registry with them, replacing any
// previous contents. Matches containing read-only text become read-only
// occurrences; the rest become editable. If an editable match's length
// differs from the first editable match's, creation is abandoned wholesale
// with ErrInconsistentLength and the registry is left empty. Returns the
// total number of occurrences created.
func (r *Registry) CreateFromPattern(p *match.Pattern, regionStart, regionEnd int, readOnlyAt ReadOnlyFunc) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearLocked()

	spans := p.FindAll(r.buf.Text(), regionStart, regionEnd)
	uniform := -1
	for _, m := range spans {
		if readOnlyAt != nil && readOnlyAt(m.Start, m.End) {
			r.trackLocked(m.Start, m.End, KindReadOnly)
			continue
		}
		if uniform < 0 {
			uniform = m.End - m.Start
		} else if m.End-m.Start != uniform {
			r.clearLocked()
			return 0, ErrInconsistentLength
		}
		r.trackLocked(m.Start, m.End, KindEditable)
	}

	return len(r.editable) + len(r.readOnly), nil
}

// AddAdjacent searches from the given position (forward, or backward when
// backward is set) for the next pattern match outside every existing
// editable occurrence and adds it as a new editable occurrence. Returns
// the new occurrence's start. Matches already fully inside an occurrence
// are skipped; a match that straddles an occurrence boundary returns
// ErrConflict; a missing match returns ErrNoMatch. Length uniformity is
// not enforced here.
func (r *Registry) AddAdjacent(p *match.Pattern, from int, backward bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := r.buf.Text()
	lo, hi := from, len(text)
	if backward {
		lo, hi = 0, from
	}

	for lo <= hi {
		m, ok := p.Find(text, lo, hi, backward)
		if !ok {
			return 0, ErrNoMatch
		}
		inside, straddles := r.classifyLocked(m.Start, m.End)
		if straddles {
			return 0, ErrConflict
		}
		// A zero-width match sitting on an occurrence boundary belongs
		// to that occurrence; tracking it would conjoin a phantom range.
		if !inside && m.Start == m.End {
			for _, o := range r.editable {
				if m.Start >= o.Start() && m.Start <= o.End() {
					inside = true
					break
				}
			}
		}
		if !inside {
			r.trackLocked(m.Start, m.End, KindEditable)
			return m.Start, nil
		}
		// Already an occurrence; keep looking past it.
		if backward {
			hi = m.Start
			if m.End == m.Start {
				hi--
			}
		} else {
			lo = m.End
			if m.End == m.Start {
				lo++
			}
		}
	}
	return 0, ErrNoMatch
}

// AddExplicitRegion adds a caller-selected region as an editable
// occurrence. The region must be non-empty, must not overlap an existing
// editable occurrence, and must match the registry's uniform length when
// the registry is non-empty.
func (r *Registry) AddExplicitRegion(start, end int) error {
	if start > end {
		start, end = end, start
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if start == end {
		return ErrEmptyRegion
	}
	if len(r.editable) > 0 && end-start != r.editable[0].Len() {
		return ErrLengthMismatch
	}
	if inside, straddles := r.classifyLocked(start, end); inside || straddles {
		return ErrConflict
	}

	r.trackLocked(start, end, KindEditable)
	return nil
}

// Remove drops one occurrence from the registry.
func (r *Registry) Remove(o *Occurrence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := &r.editable
	if o.kind == KindReadOnly {
		list = &r.readOnly
	}
	for i, t := range *list {
		if t == o {
			*list = append((*list)[:i], (*list)[i+1:]...)
			r.buf.Untrack(o.span)
			return
		}
	}
}

// Clear empties both collections and untracks every span.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

// Queries

// Count returns the number of editable occurrences.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.editable)
}

// ReadOnlyCount returns the number of read-only occurrences.
func (r *Registry) ReadOnlyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readOnly)
}

// Editable returns the editable occurrences in ascending start order.
func (r *Registry) Editable() []*Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Occurrence, len(r.editable))
	copy(out, r.editable)
	return out
}

// All returns every occurrence, editable and read-only, merged in
// ascending start order.
func (r *Registry) All() []*Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Occurrence, 0, len(r.editable)+len(r.readOnly))
	out = append(out, r.editable...)
	out = append(out, r.readOnly...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start() < out[j].Start() })
	return out
}

// BySpan returns the editable occurrence owning a tracked span.
func (r *Registry) BySpan(s *buffer.Span) *Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.editable {
		if o.span == s {
			return o
		}
	}
	return nil
}

// ActiveAt returns the editable occurrence whose region contains the
// position, boundaries included, or nil. With conjoined occurrences the
// earlier one wins.
func (r *Registry) ActiveAt(pos int) *Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.editable {
		if pos >= o.Start() && pos <= o.End() {
			return o
		}
	}
	return nil
}

// Neighbors returns the editable occurrences immediately before and after
// the given one in buffer order. Either may be nil.
func (r *Registry) Neighbors(o *Occurrence) (prev, next *Occurrence) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, t := range r.editable {
		if t == o {
			if i > 0 {
				prev = r.editable[i-1]
			}
			if i+1 < len(r.editable) {
				next = r.editable[i+1]
			}
			return prev, next
		}
	}
	return nil, nil
}

// UniformLen returns the shared length of all editable occurrences. It
// reports false if lengths have diverged. An empty registry is uniform.
func (r *Registry) UniformLen() (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.editable) == 0 {
		return 0, true
	}
	n := r.editable[0].Len()
	for _, o := range r.editable[1:] {
		if o.Len() != n {
			return 0, false
		}
	}
	return n, true
}

// ApproximateIndex returns the 1-based count of editable occurrences whose
// start is at or before the position. Above the configured threshold the
// count is skipped and the last computed value returned unchanged; exact
// jumps use SetIndex instead.
func (r *Registry) ApproximateIndex(pos int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.editable) > r.indexThreshold {
		return r.lastIndex
	}
	n := 0
	for _, o := range r.editable {
		if o.Start() > pos {
			break
		}
		n++
	}
	r.lastIndex = n
	return n
}

// SetIndex records an exactly known index, bypassing the threshold rule.
func (r *Registry) SetIndex(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastIndex = i
}

// Index returns the last recorded index.
func (r *Registry) Index() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastIndex
}

// Internal helpers

// classifyLocked reports how [start, end) relates to the editable set:
// inside means fully contained in one occurrence, straddles means it
// overlaps one without being contained.
func (r *Registry) classifyLocked(start, end int) (inside, straddles bool) {
	for _, o := range r.editable {
		if start < o.End() && end > o.Start() {
			if start >= o.Start() && end <= o.End() {
				return true, false
			}
			return false, true
		}
	}
	return false, false
}

// trackLocked registers a new occurrence and keeps the list ordered.
func (r *Registry) trackLocked(start, end int, kind Kind) *Occurrence {
	span := &buffer.Span{Start: start, End: end, Watched: kind == KindEditable}
	o := &Occurrence{span: span, kind: kind}
	r.buf.Track(span)

	list := &r.editable
	if kind == KindReadOnly {
		list = &r.readOnly
	}
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i].Start() > start })
	*list = append(*list, nil)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = o
	return o
}

// clearLocked empties both collections.
func (r *Registry) clearLocked() {
	for _, o := range r.editable {
		r.buf.Untrack(o.span)
	}
	for _, o := range r.readOnly {
		r.buf.Untrack(o.span)
	}
	r.editable = r.editable[:0]
	r.readOnly = r.readOnly[:0]
	r.lastIndex = 0
}
