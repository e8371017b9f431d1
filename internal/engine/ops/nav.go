// Package ops provides occurrence navigation and the bulk operators that
// transform every editable occurrence in one sweep.
package ops

import (
	"github.com/dshills/syncedit/internal/engine/occur"
)

// Move is the outcome of a navigation call.
type Move struct {
	// Pos is the cursor position after the move: the start of the target
	// occurrence, or the input position when AtEdge is set.
	Pos int

	// Index is the 1-based occurrence index at Pos. It is approximate
	// above the registry's threshold except after GotoFirst/GotoLast.
	Index int

	// Wrapped reports that the move crossed a buffer edge.
	Wrapped bool

	// AtEdge reports the one-shot boundary notice: the cursor is already
	// at the last (or first) occurrence and did not move. The next call
	// in the same direction wraps.
	AtEdge bool
}

// Navigator moves the cursor between tracked occurrences. Both editable
// and read-only occurrences are addressable.
type Navigator struct {
	reg *occur.Registry

	// noticed holds the direction of a pending one-shot boundary notice:
	// 0 none, +1 forward, -1 backward.
	noticed int
}

// NewNavigator creates a navigator over the registry.
func NewNavigator(reg *occur.Registry) *Navigator {
	return &Navigator{reg: reg}
}

// Next moves to the start of the first occurrence after pos. At the last
// occurrence it first reports the boundary without moving; a second
// consecutive Next wraps to the first occurrence.
func (n *Navigator) Next(pos int) (Move, error) {
	occs := n.reg.All()
	if len(occs) == 0 {
		return Move{Pos: pos}, ErrNoOccurrences
	}

	for _, o := range occs {
		if o.Start() > pos {
			n.noticed = 0
			return n.moveTo(o, false), nil
		}
	}

	if n.noticed != 1 {
		n.noticed = 1
		return Move{Pos: pos, Index: n.reg.ApproximateIndex(pos), AtEdge: true}, nil
	}
	n.noticed = 0
	return n.moveTo(occs[0], true), nil
}

// Previous moves to the start of the last occurrence before pos, with
// the same one-shot boundary notice before wrapping to the last
// occurrence.
func (n *Navigator) Previous(pos int) (Move, error) {
	occs := n.reg.All()
	if len(occs) == 0 {
		return Move{Pos: pos}, ErrNoOccurrences
	}

	for i := len(occs) - 1; i >= 0; i-- {
		if occs[i].Start() < pos {
			n.noticed = 0
			return n.moveTo(occs[i], false), nil
		}
	}

	if n.noticed != -1 {
		n.noticed = -1
		return Move{Pos: pos, Index: n.reg.ApproximateIndex(pos), AtEdge: true}, nil
	}
	n.noticed = 0
	return n.moveTo(occs[len(occs)-1], true), nil
}

// GotoFirst jumps to the first editable occurrence, the one the index
// counts as 1. The index is set exactly, regardless of the registry's
// approximation threshold.
func (n *Navigator) GotoFirst() (Move, error) {
	occs := n.reg.Editable()
	if len(occs) == 0 {
		return Move{}, ErrNoOccurrences
	}
	n.noticed = 0
	n.reg.SetIndex(1)
	return Move{Pos: occs[0].Start(), Index: 1}, nil
}

// GotoLast jumps to the last editable occurrence, setting the index
// exactly.
func (n *Navigator) GotoLast() (Move, error) {
	occs := n.reg.Editable()
	if len(occs) == 0 {
		return Move{}, ErrNoOccurrences
	}
	n.noticed = 0
	last := occs[len(occs)-1]
	n.reg.SetIndex(len(occs))
	return Move{Pos: last.Start(), Index: len(occs)}, nil
}

func (n *Navigator) moveTo(o *occur.Occurrence, wrapped bool) Move {
	pos := o.Start()
	return Move{Pos: pos, Index: n.reg.ApproximateIndex(pos), Wrapped: wrapped}
}
