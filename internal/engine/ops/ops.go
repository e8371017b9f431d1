package ops

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/mirror"
	"github.com/dshills/syncedit/internal/engine/occur"
)

// Operators applies one transformation to every editable occurrence in a
// single sweep. Sweeps run with mirroring suppressed: the operator is
// already authoritative over every occurrence, so propagation would only
// duplicate work. Occurrences are processed highest offset first so
// length-changing replacements never shift a not-yet-visited range.
type Operators struct {
	buf *buffer.Buffer
	reg *occur.Registry
	eng *mirror.Engine

	// busy reports whether a buffered episode is open; bulk sweeps are
	// rejected while it is. Set by the session; nil means never.
	busy func() bool
}

// NewOperators creates the bulk-operator set for one session.
func NewOperators(buf *buffer.Buffer, reg *occur.Registry, eng *mirror.Engine) *Operators {
	return &Operators{buf: buf, reg: reg, eng: eng}
}

// SetBufferingProbe wires the transaction manager's state so sweeps are
// rejected while an episode is open.
func (p *Operators) SetBufferingProbe(fn func() bool) {
	p.busy = fn
}

// UpcaseAll uppercases every occurrence.
func (p *Operators) UpcaseAll() error {
	return p.mapText(strings.ToUpper)
}

// DowncaseAll lowercases every occurrence.
func (p *Operators) DowncaseAll() error {
	return p.mapText(strings.ToLower)
}

// ToggleCaseAll flips every occurrence between capitalized and
// lowercase: an occurrence starting with an uppercase letter is
// lowercased wholesale, anything else gets its first letter capitalized.
func (p *Operators) ToggleCaseAll() error {
	return p.mapText(toggleCase)
}

// DeleteAll removes every occurrence's text. The emptied occurrences
// stay tracked as zero-width ranges.
func (p *Operators) DeleteAll() error {
	return p.mapText(func(string) string { return "" })
}

// BlankAll replaces every occurrence with spaces. The width is taken
// from the first occurrence; with uniform lengths every occurrence
// blanks identically.
func (p *Operators) BlankAll() error {
	if err := p.guard(); err != nil {
		return err
	}
	occs := p.reg.Editable()
	if len(occs) == 0 {
		return ErrNoOccurrences
	}
	blank := strings.Repeat(" ", occs[0].Len())
	return p.mapText(func(string) string { return blank })
}

// ReplaceAll replaces the first match of from inside each occurrence
// with to. An empty from defaults to the active occurrence's text, the
// one at the registry's recorded index (the first occurrence before any
// navigation), making the sweep a whole-occurrence replacement.
// Occurrences not containing from are left alone.
func (p *Operators) ReplaceAll(from, to string) error {
	if err := p.guard(); err != nil {
		return err
	}
	occs := p.reg.Editable()
	if len(occs) == 0 {
		return ErrNoOccurrences
	}
	if from == "" {
		active := occs[0]
		if i := p.reg.Index(); i >= 1 && i <= len(occs) {
			active = occs[i-1]
		}
		from = p.buf.TextRange(active.Start(), active.End())
	}
	return p.eng.Suppress(func() error {
		for i := len(occs) - 1; i >= 0; i-- {
			o := occs[i]
			text := p.buf.TextRange(o.Start(), o.End())
			idx := strings.Index(text, from)
			if idx < 0 {
				continue
			}
			at := o.Start() + idx
			if err := p.buf.Replace(at, at+len(from), to); err != nil {
				return err
			}
		}
		return nil
	})
}

// NumberAll inserts a running counter immediately before each
// occurrence, counting up in buffer order from startAt. The counter is
// rendered with fmt format; an empty format left-aligns the number in a
// column wide enough for the largest counter, followed by a space. The
// occurrences themselves are not touched.
func (p *Operators) NumberAll(startAt int, format string) error {
	if err := p.guard(); err != nil {
		return err
	}
	occs := p.reg.Editable()
	if len(occs) == 0 {
		return ErrNoOccurrences
	}
	if format == "" {
		width := len(strconv.Itoa(startAt + len(occs) - 1))
		format = fmt.Sprintf("%%-%dd ", width)
	}
	return p.eng.Suppress(func() error {
		for i := len(occs) - 1; i >= 0; i-- {
			o := occs[i]
			s := o.Start()
			label := fmt.Sprintf(format, startAt+i)
			if err := p.buf.Replace(s, s, label); err != nil {
				return err
			}
			// The insertion at the occurrence's start was absorbed into
			// its span; move the start past the label to leave the
			// occurrence text unchanged.
			o.Span().Start += len(label)
			if i > 0 {
				// A conjoined predecessor ending exactly at s absorbed
				// the label too.
				if prev := occs[i-1].Span(); prev.End > s {
					prev.End = s
				}
			}
		}
		return nil
	})
}

// IncrementAll replaces the first placeholder token inside each
// occurrence with an incrementing counter, 1 for the first occurrence in
// buffer order. The sweep itself runs highest offset first so counters
// of different digit widths never shift a pending replacement. An empty
// placeholder defaults to "#"; an empty format to "%d". Occurrences
// without the placeholder are left alone.
func (p *Operators) IncrementAll(placeholder, format string) error {
	if err := p.guard(); err != nil {
		return err
	}
	if placeholder == "" {
		placeholder = "#"
	}
	if format == "" {
		format = "%d"
	}
	occs := p.reg.Editable()
	if len(occs) == 0 {
		return ErrNoOccurrences
	}
	return p.eng.Suppress(func() error {
		for i := len(occs) - 1; i >= 0; i-- {
			o := occs[i]
			text := p.buf.TextRange(o.Start(), o.End())
			idx := strings.Index(text, placeholder)
			if idx < 0 {
				continue
			}
			at := o.Start() + idx
			label := fmt.Sprintf(format, i+1)
			if err := p.buf.Replace(at, at+len(placeholder), label); err != nil {
				return err
			}
		}
		return nil
	})
}

// mapText rewrites every occurrence through f, highest offset first.
func (p *Operators) mapText(f func(string) string) error {
	if err := p.guard(); err != nil {
		return err
	}
	occs := p.reg.Editable()
	if len(occs) == 0 {
		return ErrNoOccurrences
	}
	return p.eng.Suppress(func() error {
		for i := len(occs) - 1; i >= 0; i-- {
			o := occs[i]
			old := p.buf.TextRange(o.Start(), o.End())
			next := f(old)
			if next == old {
				continue
			}
			if err := p.buf.Replace(o.Start(), o.End(), next); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Operators) guard() error {
	if p.busy != nil && p.busy() {
		return ErrBufferingActive
	}
	return nil
}

func toggleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	if unicode.IsUpper(r) {
		return strings.ToLower(s)
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
