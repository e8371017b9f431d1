package ops

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/match"
	"github.com/dshills/syncedit/internal/engine/mirror"
	"github.com/dshills/syncedit/internal/engine/occur"
)

func fixture(t *testing.T, text, pattern string) (*buffer.Buffer, *occur.Registry, *mirror.Engine, *Operators) {
	t.Helper()
	buf := buffer.FromString(text)
	reg := occur.NewRegistry(buf)
	p, err := match.Compile(pattern, match.Options{CaseSensitive: true})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if _, err := reg.CreateFromPattern(p, 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	eng := mirror.NewEngine(buf, reg)
	return buf, reg, eng, NewOperators(buf, reg, eng)
}

func TestUpcaseAll(t *testing.T) {
	buf, reg, eng, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.UpcaseAll(); err != nil {
		t.Fatalf("upcase failed: %v", err)
	}
	if got, want := buf.Text(), "FOO bar FOO baz FOO"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if n, uniform := reg.UniformLen(); !uniform || n != 3 {
		t.Errorf("expected uniform length 3, got %d (uniform=%v)", n, uniform)
	}
	if eng.Aborted() {
		t.Error("suppressed sweep must not abort")
	}
}

func TestDowncaseAll(t *testing.T) {
	buf, _, _, p := fixture(t, "FOO bar FOO baz FOO", "FOO")

	if err := p.DowncaseAll(); err != nil {
		t.Fatalf("downcase failed: %v", err)
	}
	if got, want := buf.Text(), "foo bar foo baz foo"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestToggleCaseAll(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.ToggleCaseAll(); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got, want := buf.Text(), "Foo bar Foo baz Foo"; got != want {
		t.Errorf("expected capitalized, got %q", got)
	}

	if err := p.ToggleCaseAll(); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got, want := buf.Text(), "foo bar foo baz foo"; got != want {
		t.Errorf("expected lowercased, got %q", got)
	}
}

func TestDeleteAll(t *testing.T) {
	buf, reg, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.DeleteAll(); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, want := buf.Text(), " bar  baz "; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	// Emptied occurrences stay tracked for a later refill.
	if reg.Count() != 3 {
		t.Errorf("expected 3 tracked occurrences, got %d", reg.Count())
	}
}

func TestBlankAll(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.BlankAll(); err != nil {
		t.Fatalf("blank failed: %v", err)
	}
	want := "   " + " bar " + "   " + " baz " + "   "
	if got := buf.Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReplaceAllPartialMatch(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.ReplaceAll("o", "0"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if got, want := buf.Text(), "f0o bar f0o baz f0o"; got != want {
		t.Errorf("expected first-match replace %q, got %q", want, got)
	}
}

func TestReplaceAllDefaultsToWholeOccurrence(t *testing.T) {
	buf, reg, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.ReplaceAll("", "longer"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if got, want := buf.Text(), "longer bar longer baz longer"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if n, uniform := reg.UniformLen(); !uniform || n != 6 {
		t.Errorf("expected uniform length 6, got %d (uniform=%v)", n, uniform)
	}
}

func TestReplaceAllDefaultUsesActiveOccurrence(t *testing.T) {
	// Occurrence texts diverge here (uniformity is lazy after explicit
	// additions), so the default must come from the recorded index, not
	// the first occurrence.
	buf := buffer.FromString("abc bar xyz")
	reg := occur.NewRegistry(buf)
	if err := reg.AddExplicitRegion(0, 3); err != nil {
		t.Fatalf("add explicit failed: %v", err)
	}
	if err := reg.AddExplicitRegion(8, 11); err != nil {
		t.Fatalf("add explicit failed: %v", err)
	}
	p := NewOperators(buf, reg, mirror.NewEngine(buf, reg))

	reg.SetIndex(2)
	if err := p.ReplaceAll("", "Q"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if got, want := buf.Text(), "abc bar Q"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReplaceAllSkipsNonMatching(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.ReplaceAll("zzz", "x"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if got, want := buf.Text(), "foo bar foo baz foo"; got != want {
		t.Errorf("expected untouched buffer, got %q", got)
	}
}

func TestNumberAll(t *testing.T) {
	buf, reg, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.NumberAll(1, ""); err != nil {
		t.Fatalf("number failed: %v", err)
	}
	if got, want := buf.Text(), "1 foo bar 2 foo baz 3 foo"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	// The labels land outside the occurrences.
	for i, o := range reg.Editable() {
		if got := buf.TextRange(o.Start(), o.End()); got != "foo" {
			t.Errorf("occurrence %d: expected %q, got %q", i, "foo", got)
		}
	}
}

func TestNumberAllCustomFormat(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	if err := p.NumberAll(10, "%d. "); err != nil {
		t.Fatalf("number failed: %v", err)
	}
	if got, want := buf.Text(), "10. foo bar 11. foo baz 12. foo"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNumberAllDefaultPadsForWidest(t *testing.T) {
	buf, _, _, p := fixture(t, "foo bar foo baz foo", "foo")

	// Counters 9..11 span one and two digits; single digits pad right.
	if err := p.NumberAll(9, ""); err != nil {
		t.Fatalf("number failed: %v", err)
	}
	if got, want := buf.Text(), "9  foo bar 10 foo baz 11 foo"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIncrementAll(t *testing.T) {
	buf, _, _, p := fixture(t, "v# bar v# baz v#", "v#")

	if err := p.IncrementAll("#", ""); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if got, want := buf.Text(), "v1 bar v2 baz v3"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIncrementAllAcrossDigitWidths(t *testing.T) {
	// Twelve occurrences: counters 1..12 cross the one-to-two digit
	// boundary. Reverse-order processing keeps every pending offset
	// valid despite the width change.
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("x# ")
	}
	buf, _, _, p := fixture(t, sb.String(), "x#")

	if err := p.IncrementAll("#", ""); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	var want strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&want, "x%d ", i)
	}
	if got := buf.Text(); got != want.String() {
		t.Errorf("expected %q, got %q", want.String(), got)
	}
}

func TestIncrementAllCustomFormat(t *testing.T) {
	buf, _, _, p := fixture(t, "a# a# a#", "a#")

	if err := p.IncrementAll("#", "%03d"); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if got, want := buf.Text(), "a001 a002 a003"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBulkRejectedWhileBuffering(t *testing.T) {
	_, _, _, p := fixture(t, "foo bar foo", "foo")
	p.SetBufferingProbe(func() bool { return true })

	for name, op := range map[string]func() error{
		"upcase":    p.UpcaseAll,
		"downcase":  p.DowncaseAll,
		"delete":    p.DeleteAll,
		"blank":     p.BlankAll,
		"replace":   func() error { return p.ReplaceAll("o", "0") },
		"number":    func() error { return p.NumberAll(1, "") },
		"increment": func() error { return p.IncrementAll("#", "") },
	} {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrBufferingActive) {
				t.Errorf("expected ErrBufferingActive, got %v", err)
			}
		})
	}
}

func TestBulkOnEmptyRegistry(t *testing.T) {
	buf := buffer.FromString("nothing here")
	reg := occur.NewRegistry(buf)
	eng := mirror.NewEngine(buf, reg)
	p := NewOperators(buf, reg, eng)

	if err := p.UpcaseAll(); !errors.Is(err, ErrNoOccurrences) {
		t.Errorf("expected ErrNoOccurrences, got %v", err)
	}
}
