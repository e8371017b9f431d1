package occur

import (
	"errors"
	"testing"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/match"
)

func compile(t *testing.T, pattern string) *match.Pattern {
	t.Helper()
	p, err := match.Compile(pattern, match.Options{CaseSensitive: true})
	if err != nil {
		t.Fatalf("compile %q failed: %v", pattern, err)
	}
	return p
}

func TestCreateFromPattern(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	count, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 occurrences, got %d", count)
	}

	starts := []int{0, 8, 16}
	for i, o := range r.Editable() {
		if o.Start() != starts[i] || o.Len() != 3 {
			t.Errorf("occurrence %d: expected [%d:%d), got %s", i, starts[i], starts[i]+3, o.Span())
		}
	}
}

func TestCreateFromPatternRegionBounds(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	count, err := r.CreateFromPattern(compile(t, "foo"), 1, 12, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 occurrence in [1, 12), got %d", count)
	}
	if r.Editable()[0].Start() != 8 {
		t.Errorf("expected start 8, got %d", r.Editable()[0].Start())
	}
}

func TestCreateFromPatternInconsistentLength(t *testing.T) {
	buf := buffer.FromString("ab abb ab")
	r := NewRegistry(buf)

	_, err := r.CreateFromPattern(compile(t, "ab+"), 0, buf.Len(), nil)
	if !errors.Is(err, ErrInconsistentLength) {
		t.Fatalf("expected ErrInconsistentLength, got %v", err)
	}
	if r.Count() != 0 {
		t.Errorf("registry must be empty after failed creation, got %d", r.Count())
	}
}

func TestCreateFromPatternReadOnly(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	// The middle match sits in a read-only stretch.
	readOnly := func(start, end int) bool { return start >= 8 && end <= 11 }
	count, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), readOnly)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 total occurrences, got %d", count)
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 editable occurrences, got %d", r.Count())
	}
	if r.ReadOnlyCount() != 1 {
		t.Errorf("expected 1 read-only occurrence, got %d", r.ReadOnlyCount())
	}
}

func TestCreateFromPatternReplacesPrevious(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "bar"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 occurrences, got %d", r.Count())
	}
}

func TestAddAdjacentForward(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, 11, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.Count() != 2 {
		t.Fatalf("expected 2 occurrences, got %d", r.Count())
	}

	start, err := r.AddAdjacent(compile(t, "foo"), 11, false)
	if err != nil {
		t.Fatalf("add adjacent failed: %v", err)
	}
	if start != 16 {
		t.Errorf("expected start 16, got %d", start)
	}
	if r.Count() != 3 {
		t.Errorf("expected 3 occurrences, got %d", r.Count())
	}
}

func TestAddAdjacentSkipsExistingOccurrences(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, 11, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Searching from the very beginning must hop over the two matches
	// that are already occurrences.
	start, err := r.AddAdjacent(compile(t, "foo"), 0, false)
	if err != nil {
		t.Fatalf("add adjacent failed: %v", err)
	}
	if start != 16 {
		t.Errorf("expected start 16, got %d", start)
	}
}

func TestAddAdjacentBackward(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 8, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	start, err := r.AddAdjacent(compile(t, "foo"), 8, true)
	if err != nil {
		t.Fatalf("add adjacent failed: %v", err)
	}
	if start != 0 {
		t.Errorf("expected start 0, got %d", start)
	}
}

func TestAddAdjacentBackwardZeroWidthInsideOccurrence(t *testing.T) {
	buf := buffer.FromString("abc")
	r := NewRegistry(buf)

	if err := r.AddExplicitRegion(0, 3); err != nil {
		t.Fatalf("add explicit failed: %v", err)
	}

	// x* matches zero-width at every offset inside the occurrence; the
	// backward scan must keep shrinking past them and terminate.
	if _, err := r.AddAdjacent(compile(t, "x*"), 2, true); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestAddAdjacentNoMatch(t *testing.T) {
	buf := buffer.FromString("foo bar")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := r.AddAdjacent(compile(t, "foo"), 3, false); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestAddAdjacentConflict(t *testing.T) {
	buf := buffer.FromString("foofoo bar")
	r := NewRegistry(buf)

	// One occurrence straddling the middle of the two foos.
	if err := r.AddExplicitRegion(2, 5); err != nil {
		t.Fatalf("add explicit failed: %v", err)
	}
	if _, err := r.AddAdjacent(compile(t, "foo"), 0, false); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestAddExplicitRegion(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if err := r.AddExplicitRegion(0, 3); err != nil {
		t.Fatalf("add explicit failed: %v", err)
	}

	cases := []struct {
		name       string
		start, end int
		want       error
	}{
		{"empty region", 5, 5, ErrEmptyRegion},
		{"length mismatch", 4, 6, ErrLengthMismatch},
		{"overlap", 2, 5, ErrConflict},
		{"contained", 1, 2, ErrLengthMismatch},
		{"valid", 8, 11, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.AddExplicitRegion(tc.start, tc.end)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 occurrences, got %d", r.Count())
	}
}

func TestOccurrencesFollowEdits(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := buf.Insert(0, ">> "); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	occ := r.Editable()
	if occ[0].Start() != 3 || occ[1].Start() != 11 {
		t.Errorf("expected starts 3 and 11, got %d and %d", occ[0].Start(), occ[1].Start())
	}
}

func TestClearUntracksSpans(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	occ := r.Editable()
	r.Clear()

	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
	if err := buf.Insert(0, "x"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if occ[0].Start() != 0 {
		t.Errorf("cleared occurrence still rebasing: %s", occ[0].Span())
	}
}

func TestActiveAt(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if o := r.ActiveAt(1); o == nil || o.Start() != 0 {
		t.Errorf("expected first occurrence active at 1, got %v", o)
	}
	// End boundary is inclusive for active lookup so the cursor just past
	// typed text stays attached.
	if o := r.ActiveAt(3); o == nil || o.Start() != 0 {
		t.Errorf("expected first occurrence active at 3, got %v", o)
	}
	if o := r.ActiveAt(5); o != nil {
		t.Errorf("expected no active occurrence at 5, got %v", o)
	}
}

func TestUniformLen(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if n, ok := r.UniformLen(); !ok || n != 0 {
		t.Errorf("empty registry must be uniform, got %d %v", n, ok)
	}
	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if n, ok := r.UniformLen(); !ok || n != 3 {
		t.Errorf("expected uniform length 3, got %d %v", n, ok)
	}

	// Grow one occurrence behind the registry's back.
	if err := buf.Insert(1, "XX"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, ok := r.UniformLen(); ok {
		t.Error("expected uniformity violation after lone edit")
	}
}

func TestApproximateIndex(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := r.ApproximateIndex(0); got != 1 {
		t.Errorf("expected index 1 at offset 0, got %d", got)
	}
	if got := r.ApproximateIndex(9); got != 2 {
		t.Errorf("expected index 2 at offset 9, got %d", got)
	}
	if got := r.ApproximateIndex(100); got != 3 {
		t.Errorf("expected index 3 past the end, got %d", got)
	}
}

func TestApproximateIndexThresholdRetainsStaleValue(t *testing.T) {
	buf := buffer.FromString("a a a a a")
	r := NewRegistry(buf, WithIndexThreshold(2))

	if _, err := r.CreateFromPattern(compile(t, "a"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	r.SetIndex(1)

	// Five occurrences exceed the threshold of two: the count is skipped.
	if got := r.ApproximateIndex(8); got != 1 {
		t.Errorf("expected stale index 1, got %d", got)
	}
	r.SetIndex(5)
	if got := r.ApproximateIndex(0); got != 5 {
		t.Errorf("expected stale index 5, got %d", got)
	}
}

func TestNeighbors(t *testing.T) {
	buf := buffer.FromString("foo bar foo baz foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	occ := r.Editable()

	prev, next := r.Neighbors(occ[1])
	if prev != occ[0] || next != occ[2] {
		t.Errorf("wrong neighbors for middle occurrence")
	}
	prev, next = r.Neighbors(occ[0])
	if prev != nil || next != occ[1] {
		t.Errorf("wrong neighbors for first occurrence")
	}
}

func TestRemove(t *testing.T) {
	buf := buffer.FromString("foo bar foo")
	r := NewRegistry(buf)

	if _, err := r.CreateFromPattern(compile(t, "foo"), 0, buf.Len(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	occ := r.Editable()
	r.Remove(occ[0])

	if r.Count() != 1 {
		t.Fatalf("expected 1 occurrence, got %d", r.Count())
	}
	if r.Editable()[0] != occ[1] {
		t.Error("wrong occurrence removed")
	}
}
