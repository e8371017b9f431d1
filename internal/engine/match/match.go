// Package match compiles occurrence patterns and searches buffer regions.
// Patterns are literal by default; regex mode and case sensitivity are
// opt-in per caller.
package match

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern indicates a pattern that failed to compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Options controls pattern compilation.
type Options struct {
	// UseRegex treats the pattern as a regular expression instead of a
	// literal string.
	UseRegex bool

	// CaseSensitive disables case folding.
	CaseSensitive bool

	// WholeWord anchors the pattern at word boundaries.
	WholeWord bool
}

// Span is a matched half-open region [Start, End).
type Span struct {
	Start int
	End   int
}

// Pattern is a compiled occurrence pattern.
type Pattern struct {
	re  *regexp.Regexp
	src string
}

// Compile builds a Pattern from a query string.
func Compile(query string, opts Options) (*Pattern, error) {
	pattern := query

	if !opts.UseRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if opts.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	return &Pattern{re: re, src: query}, nil
}

// String returns the original query string.
func (p *Pattern) String() string {
	return p.src
}

// Find returns the first match inside [from, to) of text, or false if the
// region holds none. With backward set, it returns the last match instead.
// Match offsets are absolute within text.
func (p *Pattern) Find(text string, from, to int, backward bool) (Span, bool) {
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from > to {
		return Span{}, false
	}

	region := text[from:to]
	if backward {
		locs := p.re.FindAllStringIndex(region, -1)
		if len(locs) == 0 {
			return Span{}, false
		}
		loc := locs[len(locs)-1]
		return Span{Start: from + loc[0], End: from + loc[1]}, true
	}

	loc := p.re.FindStringIndex(region)
	if loc == nil {
		return Span{}, false
	}
	return Span{Start: from + loc[0], End: from + loc[1]}, true
}

// FindAll returns every non-overlapping match inside [from, to) of text,
// in ascending order, with absolute offsets.
func (p *Pattern) FindAll(text string, from, to int) []Span {
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return nil
	}

	locs := p.re.FindAllStringIndex(text[from:to], -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]Span, len(locs))
	for i, loc := range locs {
		spans[i] = Span{Start: from + loc[0], End: from + loc[1]}
	}
	return spans
}
