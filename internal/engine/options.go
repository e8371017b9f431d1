package engine

import (
	"github.com/dshills/syncedit/internal/engine/match"
	"github.com/dshills/syncedit/internal/engine/occur"
	"github.com/dshills/syncedit/internal/engine/visibility"
)

// Default configuration values.
const (
	DefaultPlaceholder    = "#"
	DefaultIndexThreshold = occur.DefaultIndexThreshold
)

// Option configures a Session during creation.
type Option func(*Session)

// WithContent sets the initial buffer content.
func WithContent(content string) Option {
	return func(s *Session) {
		s.initContent = content
	}
}

// WithMatchOptions sets the pattern-compilation options used by Activate
// and AddNext/AddPrevious.
func WithMatchOptions(opts match.Options) Option {
	return func(s *Session) {
		s.matchOpts = opts
	}
}

// WithIndexThreshold sets the occurrence count above which the
// approximate index stops recounting.
func WithIndexThreshold(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.indexThreshold = n
		}
	}
}

// WithJournalLimit caps the undo journal's record count.
func WithJournalLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.journalLimit = n
		}
	}
}

// WithPlaceholder sets the token IncrementAll replaces inside each
// occurrence.
func WithPlaceholder(token string) Option {
	return func(s *Session) {
		if token != "" {
			s.placeholder = token
		}
	}
}

// WithSink sets the visibility sink receiving hidden-region updates. The
// default is an in-memory sink.
func WithSink(sink visibility.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithReadOnlyFunc sets the probe Activate uses to classify matches over
// read-only text.
func WithReadOnlyFunc(fn occur.ReadOnlyFunc) Option {
	return func(s *Session) {
		s.readOnlyAt = fn
	}
}
