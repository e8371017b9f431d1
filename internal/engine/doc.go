// Package engine provides the core of syncedit: simultaneous editing of
// every occurrence of a piece of text in a buffer.
//
// The engine package is the facade, combining the buffer, the occurrence
// registry, the synchronization engine, visibility control, buffered-mode
// transactions, and navigation plus bulk operators into one Session API.
//
// # Architecture
//
// The session is built on several sub-packages:
//
//   - buffer: text storage with tracked spans, per-span edit
//     notifications and an undo journal
//   - match: pattern compilation (literal or regexp, case folding,
//     whole-word)
//   - occur: the registry of editable and read-only occurrences
//   - mirror: the synchronization engine propagating edits between
//     occurrences, with escape and post-undo abort detection
//   - visibility: hidden-region computation (context and occurrence
//     modes)
//   - txn: buffered editing episodes applied as one atomic replacement
//   - ops: navigation and the bulk operators
//
// # Concurrency
//
// A session is single-threaded by contract. All mutation happens
// synchronously inside one host-delivered command; the host calls
// FinishCommand after each command so deferred aborts and post-undo
// consistency checks never run mid-edit.
//
// # Basic Usage
//
// Activate a pattern and edit one occurrence; the rest follow:
//
//	s := engine.New(engine.WithContent("foo bar foo baz foo"))
//	n, _ := s.Activate("foo")       // n == 3
//	s.Buffer().Replace(0, 3, "qux") // every foo becomes qux
//	s.FinishCommand()
//	text := s.Text()                // "qux bar qux baz qux"
//
// Editing past an occurrence boundary, or an undo that leaves the
// occurrences with unequal lengths, aborts the session: the registry is
// cleared, the OnAbort callback fires once, and only a fresh Activate
// revives the session.
package engine
