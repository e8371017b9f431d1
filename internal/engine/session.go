package engine

import (
	"github.com/google/uuid"

	"github.com/dshills/syncedit/internal/engine/buffer"
	"github.com/dshills/syncedit/internal/engine/match"
	"github.com/dshills/syncedit/internal/engine/mirror"
	"github.com/dshills/syncedit/internal/engine/occur"
	"github.com/dshills/syncedit/internal/engine/ops"
	"github.com/dshills/syncedit/internal/engine/txn"
	"github.com/dshills/syncedit/internal/engine/visibility"
)

// Re-export commonly used types for convenience.
type (
	// Move is the outcome of a navigation call.
	Move = ops.Move

	// Region is a hidden buffer span.
	Region = visibility.Region

	// MatchOptions configures pattern compilation.
	MatchOptions = match.Options

	// Occurrence is one tracked text region.
	Occurrence = occur.Occurrence

	// Edit is one replacement in a batch.
	Edit = buffer.Edit
)

// Session is the facade for one synchronized-editing session: a buffer,
// the occurrence registry over it, the synchronization engine mirroring
// edits between occurrences, visibility control, buffered-mode
// transactions, and navigation plus bulk operators.
//
// The session is single-threaded by contract: all mutation happens
// synchronously inside one host-delivered command at a time, and the host
// calls FinishCommand after each command so deferred aborts and post-undo
// checks run between commands, never mid-edit.
type Session struct {
	id string

	buf *buffer.Buffer
	reg *occur.Registry
	eng *mirror.Engine
	vis *visibility.Manager
	txn *txn.Manager
	ops *ops.Operators
	nav *ops.Navigator

	pattern *match.Pattern
	onAbort func()

	// Creation-time configuration.
	initContent    string
	matchOpts      match.Options
	indexThreshold int
	journalLimit   int
	placeholder    string
	sink           visibility.Sink
	readOnlyAt     occur.ReadOnlyFunc
}

// New creates a session over its own buffer.
func New(opts ...Option) *Session {
	s := &Session{
		id:             uuid.NewString(),
		matchOpts:      match.Options{CaseSensitive: true},
		indexThreshold: DefaultIndexThreshold,
		placeholder:    DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(s)
	}

	var bufOpts []buffer.Option
	if s.journalLimit > 0 {
		bufOpts = append(bufOpts, buffer.WithJournalLimit(s.journalLimit))
	}
	s.buf = buffer.FromString(s.initContent, bufOpts...)
	s.reg = occur.NewRegistry(s.buf, occur.WithIndexThreshold(s.indexThreshold))
	s.eng = mirror.NewEngine(s.buf, s.reg)
	s.eng.SetOnAbort(s.handleAbort)
	if s.sink == nil {
		s.sink = &visibility.MemorySink{}
	}
	s.vis = visibility.NewManager(s.buf, s.reg, s.sink)
	s.txn = txn.NewManager(s.buf, s.reg, s.eng)
	s.ops = ops.NewOperators(s.buf, s.reg, s.eng)
	s.ops.SetBufferingProbe(s.txn.Active)
	s.nav = ops.NewNavigator(s.reg)
	return s
}

// ID returns the session's unique identity.
func (s *Session) ID() string { return s.id }

// Buffer returns the session's buffer.
func (s *Session) Buffer() *buffer.Buffer { return s.buf }

// Registry returns the session's occurrence registry.
func (s *Session) Registry() *occur.Registry { return s.reg }

// Visibility returns the session's visibility manager.
func (s *Session) Visibility() *visibility.Manager { return s.vis }

// Text returns the buffer's full content.
func (s *Session) Text() string { return s.buf.Text() }

// Count returns the number of editable occurrences.
func (s *Session) Count() int { return s.reg.Count() }

// Aborted reports whether the session was terminated by an abort.
func (s *Session) Aborted() bool { return s.eng.Aborted() }

// OnAbort registers a callback invoked exactly once if the session
// aborts, after any open buffered episode is cancelled and visibility
// restored.
func (s *Session) OnAbort(fn func()) {
	s.onAbort = fn
}

// FinishCommand runs actions deferred to the end of the current host
// command: a scheduled abort and the post-undo consistency check. Call it
// after every host command.
func (s *Session) FinishCommand() {
	s.eng.FinishCommand()
}

// Close tears the session down: any open buffered episode is discarded,
// visibility restored and the registry cleared.
func (s *Session) Close() {
	if s.txn.Active() {
		_ = s.txn.Cancel()
	}
	s.vis.ShowAll()
	s.reg.Clear()
	s.eng.Close()
}

// Activation

// Activate scans the whole buffer for the pattern and builds a fresh
// occurrence set, replacing any previous one. An aborted session is
// revived. Returns the number of occurrences.
func (s *Session) Activate(pattern string) (int, error) {
	p, err := match.Compile(pattern, s.matchOpts)
	if err != nil {
		return 0, err
	}
	s.eng.Reset()
	n, err := s.reg.CreateFromPattern(p, 0, s.buf.Len(), s.readOnlyAt)
	if err != nil {
		return 0, err
	}
	s.pattern = p
	return n, nil
}

// ActivateRegion adds one explicit editable range to the current set.
func (s *Session) ActivateRegion(start, end int) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.reg.AddExplicitRegion(start, end)
}

// AddNext extends the set with the next pattern match after from.
// Returns the new occurrence's start.
func (s *Session) AddNext(from int) (int, error) {
	return s.addAdjacent(from, false)
}

// AddPrevious extends the set with the previous pattern match before
// from. Returns the new occurrence's start.
func (s *Session) AddPrevious(from int) (int, error) {
	return s.addAdjacent(from, true)
}

func (s *Session) addAdjacent(from int, backward bool) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	if s.pattern == nil {
		return 0, ErrNoPattern
	}
	return s.reg.AddAdjacent(s.pattern, from, backward)
}

// Deactivate drops the occurrence set and restores visibility without
// touching the buffer. Unlike an abort, it is a clean exit.
func (s *Session) Deactivate() {
	s.vis.ShowAll()
	s.reg.Clear()
	s.pattern = nil
}

// Navigation

// Next moves to the start of the next occurrence after pos.
func (s *Session) Next(pos int) (Move, error) {
	if err := s.guard(); err != nil {
		return Move{Pos: pos}, err
	}
	return s.nav.Next(pos)
}

// Previous moves to the start of the previous occurrence before pos.
func (s *Session) Previous(pos int) (Move, error) {
	if err := s.guard(); err != nil {
		return Move{Pos: pos}, err
	}
	return s.nav.Previous(pos)
}

// GotoFirst jumps to the first editable occurrence with an exact index.
func (s *Session) GotoFirst() (Move, error) {
	if err := s.guard(); err != nil {
		return Move{}, err
	}
	return s.nav.GotoFirst()
}

// GotoLast jumps to the last editable occurrence with an exact index.
func (s *Session) GotoLast() (Move, error) {
	if err := s.guard(); err != nil {
		return Move{}, err
	}
	return s.nav.GotoLast()
}

// Bulk Operators

// UpcaseAll uppercases every occurrence.
func (s *Session) UpcaseAll() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.UpcaseAll()
}

// DowncaseAll lowercases every occurrence.
func (s *Session) DowncaseAll() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.DowncaseAll()
}

// ToggleCaseAll flips every occurrence between capitalized and
// lowercase.
func (s *Session) ToggleCaseAll() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.ToggleCaseAll()
}

// DeleteAll removes every occurrence's text, keeping the emptied ranges
// tracked.
func (s *Session) DeleteAll() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.DeleteAll()
}

// BlankAll replaces every occurrence with spaces of the shared length.
func (s *Session) BlankAll() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.BlankAll()
}

// ReplaceAll replaces the first match of from inside each occurrence
// with to; an empty from means the occurrence text itself.
func (s *Session) ReplaceAll(from, to string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.ReplaceAll(from, to)
}

// NumberAll inserts a running counter before each occurrence, counting
// from startAt in buffer order.
func (s *Session) NumberAll(startAt int, format string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.NumberAll(startAt, format)
}

// IncrementAll replaces the session's placeholder token inside each
// occurrence with an incrementing counter.
func (s *Session) IncrementAll(format string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.ops.IncrementAll(s.placeholder, format)
}

// Buffered Mode

// StartBuffering opens a buffered episode on the occurrence at cursor;
// edits inside it are not mirrored until StopBuffering.
func (s *Session) StartBuffering(cursor int) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.txn.Start(cursor)
}

// StopBuffering closes the episode and applies its net change uniformly
// to every occurrence as one undo group. Reports whether anything
// changed.
func (s *Session) StopBuffering() (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	return s.txn.Stop()
}

// CancelBuffering closes the episode and discards its edits.
func (s *Session) CancelBuffering() error {
	return s.txn.Cancel()
}

// Buffering reports whether a buffered episode is open.
func (s *Session) Buffering() bool {
	return s.txn.Active()
}

// Visibility

// HideContextLines hides the text between occurrences, keeping a margin
// of context lines around each.
func (s *Session) HideContextLines(marginLines int) []Region {
	return s.vis.HideContextLines(marginLines)
}

// HideOccurrenceLines hides the lines containing occurrences.
func (s *Session) HideOccurrenceLines() []Region {
	return s.vis.HideOccurrenceLines()
}

// ShowAll restores full visibility.
func (s *Session) ShowAll() {
	s.vis.ShowAll()
}

// Internal

func (s *Session) guard() error {
	if s.eng.Aborted() {
		return ErrSessionAborted
	}
	return nil
}

// handleAbort is the mirror engine's abort callback: it discards any open
// buffered episode, restores visibility and then notifies the host.
func (s *Session) handleAbort() {
	if s.txn.Active() {
		_ = s.txn.Cancel()
	}
	s.vis.ShowAll()
	s.pattern = nil
	if s.onAbort != nil {
		s.onAbort()
	}
}
