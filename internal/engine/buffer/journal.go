package buffer

// editRecord is one invertible entry in the undo journal. Boundary records
// separate undo groups and carry the cursor position to restore.
type editRecord struct {
	start    int
	oldText  string
	newText  string
	boundary bool
	cursor   int
}

// journal is the buffer's undo log. Recording can be suspended so interim
// edits (buffered-mode keystrokes, mirrored propagation) leave no trace.
type journal struct {
	records   []editRecord
	recording bool
	undoing   bool
	limit     int
}

func (j *journal) add(r editRecord) {
	if !j.recording || j.undoing {
		return
	}
	j.records = append(j.records, r)
	j.trim()
}

func (j *journal) trim() {
	if j.limit > 0 && len(j.records) > j.limit {
		excess := len(j.records) - j.limit
		j.records = append(j.records[:0], j.records[excess:]...)
	}
}

// History is an opaque snapshot of the undo journal, used to stash and
// restore undo state around a buffered editing episode.
type History struct {
	records []editRecord
}

// Undo Interop

// DisableUndo suspends undo recording.
func (b *Buffer) DisableUndo() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal.recording = false
}

// EnableUndo resumes undo recording.
func (b *Buffer) EnableUndo() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal.recording = true
}

// UndoInProgress reports whether an Undo call is currently reverting edits.
func (b *Buffer) UndoInProgress() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.journal.undoing
}

// History returns a copy of the current undo journal.
func (b *Buffer) History() *History {
	b.mu.RLock()
	defer b.mu.RUnlock()
	records := make([]editRecord, len(b.journal.records))
	copy(records, b.journal.records)
	return &History{records: records}
}

// SetHistory replaces the undo journal wholesale.
func (b *Buffer) SetHistory(h *History) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := make([]editRecord, len(h.records))
	copy(records, h.records)
	b.journal.records = records
}

// PushBoundary ends the current undo group. The cursor position is
// restored when the group is undone. Consecutive boundaries collapse.
func (b *Buffer) PushBoundary(cursor int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.journal.records)
	if n > 0 && b.journal.records[n-1].boundary {
		b.journal.records[n-1].cursor = cursor
		return
	}
	b.journal.records = append(b.journal.records, editRecord{boundary: true, cursor: cursor})
	b.journal.trim()
}

// Undo reverts the most recent undo group and returns the cursor position
// recorded at its boundary, or -1 if none was recorded. Notifications fire
// for each reverted edit exactly as for a live edit; UndoInProgress reports
// true for their duration.
func (b *Buffer) Undo() (int, error) {
	b.mu.Lock()
	recs := b.journal.records
	i := len(recs) - 1
	cursor := -1
	// Skip the boundary that closes the group.
	for i >= 0 && recs[i].boundary {
		if cursor < 0 {
			cursor = recs[i].cursor
		}
		i--
	}
	if i < 0 {
		b.journal.records = recs[:0]
		b.mu.Unlock()
		return -1, ErrNothingToUndo
	}
	var group []editRecord
	for i >= 0 && !recs[i].boundary {
		group = append(group, recs[i])
		i--
	}
	b.journal.records = recs[:i+1]
	b.journal.undoing = true
	b.mu.Unlock()

	// group is already newest-first; reverting in that order keeps each
	// record's offsets valid.
	var err error
	for _, r := range group {
		if e := b.Replace(r.start, r.start+len(r.newText), r.oldText); e != nil && err == nil {
			err = e
		}
	}

	b.mu.Lock()
	b.journal.undoing = false
	b.mu.Unlock()
	return cursor, err
}
