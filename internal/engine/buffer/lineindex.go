package buffer

import "sort"

// lineIndex caches the start offset of every line. It is rebuilt lazily
// after an edit invalidates it.
type lineIndex struct {
	starts []int
	valid  bool
}

func (li *lineIndex) invalidate() {
	li.valid = false
}

func (li *lineIndex) rebuild(content []byte) {
	if li.valid {
		return
	}
	li.starts = li.starts[:0]
	li.starts = append(li.starts, 0)
	for i, c := range content {
		if c == '\n' {
			li.starts = append(li.starts, i+1)
		}
	}
	li.valid = true
}

// Line Queries

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.rebuild(b.content)
	return len(b.lines.starts)
}

// LineForOffset returns the 0-indexed line containing the offset.
// Offsets past the end of the buffer map to the last line.
func (b *Buffer) LineForOffset(offset int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.rebuild(b.content)
	if offset <= 0 {
		return 0
	}
	// First line start strictly past the offset, minus one.
	i := sort.SearchInts(b.lines.starts, offset+1)
	return i - 1
}

// LineStart returns the byte offset of the start of a line.
// Lines past the end map to the buffer length.
func (b *Buffer) LineStart(line int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.rebuild(b.content)
	if line < 0 {
		return 0
	}
	if line >= len(b.lines.starts) {
		return len(b.content)
	}
	return b.lines.starts[line]
}

// LineEnd returns the byte offset just past the last content byte of a
// line, excluding its newline.
func (b *Buffer) LineEnd(line int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines.rebuild(b.content)
	if line < 0 {
		return 0
	}
	if line+1 < len(b.lines.starts) {
		return b.lines.starts[line+1] - 1
	}
	return len(b.content)
}
