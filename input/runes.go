package input

import (
	"fmt"
	"unicode/utf8"
)

// RuneCursor is an in-memory Cursor over UTF-8 text.
// Positions count runes; Offset reports the matching byte offset, which is
// what callers slicing the original text need. Invalid UTF-8 decodes as
// utf8.RuneError, one byte at a time.
type RuneCursor struct {
	runes []rune
	offs  []int // offs[i] is the byte offset of runes[i]; offs[len(runes)] is len(text)
	pos   int
	marks int
}

// NewString creates a cursor positioned at the start of s.
func NewString(s string) *RuneCursor {
	c := &RuneCursor{
		runes: make([]rune, 0, len(s)),
		offs:  make([]int, 0, len(s)+1),
	}
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		c.runes = append(c.runes, r)
		c.offs = append(c.offs, i)
		i += w
	}
	c.offs = append(c.offs, len(s))
	return c
}

// NewBytes creates a cursor positioned at the start of b.
func NewBytes(b []byte) *RuneCursor {
	return NewString(string(b))
}

// Peek implements Cursor.
func (c *RuneCursor) Peek() rune {
	if c.pos >= len(c.runes) {
		return EOF
	}
	return c.runes[c.pos]
}

// Advance implements Cursor.
func (c *RuneCursor) Advance() {
	if c.pos < len(c.runes) {
		c.pos++
	}
}

// Mark implements Cursor. The checkpoint is the current position.
func (c *RuneCursor) Mark() int {
	c.marks++
	return c.pos
}

// RewindTo implements Cursor.
func (c *RuneCursor) RewindTo(mark int) {
	if mark < 0 || mark > len(c.runes) {
		panic(fmt.Sprintf("input: rewind to %d outside [0, %d]", mark, len(c.runes)))
	}
	c.pos = mark
}

// Release implements Cursor.
func (c *RuneCursor) Release(int) {
	if c.marks > 0 {
		c.marks--
	}
}

// Position implements Cursor.
func (c *RuneCursor) Position() int {
	return c.pos
}

// Offset returns the byte offset of the current position.
func (c *RuneCursor) Offset() int {
	return c.offs[c.pos]
}

// OffsetOf returns the byte offset of rune position pos.
func (c *RuneCursor) OffsetOf(pos int) int {
	return c.offs[pos]
}

// Len returns the number of runes in the text.
func (c *RuneCursor) Len() int {
	return len(c.runes)
}

// Marks returns the number of outstanding marks.
func (c *RuneCursor) Marks() int {
	return c.marks
}

// SkipTo advances to the first position whose byte offset is >= offset.
func (c *RuneCursor) SkipTo(offset int) {
	for c.pos < len(c.runes) && c.offs[c.pos] < offset {
		c.pos++
	}
}
