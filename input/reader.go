package input

import (
	"errors"
	"fmt"
	"io"
)

// ReaderCursor is a streaming Cursor over an io.RuneReader.
//
// Characters are read on demand. Consumed characters are kept only while at
// least one mark is outstanding, so memory stays proportional to the longest
// backtracking window rather than to the whole stream.
type ReaderCursor struct {
	r     io.RuneReader
	buf   []rune // buf[0] is the character at absolute position base
	base  int
	pos   int
	marks int
	eof   bool
	err   error
}

// NewReader creates a cursor reading from r.
func NewReader(r io.RuneReader) *ReaderCursor {
	return &ReaderCursor{r: r}
}

// fill reads until the character at pos is buffered or the stream ends.
func (c *ReaderCursor) fill() {
	for !c.eof && c.pos-c.base >= len(c.buf) {
		ch, _, err := c.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.err = err
			}
			c.eof = true
			return
		}
		c.buf = append(c.buf, ch)
	}
}

// trim drops consumed characters when nothing can rewind to them.
func (c *ReaderCursor) trim() {
	if c.marks > 0 || c.pos == c.base {
		return
	}
	n := copy(c.buf, c.buf[c.pos-c.base:])
	c.buf = c.buf[:n]
	c.base = c.pos
}

// Peek implements Cursor.
func (c *ReaderCursor) Peek() rune {
	c.fill()
	if c.pos-c.base >= len(c.buf) {
		return EOF
	}
	return c.buf[c.pos-c.base]
}

// Advance implements Cursor.
func (c *ReaderCursor) Advance() {
	if c.Peek() == EOF {
		return
	}
	c.pos++
	c.trim()
}

// Mark implements Cursor.
func (c *ReaderCursor) Mark() int {
	c.marks++
	return c.pos
}

// RewindTo implements Cursor. Rewinding behind the buffered window means a
// mark was used after its Release, which is a caller bug.
func (c *ReaderCursor) RewindTo(mark int) {
	if mark < c.base || mark > c.base+len(c.buf) {
		panic(fmt.Sprintf("input: rewind to %d outside buffered window [%d, %d]",
			mark, c.base, c.base+len(c.buf)))
	}
	c.pos = mark
}

// Release implements Cursor.
func (c *ReaderCursor) Release(int) {
	if c.marks > 0 {
		c.marks--
	}
	c.trim()
}

// Position implements Cursor.
func (c *ReaderCursor) Position() int {
	return c.pos
}

// Buffered returns the number of characters currently held in memory.
func (c *ReaderCursor) Buffered() int {
	return len(c.buf)
}

// Err returns the first non-EOF read error, if any. A read error ends the
// stream as far as Peek is concerned.
func (c *ReaderCursor) Err() error {
	return c.err
}
