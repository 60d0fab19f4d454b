package input

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// cursors returns fresh cursors of every kind over the same text.
func cursors(text string) map[string]Cursor {
	return map[string]Cursor{
		"runes":  NewString(text),
		"reader": NewReader(strings.NewReader(text)),
	}
}

func TestCursor_PeekAdvance(t *testing.T) {
	for name, c := range cursors("aβc") {
		t.Run(name, func(t *testing.T) {
			want := []rune{'a', 'β', 'c', EOF, EOF}
			for i, w := range want {
				if got := c.Peek(); got != w {
					t.Fatalf("step %d: Peek() = %q, want %q", i, got, w)
				}
				c.Advance()
			}
			if c.Position() != 3 {
				t.Errorf("Position() = %d, want 3 (Advance at EOF is a no-op)", c.Position())
			}
		})
	}
}

func TestCursor_NestedMarks(t *testing.T) {
	for name, c := range cursors("abcdef") {
		t.Run(name, func(t *testing.T) {
			c.Advance()
			outer := c.Mark()
			c.Advance()
			c.Advance()
			inner := c.Mark()
			c.Advance()

			c.RewindTo(inner)
			if c.Position() != 3 || c.Peek() != 'd' {
				t.Errorf("after inner rewind: pos=%d peek=%q", c.Position(), c.Peek())
			}
			c.Release(inner)

			c.RewindTo(outer)
			if c.Position() != 1 || c.Peek() != 'b' {
				t.Errorf("after outer rewind: pos=%d peek=%q", c.Position(), c.Peek())
			}
			c.Release(outer)
		})
	}
}

func TestCursor_ReleaseOutOfOrder(t *testing.T) {
	for name, c := range cursors("xyz") {
		t.Run(name, func(t *testing.T) {
			m1 := c.Mark()
			c.Advance()
			m2 := c.Mark()
			c.Advance()
			c.Release(m1)
			c.RewindTo(m2)
			if c.Peek() != 'y' {
				t.Errorf("Peek() = %q, want 'y'", c.Peek())
			}
			c.Release(m2)
		})
	}
}

func TestRuneCursor_Offsets(t *testing.T) {
	c := NewString("aβc")
	wantOffs := []int{0, 1, 3, 4}
	for i, w := range wantOffs {
		if got := c.Offset(); got != w {
			t.Errorf("pos %d: Offset() = %d, want %d", i, got, w)
		}
		c.Advance()
	}

	c = NewString("aβc")
	c.SkipTo(2)
	if c.Position() != 2 || c.Offset() != 3 {
		t.Errorf("SkipTo(2): pos=%d off=%d, want pos=2 off=3", c.Position(), c.Offset())
	}
}

func TestRuneCursor_MarkAccounting(t *testing.T) {
	c := NewString("ab")
	m := c.Mark()
	c.Mark()
	if c.Marks() != 2 {
		t.Errorf("Marks() = %d, want 2", c.Marks())
	}
	c.Release(m)
	c.Release(m)
	c.Release(m)
	if c.Marks() != 0 {
		t.Errorf("Marks() = %d, want 0 (never negative)", c.Marks())
	}
}

func TestRuneCursor_InvalidUTF8(t *testing.T) {
	c := NewBytes([]byte{'a', 0xff, 'b'})
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	c.Advance()
	if c.Peek() != '�' {
		t.Errorf("Peek() = %q, want RuneError", c.Peek())
	}
}

func TestRuneCursor_RewindOutOfRange(t *testing.T) {
	c := NewString("ab")
	defer func() {
		if recover() == nil {
			t.Error("RewindTo(5) did not panic")
		}
	}()
	c.RewindTo(5)
}

func TestReaderCursor_TrimsWithoutMarks(t *testing.T) {
	c := NewReader(strings.NewReader("abcdefgh"))
	for i := 0; i < 5; i++ {
		c.Advance()
	}
	if c.Buffered() > 1 {
		t.Errorf("Buffered() = %d, want at most 1 with no marks", c.Buffered())
	}

	m := c.Mark()
	c.Advance()
	c.Advance()
	if c.Buffered() < 2 {
		t.Errorf("Buffered() = %d, want marked window kept", c.Buffered())
	}
	c.RewindTo(m)
	c.Release(m)
	if c.Peek() != 'f' {
		t.Errorf("Peek() = %q, want 'f'", c.Peek())
	}
}

func TestReaderCursor_RewindBehindWindow(t *testing.T) {
	c := NewReader(strings.NewReader("abc"))
	m := c.Mark()
	c.Advance()
	c.Release(m)
	c.Advance()

	defer func() {
		if recover() == nil {
			t.Error("rewinding to a released mark should panic")
		}
	}()
	c.RewindTo(m)
}

func TestReaderCursor_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("a"), iotest.ErrReader(boom))
	c := NewReader(bufioRuneReader(r))

	c.Advance()
	if c.Peek() != EOF {
		t.Errorf("Peek() after error = %q, want EOF", c.Peek())
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v, want %v", c.Err(), boom)
	}
}
