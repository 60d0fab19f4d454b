// Package input defines the character cursor the matching engines drive and
// provides two implementations of it.
//
// A Cursor is a forward-only view over a character stream that can take
// checkpoints (marks) and later rewind to them. Backtracking interpreters nest
// marks arbitrarily deep: every pending alternative holds one. A cursor must
// therefore accept any number of outstanding marks, released in any order.
package input

// EOF is returned by Cursor.Peek when the stream is exhausted.
const EOF rune = -1

// Cursor is the contract between the matching engines and the character
// source.
type Cursor interface {
	// Peek returns the current character without consuming it, or EOF.
	Peek() rune

	// Advance consumes the current character. At EOF it does nothing.
	Advance()

	// Mark returns a checkpoint for the current position. The checkpoint
	// stays valid until it is passed to Release.
	Mark() int

	// RewindTo restores the position recorded by mark.
	RewindTo(mark int)

	// Release reports that mark is no longer needed.
	Release(mark int)

	// Position returns the number of characters consumed so far.
	Position() int
}
