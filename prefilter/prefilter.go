// Package prefilter finds candidate token starts using literal prefixes.
//
// A lexer that cannot match at some offset uses a prefilter to skip ahead
// to the next offset where one of its rules could start, instead of
// retrying the interpreters at every character.
//
// The builder selects a strategy from the extracted literals:
//   - Every literal one byte long → byte table lookup
//   - A single literal → substring search
//   - No literal inside another → Aho-Corasick automaton
//   - Otherwise → byte table of first bytes
//
// Example usage:
//
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(prog, starts)
//	pf := prefilter.NewBuilder(prefixes).Build()
//	if pf != nil {
//	    pos := pf.Find(haystack, 0)
//	}
package prefilter

import (
	"bytes"

	"github.com/coregx/lexvm/literal"
)

// Prefilter reports candidate positions: offsets where some literal prefix
// occurs. Every real token start is a candidate, but not every candidate
// starts a token.
type Prefilter interface {
	// Find returns the first candidate at or after start, or -1.
	Find(haystack []byte, start int) int

	// IsComplete reports whether every literal is a whole token, so a
	// candidate is always a match of at least the literal's length.
	IsComplete() bool

	// HeapBytes returns the heap memory held by the prefilter.
	HeapBytes() int
}

// Builder constructs a prefilter from extracted prefixes.
type Builder struct {
	prefixes *literal.Seq
}

// NewBuilder creates a builder for prefixes, which may be nil.
func NewBuilder(prefixes *literal.Seq) *Builder {
	return &Builder{prefixes: prefixes}
}

// Build returns the prefilter for the prefixes, or nil when there are none
// or one of them is empty (an empty prefix makes every offset a candidate).
func (b *Builder) Build() Prefilter {
	if b.prefixes.IsEmpty() {
		return nil
	}
	for _, lit := range b.prefixes.Literals() {
		if lit.Len() == 0 {
			return nil
		}
	}

	complete := b.prefixes.AllComplete()
	seq := b.prefixes.Clone()
	seq.Minimize()

	if allSingleByte(seq) {
		return newByteSetPrefilter(seq, complete)
	}
	if seq.Len() == 1 {
		return newMemmemPrefilter(seq.Get(0).Bytes, complete)
	}
	if !hasInnerOverlap(seq) {
		if pf := newAhoCorasickPrefilter(seq, complete); pf != nil {
			return pf
		}
	}
	// First bytes are still a sound (if weaker) filter.
	return newByteSetPrefilter(firstBytes(seq), false)
}

// hasInnerOverlap reports whether some literal occurs inside another at a
// non-zero offset. The automaton reports the match that ends first, which
// is the one that starts first only when no such pair exists.
func hasInnerOverlap(seq *literal.Seq) bool {
	lits := seq.Literals()
	for i, outer := range lits {
		if outer.Len() < 2 {
			continue
		}
		for j, inner := range lits {
			if i != j && bytes.Contains(outer.Bytes[1:], inner.Bytes) {
				return true
			}
		}
	}
	return false
}

func allSingleByte(seq *literal.Seq) bool {
	for _, lit := range seq.Literals() {
		if lit.Len() != 1 {
			return false
		}
	}
	return true
}

// firstBytes reduces every literal to its first byte.
func firstBytes(seq *literal.Seq) *literal.Seq {
	lits := make([]literal.Literal, 0, seq.Len())
	for _, lit := range seq.Literals() {
		lits = append(lits, literal.NewLiteral(lit.Bytes[:1], false))
	}
	out := literal.NewSeq(lits...)
	out.Dedup()
	return out
}

// memmemPrefilter searches for a single literal.
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

func newMemmemPrefilter(needle []byte, complete bool) Prefilter {
	return &memmemPrefilter{
		needle:   bytes.Clone(needle),
		complete: complete,
	}
}

// Find implements Prefilter.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := bytes.Index(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.
func (p *memmemPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter.
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

func (p *memmemPrefilter) String() string {
	return "memmem(" + string(p.needle) + ")"
}
