// Package literal extracts the literal prefixes that every token of a rule
// must begin with.
//
// The primary use case is prefiltering: a lexer that hit an invalid
// character can skip straight to the next offset where some rule could
// start, instead of retrying the interpreters at every position.
//
// Key concepts:
//   - A Literal is a concrete byte sequence (UTF-8 encoded characters)
//   - A Seq is a set of alternative literals, one per distinct token start
package literal

import (
	"bytes"
	"sort"
)

// Literal is a byte sequence that begins some token.
// Complete reports whether the literal is a whole token (the rule accepts
// right after it) rather than just its prefix.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral creates a Literal.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a representation for debugging: literal{bytes, complete=...}
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is a set of alternative literals.
//
// A nil *Seq is valid and empty.
type Seq struct {
	literals []Literal
}

// NewSeq creates a sequence holding lits.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

// Len returns the number of literals.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the i-th literal. Panics if i is out of range.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// Literals returns the literals. The slice is shared with s.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.literals
}

// IsEmpty reports whether the sequence holds no literal.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// AllComplete reports whether every literal is a whole token.
// An empty sequence is not complete.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the sequence.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}
	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{
			Bytes:    bytes.Clone(lit.Bytes),
			Complete: lit.Complete,
		}
	}
	return &Seq{literals: cloned}
}

// Dedup removes repeated byte sequences, keeping the first occurrence. A
// literal that is complete in any occurrence stays complete.
func (s *Seq) Dedup() {
	if s.IsEmpty() {
		return
	}
	index := make(map[string]int, len(s.literals))
	kept := s.literals[:0]
	for _, lit := range s.literals {
		if i, ok := index[string(lit.Bytes)]; ok {
			kept[i].Complete = kept[i].Complete || lit.Complete
			continue
		}
		index[string(lit.Bytes)] = len(kept)
		kept = append(kept, lit)
	}
	s.literals = kept
}

// Minimize removes literals that have a shorter literal of the sequence as a
// prefix: a scan finding the shorter one finds every position the longer
// one would. The survivors are ordered by length, shortest first.
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}

	sort.SliceStable(s.literals, func(i, j int) bool {
		return len(s.literals[i].Bytes) < len(s.literals[j].Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for _, k := range kept {
			if bytes.HasPrefix(current.Bytes, k.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, current)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest prefix shared by every literal.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}
	prefix := s.literals[0].Bytes
	for _, lit := range s.literals[1:] {
		prefix = commonPrefix(prefix, lit.Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}
	return bytes.Clone(prefix)
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
