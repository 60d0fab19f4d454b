package nfa

import "strconv"

// Result is the outcome of a match: a token type (>= 0) or a sentinel.
type Result int

const (
	// EndOfInput means the input was already exhausted when matching began.
	EndOfInput Result = -1

	// NoMatch means no rule accepted the input at the current position.
	NoMatch Result = -2
)

// IsToken reports whether r carries a token type.
func (r Result) IsToken() bool {
	return r >= 0
}

// String returns a human-readable representation of the result
func (r Result) String() string {
	switch r {
	case EndOfInput:
		return "EndOfInput"
	case NoMatch:
		return "NoMatch"
	default:
		return "Token(" + strconv.Itoa(int(r)) + ")"
	}
}
