package literal

import (
	"unicode/utf8"

	"github.com/coregx/lexvm/nfa"
)

// ExtractorConfig bounds literal extraction.
//
//   - MaxLiterals: gives up on rules with too many distinct starts
//   - MaxLiteralLen: cuts literals at this many bytes
//   - MaxClassSize: largest range expanded into one literal per character
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals, and also the number of
	// paths explored at once. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each literal in bytes. Default: 16.
	MaxLiteralLen int

	// MaxClassSize limits the size of ranges to expand. A larger range ends
	// the literal there. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 16,
		MaxClassSize:  10,
	}
}

// Extractor walks program bytecode to find token prefixes.
type Extractor struct {
	config ExtractorConfig
}

// New creates an Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// path is one partially explored way through a rule.
type path struct {
	pc     int
	prefix []byte
}

type visitKey struct {
	pc     int
	prefix string
}

// ExtractPrefixes returns the literals that every token produced from the
// given entry addresses starts with.
//
// Jumps are followed and split alternatives are unioned. A range of at most
// MaxClassSize characters is expanded into one literal per character; a
// larger one ends the literal. A literal is Complete when its path reaches
// an accept, and incomplete when it was cut short.
//
// Expansion stops early, ending literals where they are, once the number of
// literals plus pending paths would exceed MaxLiterals.
//
// Returns nil when no useful set exists: some path can accept, or must stop
// expanding, before consuming anything (its tokens may start with almost any
// character), or some path expands U+FFFD.
//
//nolint:gocyclo,cyclop // one case per opcode
func (e *Extractor) ExtractPrefixes(prog *nfa.Program, starts []int) *Seq {
	var out []Literal
	index := make(map[string]int)
	emit := func(prefix []byte, complete bool) bool {
		if len(prefix) == 0 {
			return false
		}
		if i, ok := index[string(prefix)]; ok {
			out[i].Complete = out[i].Complete || complete
			return true
		}
		index[string(prefix)] = len(out)
		out = append(out, Literal{Bytes: prefix, Complete: complete})
		return len(out) <= e.config.MaxLiterals
	}

	seen := make(map[visitKey]bool)
	stack := make([]path, 0, len(starts))
	for i := len(starts) - 1; i >= 0; i-- {
		if !prog.IsInst(starts[i]) {
			return nil
		}
		stack = append(stack, path{pc: starts[i]})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.pc >= prog.Len() {
			// Fell off the end: this path never produces a token.
			continue
		}
		key := visitKey{p.pc, string(p.prefix)}
		if seen[key] {
			continue
		}
		seen[key] = true

		in := prog.Inst(p.pc)
		switch in.Op {
		case nfa.OpAccept:
			if !emit(p.prefix, true) {
				return nil
			}

		case nfa.OpJump:
			stack = append(stack, path{pc: in.Arg, prefix: p.prefix})

		case nfa.OpSplit:
			for i := len(in.Targets) - 1; i >= 0; i-- {
				stack = append(stack, path{pc: in.Targets[i], prefix: p.prefix})
			}

		case nfa.OpMatch8, nfa.OpMatch16, nfa.OpRange8, nfa.OpRange16:
			n := in.Hi - in.Lo + 1
			if n > e.config.MaxClassSize || len(stack)+len(out)+n > e.config.MaxLiterals {
				// Too many ways to continue: the literal ends here.
				if !emit(p.prefix, false) {
					return nil
				}
				continue
			}
			for c := in.Hi; c >= in.Lo; c-- {
				r := rune(c)
				if !utf8.ValidRune(r) {
					// Surrogates never come out of a UTF-8 decoder.
					continue
				}
				if r == utf8.RuneError {
					// Cursors decode every invalid byte as U+FFFD, so no
					// byte sequence marks where such a token starts.
					return nil
				}
				next := utf8.AppendRune(append(make([]byte, 0, len(p.prefix)+utf8.UTFMax), p.prefix...), r)
				if len(next) >= e.config.MaxLiteralLen {
					if !emit(next[:min(len(next), e.config.MaxLiteralLen)], false) {
						return nil
					}
					continue
				}
				stack = append(stack, path{pc: in.Next(), prefix: next})
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return NewSeq(out...)
}
