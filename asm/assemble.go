package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/lexvm/nfa"
)

type label struct {
	id      nfa.Label
	public  bool
	defined bool
	defLine int
	defAddr int
	useLine int // first reference, 0 if never referenced
}

type assembler struct {
	b      *nfa.Builder
	labels map[string]*label
	order  []string
	line   int
}

// Assemble parses src and returns the program it describes.
// Errors are reported as *Error.
func Assemble(src string) (*nfa.Program, error) {
	a := &assembler{
		b:      nfa.NewBuilder(),
		labels: make(map[string]*label),
	}

	for i, text := range strings.Split(src, "\n") {
		a.line = i + 1
		if err := a.assembleLine(text); err != nil {
			return nil, &Error{Line: a.line, Err: err}
		}
	}

	end := a.b.Addr()
	for _, name := range a.order {
		l := a.labels[name]
		switch {
		case !l.defined:
			return nil, &Error{Line: l.useLine, Err: fmt.Errorf("%w %q", ErrUndefinedLabel, name)}
		case l.defAddr == end && (l.public || l.useLine > 0):
			return nil, &Error{
				Line: l.defLine,
				Err:  fmt.Errorf("%w: label %q is not followed by an instruction", ErrSyntax, name),
			}
		}
	}

	prog, err := a.b.Build()
	if err != nil {
		return nil, &Error{Err: err}
	}
	return prog, nil
}

// grab returns the label called name, creating it on first mention.
func (a *assembler) grab(name string) *label {
	if l, ok := a.labels[name]; ok {
		return l
	}
	l := &label{
		id:     a.b.NewLabel(),
		public: !strings.HasPrefix(name, "."),
	}
	a.labels[name] = l
	a.order = append(a.order, name)
	return l
}

func (a *assembler) define(name string) error {
	if !validLabel(name) {
		return fmt.Errorf("%w: bad label name %q", ErrSyntax, name)
	}
	l := a.grab(name)
	if l.defined {
		return fmt.Errorf("%w %q (first defined on line %d)", ErrDuplicateLabel, name, l.defLine)
	}
	l.defined = true
	l.defLine = a.line
	l.defAddr = a.b.Addr()
	if l.public {
		a.b.Rule(name)
	}
	a.b.Bind(l.id)
	return nil
}

func (a *assembler) ref(name string) (nfa.Label, error) {
	if !validLabel(name) {
		return 0, fmt.Errorf("%w: bad label name %q", ErrOperand, name)
	}
	l := a.grab(name)
	if l.useLine == 0 {
		l.useLine = a.line
	}
	return l.id, nil
}

func (a *assembler) assembleLine(text string) error {
	toks, err := fields(text)
	if err != nil {
		return err
	}
	for len(toks) > 0 && strings.HasSuffix(toks[0], ":") {
		if err := a.define(strings.TrimSuffix(toks[0], ":")); err != nil {
			return err
		}
		toks = toks[1:]
	}
	if len(toks) == 0 {
		return nil
	}
	if err := a.instruction(toks[0], toks[1:]); err != nil {
		return err
	}
	return a.b.Err()
}

//nolint:gocyclo,cyclop // one case per mnemonic
func (a *assembler) instruction(mnemonic string, ops []string) error {
	arity := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%w: %s takes %d operand(s), got %d", ErrOperand, mnemonic, n, len(ops))
		}
		return nil
	}

	switch mnemonic {
	case "match", "match16":
		if err := arity(1); err != nil {
			return err
		}
		c, err := parseChar(ops[0])
		if err != nil {
			return err
		}
		if mnemonic == "match16" {
			a.b.MatchWide(c)
			return nil
		}
		if err := narrow(c); err != nil {
			return err
		}
		a.b.Match(c)

	case "range", "range16":
		if err := arity(2); err != nil {
			return err
		}
		lo, err := parseChar(ops[0])
		if err != nil {
			return err
		}
		hi, err := parseChar(ops[1])
		if err != nil {
			return err
		}
		if mnemonic == "range16" {
			a.b.RangeWide(lo, hi)
			return nil
		}
		if err := narrow(lo); err != nil {
			return err
		}
		if err := narrow(hi); err != nil {
			return err
		}
		a.b.Range(lo, hi)

	case "accept":
		if err := arity(1); err != nil {
			return err
		}
		n, err := strconv.ParseInt(ops[0], 0, 32)
		if err != nil {
			return fmt.Errorf("%w: token type %q", ErrOperand, ops[0])
		}
		a.b.Accept(int(n))

	case "jmp":
		if err := arity(1); err != nil {
			return err
		}
		l, err := a.ref(ops[0])
		if err != nil {
			return err
		}
		a.b.Jump(l)

	case "split":
		if len(ops) == 0 {
			return fmt.Errorf("%w: split needs at least one target", ErrOperand)
		}
		targets := make([]nfa.Label, len(ops))
		for i, op := range ops {
			l, err := a.ref(op)
			if err != nil {
				return err
			}
			targets[i] = l
		}
		a.b.Branch(targets...)

	default:
		return fmt.Errorf("%w %q", ErrUnknownMnemonic, mnemonic)
	}
	return nil
}

func narrow(c rune) error {
	if c > 0xFF {
		return fmt.Errorf("%w: %s does not fit in 8 bits", ErrOperand, nfa.FormatChar(int(c)))
	}
	return nil
}

// parseChar accepts a rune literal or an integer in Go syntax.
func parseChar(tok string) (rune, error) {
	if strings.HasPrefix(tok, "'") {
		s, err := strconv.Unquote(tok)
		if err != nil || utf8.RuneCountInString(s) != 1 {
			return 0, fmt.Errorf("%w: character literal %s", ErrOperand, tok)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}
	n, err := strconv.ParseInt(tok, 0, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: character %q", ErrOperand, tok)
	}
	return rune(n), nil
}

// validLabel accepts rule names, and local labels spelled as a rule name
// with a leading '.'.
func validLabel(name string) bool {
	return nfa.ValidRuleName(strings.TrimPrefix(name, "."))
}

// fields splits a line into tokens. Spaces, tabs and commas separate
// tokens; a rune literal is one token even if it holds a separator; '#'
// outside a rune literal starts a comment.
func fields(line string) ([]string, error) {
	var out []string
	for i := 0; i < len(line); {
		switch c := line[i]; {
		case c == '#':
			return out, nil
		case c == ' ' || c == '\t' || c == ',' || c == '\r':
			i++
		case c == '\'':
			j := i + 1
			for j < len(line) && line[j] != '\'' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				return nil, fmt.Errorf("%w: unterminated character literal", ErrSyntax)
			}
			out = append(out, line[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(line) && !strings.ContainsRune(" \t,#'\r", rune(line[j])) {
				j++
			}
			out = append(out, line[i:j])
			i = j
		}
	}
	return out, nil
}
