package nfa

import (
	"bytes"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Rule is a named entrypoint into a Program.
type Rule struct {
	Name string
	Addr int
}

// Program is a validated instruction stream plus its rule entrypoints.
//
// A Program is immutable after construction and safe for concurrent use by
// any number of interpreters, each driving its own cursor.
type Program struct {
	// code holds the instructions back to back; an address is an offset into it.
	code []byte

	// entries maps rule names to entry addresses.
	entries map[string]int

	// rules lists the entries ordered by address, then name.
	rules []Rule

	// starts marks the addresses at which an instruction begins.
	starts []bool

	// insts is the number of instructions in code.
	insts int
}

// NewProgram validates code and entrypoints and returns a Program that owns
// private copies of both.
//
// Every instruction must decode, every jump and split target and every
// entrypoint must be the address of an instruction, every split must have
// at least one alternative, and every entrypoint name must pass
// ValidRuleName. Failures are reported as *ProgramError.
func NewProgram(code []byte, entrypoints map[string]int) (*Program, error) {
	p := &Program{
		code:    bytes.Clone(code),
		entries: maps.Clone(entrypoints),
	}
	if p.code == nil {
		p.code = []byte{}
	}
	if p.entries == nil {
		p.entries = map[string]int{}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	p.rules = make([]Rule, 0, len(p.entries))
	for name, addr := range p.entries {
		p.rules = append(p.rules, Rule{Name: name, Addr: addr})
	}
	sort.Slice(p.rules, func(i, j int) bool {
		if p.rules[i].Addr != p.rules[j].Addr {
			return p.rules[i].Addr < p.rules[j].Addr
		}
		return p.rules[i].Name < p.rules[j].Name
	})
	return p, nil
}

// ValidRuleName reports whether name can name an entrypoint: ASCII letters,
// digits, '_', '$' and '.', not starting with a digit or '.'. Every such
// name is also a public label in assembler text.
func ValidRuleName(name string) bool {
	if name == "" || name[0] == '.' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || c == '.' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// MustProgram is like NewProgram but panics on invalid input.
// It is intended for programs embedded in generated code.
func MustProgram(code []byte, entrypoints map[string]int) *Program {
	p, err := NewProgram(code, entrypoints)
	if err != nil {
		panic(err)
	}
	return p
}

// validate decodes the whole stream and checks every address operand.
func (p *Program) validate() error {
	starts := make([]bool, len(p.code))
	p.starts = starts
	var insts []Inst
	for addr := 0; addr < len(p.code); {
		in, err := Decode(p.code, addr)
		if err != nil {
			return err
		}
		starts[addr] = true
		insts = append(insts, in)
		addr = in.Next()
	}
	p.insts = len(insts)

	isStart := func(addr int) bool {
		return addr >= 0 && addr < len(starts) && starts[addr]
	}
	for _, in := range insts {
		switch in.Op {
		case OpJump:
			if !isStart(in.Arg) {
				return &ProgramError{Addr: in.Addr, Err: fmt.Errorf("%w: %d", ErrBadTarget, in.Arg)}
			}
		case OpSplit:
			if len(in.Targets) == 0 {
				return &ProgramError{Addr: in.Addr, Err: ErrEmptySplit}
			}
			for _, t := range in.Targets {
				if !isStart(t) {
					return &ProgramError{Addr: in.Addr, Err: fmt.Errorf("%w: %d", ErrBadTarget, t)}
				}
			}
		}
	}

	for name, addr := range p.entries {
		if !ValidRuleName(name) {
			return &ProgramError{Addr: addr, Rule: name, Err: ErrBadRuleName}
		}
		if !isStart(addr) {
			return &ProgramError{Addr: addr, Rule: name, Err: ErrBadEntry}
		}
	}
	return nil
}

// Code returns the instruction stream. The slice is shared and must not be
// modified.
func (p *Program) Code() []byte {
	return p.code
}

// Len returns the size of the instruction stream in bytes.
func (p *Program) Len() int {
	return len(p.code)
}

// Insts returns the number of instructions.
func (p *Program) Insts() int {
	return p.insts
}

// IsInst reports whether an instruction begins at addr.
func (p *Program) IsInst(addr int) bool {
	return addr >= 0 && addr < len(p.starts) && p.starts[addr]
}

// checkStart rejects match requests that do not begin on an instruction.
func (p *Program) checkStart(addr int) error {
	if !p.IsInst(addr) {
		return &ProgramError{Addr: addr, Err: ErrBadEntry}
	}
	return nil
}

// Entry returns the entry address of the named rule.
func (p *Program) Entry(name string) (int, bool) {
	addr, ok := p.entries[name]
	return addr, ok
}

// Rules returns the entrypoints ordered by address, then name.
func (p *Program) Rules() []Rule {
	rules := make([]Rule, len(p.rules))
	copy(rules, p.rules)
	return rules
}

// resolve maps a rule name to its entry address.
func (p *Program) resolve(name string) (int, error) {
	addr, ok := p.entries[name]
	if !ok {
		return 0, &RuleError{Name: name}
	}
	return addr, nil
}

// Inst decodes the instruction at addr.
// Panics with a *ProgramError if addr is not an instruction address, which
// cannot happen for addresses taken from the program itself.
func (p *Program) Inst(addr int) Inst {
	in, err := Decode(p.code, addr)
	if err != nil {
		panic(err)
	}
	return in
}

// Instructions decodes the whole stream in address order.
func (p *Program) Instructions() []Inst {
	insts := make([]Inst, 0, p.insts)
	for addr := 0; addr < len(p.code); {
		in := p.Inst(addr)
		insts = append(insts, in)
		addr = in.Next()
	}
	return insts
}

// corrupt reports an opcode outside the table reached during execution.
// Validation makes this unreachable; it is fatal rather than a match failure.
func corrupt(addr int) {
	panic(&ProgramError{Addr: addr, Err: ErrUnknownOpcode})
}

// String returns a listing of the program, one instruction per line, with
// rule names above their entry addresses.
func (p *Program) String() string {
	var sb strings.Builder
	ri := 0
	for _, in := range p.Instructions() {
		for ri < len(p.rules) && p.rules[ri].Addr == in.Addr {
			fmt.Fprintf(&sb, "%s:\n", p.rules[ri].Name)
			ri++
		}
		fmt.Fprintf(&sb, "%04d  %s\n", in.Addr, in)
	}
	return sb.String()
}
