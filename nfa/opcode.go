package nfa

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Opcode identifies an instruction. The numeric values are part of the
// persisted encoding and must never change.
type Opcode uint8

const (
	// OpMatch8 consumes the current character if it equals a 1-byte literal
	OpMatch8 Opcode = iota + 1

	// OpMatch16 consumes the current character if it equals a 2-byte literal
	OpMatch16

	// OpRange8 consumes the current character if lo <= c <= hi (1-byte bounds)
	OpRange8

	// OpRange16 consumes the current character if lo <= c <= hi (2-byte bounds)
	OpRange16

	// OpAccept ends the thread successfully with a 2-byte token type
	OpAccept

	// OpJump transfers control to a 2-byte address without consuming input
	OpJump

	// OpSplit forks control to N 2-byte addresses, tried in listed order
	OpSplit
)

// String returns the assembler mnemonic for the opcode
func (o Opcode) String() string {
	switch o {
	case OpMatch8:
		return "match"
	case OpMatch16:
		return "match16"
	case OpRange8:
		return "range"
	case OpRange16:
		return "range16"
	case OpAccept:
		return "accept"
	case OpJump:
		return "jmp"
	case OpSplit:
		return "split"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(o))
	}
}

// Valid reports whether o is in the opcode table.
func (o Opcode) Valid() bool {
	return o >= OpMatch8 && o <= OpSplit
}

// Consumes reports whether o reads a character from the input.
func (o Opcode) Consumes() bool {
	return o >= OpMatch8 && o <= OpRange16
}

// Fixed encoded lengths, opcode byte included. A split is splitHeaderLen
// plus two bytes per target.
const (
	match8Len      = 2
	match16Len     = 3
	range8Len      = 3
	range16Len     = 5
	acceptLen      = 3
	jumpLen        = 3
	splitHeaderLen = 3
)

// u16 reads a big-endian 16-bit operand.
func u16(code []byte, i int) int {
	return int(code[i])<<8 | int(code[i+1])
}

// Inst is a decoded instruction.
//
// For match instructions Lo and Hi both hold the literal; for range
// instructions they hold the inclusive bounds. Arg holds the token type of an
// accept or the target of a jump. Targets holds the alternatives of a split.
type Inst struct {
	Addr    int
	Op      Opcode
	Lo, Hi  int
	Arg     int
	Targets []int
	Len     int
}

// Decode decodes the instruction at addr.
// It returns ErrUnknownOpcode or ErrTruncated wrapped in a *ProgramError
// when the bytes at addr do not form an instruction.
func Decode(code []byte, addr int) (Inst, error) {
	if addr < 0 || addr >= len(code) {
		return Inst{}, &ProgramError{Addr: addr, Err: ErrTruncated}
	}
	in := Inst{Addr: addr, Op: Opcode(code[addr])}

	need := func(n int) error {
		if addr+n > len(code) {
			return &ProgramError{Addr: addr, Err: ErrTruncated}
		}
		in.Len = n
		return nil
	}

	switch in.Op {
	case OpMatch8:
		if err := need(match8Len); err != nil {
			return Inst{}, err
		}
		in.Lo = int(code[addr+1])
		in.Hi = in.Lo
	case OpMatch16:
		if err := need(match16Len); err != nil {
			return Inst{}, err
		}
		in.Lo = u16(code, addr+1)
		in.Hi = in.Lo
	case OpRange8:
		if err := need(range8Len); err != nil {
			return Inst{}, err
		}
		in.Lo = int(code[addr+1])
		in.Hi = int(code[addr+2])
	case OpRange16:
		if err := need(range16Len); err != nil {
			return Inst{}, err
		}
		in.Lo = u16(code, addr+1)
		in.Hi = u16(code, addr+3)
	case OpAccept, OpJump:
		if err := need(acceptLen); err != nil {
			return Inst{}, err
		}
		in.Arg = u16(code, addr+1)
	case OpSplit:
		if err := need(splitHeaderLen); err != nil {
			return Inst{}, err
		}
		n := u16(code, addr+1)
		if err := need(splitHeaderLen + 2*n); err != nil {
			return Inst{}, err
		}
		in.Targets = make([]int, n)
		for i := range in.Targets {
			in.Targets[i] = u16(code, addr+splitHeaderLen+2*i)
		}
	default:
		return Inst{}, &ProgramError{Addr: addr, Err: ErrUnknownOpcode}
	}
	return in, nil
}

// Next returns the address of the instruction that follows in.
func (in Inst) Next() int {
	return in.Addr + in.Len
}

// Matches reports whether a consuming instruction accepts c.
// Both range bounds are inclusive. Non-consuming instructions match nothing.
func (in Inst) Matches(c rune) bool {
	if !in.Op.Consumes() {
		return false
	}
	return int(c) >= in.Lo && int(c) <= in.Hi
}

// String renders the instruction in assembler syntax, with numeric targets.
func (in Inst) String() string {
	switch in.Op {
	case OpMatch8, OpMatch16:
		return in.Op.String() + " " + FormatChar(in.Lo)
	case OpRange8, OpRange16:
		return in.Op.String() + " " + FormatChar(in.Lo) + ", " + FormatChar(in.Hi)
	case OpAccept, OpJump:
		return in.Op.String() + " " + strconv.Itoa(in.Arg)
	case OpSplit:
		parts := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			parts[i] = strconv.Itoa(t)
		}
		return in.Op.String() + " " + strings.Join(parts, ", ")
	default:
		return in.Op.String()
	}
}

// FormatChar renders a character operand: a quoted rune when printable,
// hexadecimal otherwise.
func FormatChar(c int) string {
	if c <= unicode.MaxRune && unicode.IsPrint(rune(c)) {
		return strconv.QuoteRune(rune(c))
	}
	return fmt.Sprintf("0x%02x", c)
}
