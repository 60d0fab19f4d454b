// Package asm reads and writes programs in a line-oriented assembly syntax.
//
// Each line holds an optional label definition, an optional instruction and
// an optional comment:
//
//	# identifiers
//	ident:
//	.L0:
//		range 'a', 'z'
//		split .L0, .L1
//	.L1:
//		accept 1
//
// A label whose name does not start with '.' is public: it becomes a rule
// entrypoint of the assembled program. Labels starting with '.' are local
// jump targets.
//
// Mnemonics map one to one onto opcodes: match, match16, range, range16,
// accept, jmp and split. Character operands are Go rune literals ('a',
// '\n', 'λ') or integers (97, 0x61). Operands may be separated by commas or
// spaces.
package asm

import (
	"errors"
	"fmt"
)

// Assembly errors, wrapped in *Error.
var (
	// ErrSyntax indicates a malformed line
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownMnemonic indicates an instruction name outside the table
	ErrUnknownMnemonic = errors.New("unknown mnemonic")

	// ErrOperand indicates a missing, extra or out-of-range operand
	ErrOperand = errors.New("bad operand")

	// ErrUndefinedLabel indicates a reference to a label that is never defined
	ErrUndefinedLabel = errors.New("undefined label")

	// ErrDuplicateLabel indicates a label defined more than once
	ErrDuplicateLabel = errors.New("duplicate label")
)

// Error reports a failure to assemble, with the 1-based source line.
// Line is 0 when the failure is not tied to a single line.
type Error struct {
	Line int
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("asm: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("asm: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
