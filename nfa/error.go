// Package nfa implements a bytecode virtual machine for lexical rules.
//
// A Program is a compact instruction stream produced by a lexer generator,
// plus a table mapping rule names to entry addresses. Three interpreters
// execute it against an input.Cursor:
//
//   - Backtracker: recursive, first-match (PEG-style). Reference oracle.
//   - IterativeBacktracker: the same exploration on an explicit work stack,
//     free of goroutine stack depth limits.
//   - PikeVM: Thompson simulation of all threads in lockstep, yielding the
//     longest match, ties broken by the earliest-declared rule.
//
// The backtrackers and the PikeVM implement different disambiguation
// policies and are not interchangeable.
package nfa

import (
	"errors"
	"fmt"
)

// Program corruption errors. These indicate a broken toolchain, never a bad
// input.
var (
	// ErrUnknownOpcode indicates a byte outside the opcode table
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrTruncated indicates an instruction whose operands run past the end of the code
	ErrTruncated = errors.New("truncated instruction")

	// ErrBadTarget indicates a jump or split target that is not an instruction address
	ErrBadTarget = errors.New("target is not an instruction address")

	// ErrEmptySplit indicates a split with no alternatives
	ErrEmptySplit = errors.New("split has no alternatives")

	// ErrBadEntry indicates an entrypoint that is not an instruction address
	ErrBadEntry = errors.New("entrypoint is not an instruction address")

	// ErrBadRuleName indicates an entrypoint name that ValidRuleName rejects
	ErrBadRuleName = errors.New("invalid rule name")
)

// Errors reported by match calls.
var (
	// ErrUnknownRule indicates a rule name missing from the entrypoint table
	ErrUnknownRule = errors.New("unknown rule")

	// ErrStepLimit indicates the configured instruction budget was exhausted
	ErrStepLimit = errors.New("step limit exceeded")
)

// ProgramError reports a malformed instruction stream.
type ProgramError struct {
	Addr int    // address of the offending instruction, or -1
	Rule string // entrypoint name, for ErrBadEntry and ErrBadRuleName
	Err  error
}

// Error implements the error interface
func (e *ProgramError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("nfa: invalid program: rule %q @%d: %v", e.Rule, e.Addr, e.Err)
	}
	return fmt.Sprintf("nfa: invalid program @%d: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error
func (e *ProgramError) Unwrap() error {
	return e.Err
}

// RuleError reports a match request for a rule the program does not define.
type RuleError struct {
	Name string
}

// Error implements the error interface
func (e *RuleError) Error() string {
	return fmt.Sprintf("nfa: %v %q", ErrUnknownRule, e.Name)
}

// Unwrap returns ErrUnknownRule
func (e *RuleError) Unwrap() error {
	return ErrUnknownRule
}

// MatchError reports a match that was abandoned before reaching a verdict.
type MatchError struct {
	Addr int // address about to execute
	Pos  int // cursor position
	Err  error
}

// Error implements the error interface
func (e *MatchError) Error() string {
	return fmt.Sprintf("nfa: match abandoned @%d (input %d): %v", e.Addr, e.Pos, e.Err)
}

// Unwrap returns the underlying error
func (e *MatchError) Unwrap() error {
	return e.Err
}

// BuildError represents an error during program construction via the Builder API
type BuildError struct {
	Message string
	Addr    int
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Addr >= 0 {
		return fmt.Sprintf("nfa: build error @%d: %s", e.Addr, e.Message)
	}
	return fmt.Sprintf("nfa: build error: %s", e.Message)
}
