// Package lexvm runs compiled lexer programs.
//
// A lexer program is a flat bytecode stream of character tests, jumps,
// splits and accepts, plus a table of named rule entrypoints. lexvm loads
// such a program, validates it once, and tokenizes input with one of three
// interpreters:
//   - Thompson simulation: every rule runs at once, longest token wins
//   - Iterative backtracking: rules are tried in order, first token wins
//   - Recursive backtracking: same answers as the iterative form
//
// Basic usage:
//
//	lx, err := lexvm.Assemble(`
//	ident:
//	.L0:
//		range 'a', 'z'
//		split .L0, .done
//	.done:
//		accept 1
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := lx.TokenizeString("hello")
//
// Programs produced by a grammar compiler are loaded from their bytes:
//
//	lx, err := lexvm.Load(code, map[string]int{"ident": 0})
//
// Advanced usage:
//
//	config := lexvm.DefaultConfig()
//	config.Strategy = lexvm.UseBacktrack
//	config.Recover = true
//	lx, err := lexvm.LoadWithConfig(code, entries, config)
package lexvm

import (
	"github.com/coregx/lexvm/asm"
	"github.com/coregx/lexvm/input"
	"github.com/coregx/lexvm/literal"
	"github.com/coregx/lexvm/meta"
	"github.com/coregx/lexvm/nfa"
	"github.com/coregx/lexvm/prefilter"
)

// Config controls strategy selection, recovery and prefiltering.
type Config = meta.Config

// Strategy selects the interpreter.
type Strategy = meta.Strategy

// Token is one classified run of input.
type Token = meta.Token

// Interpreter strategies.
const (
	UseThompson  = meta.UseThompson
	UseBacktrack = meta.UseBacktrack
	UseRecursive = meta.UseRecursive
)

// InvalidToken is the type of tokens covering unmatched input when
// Config.Recover is set.
const InvalidToken = meta.InvalidToken

// Lexer is a loaded program bound to a configuration.
//
// A Lexer is safe to use concurrently from multiple goroutines, except for
// ResetStats.
type Lexer struct {
	engine *meta.Engine
}

// DefaultConfig returns the default configuration.
//
// Users can customize this and pass it to LoadWithConfig.
func DefaultConfig() Config {
	return meta.DefaultConfig()
}

// Load validates a program and returns a Lexer running every rule with the
// default configuration.
//
// Returns a *nfa.ProgramError if code is malformed or an entrypoint does not
// point at an instruction.
func Load(code []byte, entrypoints map[string]int) (*Lexer, error) {
	return LoadWithConfig(code, entrypoints, DefaultConfig())
}

// LoadWithConfig is Load with a custom configuration.
func LoadWithConfig(code []byte, entrypoints map[string]int, config Config) (*Lexer, error) {
	prog, err := nfa.NewProgram(code, entrypoints)
	if err != nil {
		return nil, err
	}
	return New(prog, config)
}

// MustLoad is Load that panics on error.
//
// This is useful for programs embedded at build time.
func MustLoad(code []byte, entrypoints map[string]int) *Lexer {
	lx, err := Load(code, entrypoints)
	if err != nil {
		panic("lexvm: Load: " + err.Error())
	}
	return lx
}

// Assemble builds a Lexer from assembly text with the default
// configuration. See package asm for the syntax.
func Assemble(src string) (*Lexer, error) {
	return AssembleWithConfig(src, DefaultConfig())
}

// AssembleWithConfig is Assemble with a custom configuration.
func AssembleWithConfig(src string, config Config) (*Lexer, error) {
	prog, err := asm.Assemble(src)
	if err != nil {
		return nil, err
	}
	return New(prog, config)
}

// New binds an already validated program to a configuration. Options are
// passed to the interpreter, for instance nfa.WithTracer.
func New(prog *nfa.Program, config Config, opts ...nfa.Option) (*Lexer, error) {
	engine, err := meta.NewEngine(prog, config, opts...)
	if err != nil {
		return nil, err
	}
	return &Lexer{engine: engine}, nil
}

// Match reads one token from in.
//
// It returns the token type with in positioned after the token, NoMatch with
// in unchanged, or EndOfInput when in is exhausted.
func (l *Lexer) Match(in input.Cursor) (nfa.Result, error) {
	return l.engine.Match(in)
}

// MatchRule reads one token from in using only the named rule.
func (l *Lexer) MatchRule(in input.Cursor, name string) (nfa.Result, error) {
	return l.engine.MatchRule(in, name)
}

// MatchString reports the type of the token at the start of s and its
// length in bytes. ok is false when no rule matches.
func (l *Lexer) MatchString(s string) (tokenType, length int, ok bool) {
	cur := input.NewString(s)
	res, err := l.engine.Match(cur)
	if err != nil || !res.IsToken() {
		return 0, 0, false
	}
	return int(res), cur.Offset(), true
}

// Tokenize splits data into tokens. See meta.Engine.Tokenize for error and
// recovery behavior.
func (l *Lexer) Tokenize(data []byte) ([]Token, error) {
	return l.engine.Tokenize(data)
}

// TokenizeString is Tokenize for a string.
func (l *Lexer) TokenizeString(s string) ([]Token, error) {
	return l.engine.TokenizeString(s)
}

// Program returns the underlying program.
func (l *Lexer) Program() *nfa.Program {
	return l.engine.Program()
}

// Rules returns the rules the lexer runs, in address order.
func (l *Lexer) Rules() []nfa.Rule {
	return l.engine.Rules()
}

// Strategy returns the interpreter strategy.
func (l *Lexer) Strategy() Strategy {
	return l.engine.Strategy()
}

// Stats returns execution statistics.
func (l *Lexer) Stats() meta.Stats {
	return l.engine.Stats()
}

// Prefixes returns the literal prefixes the rules start with, or nil.
func (l *Lexer) Prefixes() *literal.Seq {
	return l.engine.Prefixes()
}

// Prefilter returns the prefilter used to resume after unmatched input, or
// nil.
func (l *Lexer) Prefilter() prefilter.Prefilter {
	return l.engine.Prefilter()
}

// ResetStats resets execution statistics to zero.
func (l *Lexer) ResetStats() {
	l.engine.ResetStats()
}

// String returns the program in assembly syntax.
func (l *Lexer) String() string {
	return asm.Disassemble(l.engine.Program())
}
