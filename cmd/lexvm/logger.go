package main

import (
	"fmt"
	"io"

	"github.com/coregx/lexvm/nfa"
)

// Logger writes -v progress to stderr. A disabled Logger drops everything;
// callers use Enabled only to skip work that exists just for the log.
type Logger struct {
	w io.Writer // nil when disabled
}

// NewLogger returns a logger writing to w, or a disabled one.
func NewLogger(w io.Writer, enabled bool) *Logger {
	if !enabled {
		return &Logger{}
	}
	return &Logger{w: w}
}

// Enabled reports whether messages are written.
func (l *Logger) Enabled() bool {
	return l.w != nil
}

// Log prints one formatted line.
func (l *Logger) Log(format string, args ...any) {
	if l.w != nil {
		fmt.Fprintf(l.w, "[lexvm] "+format+"\n", args...)
	}
}

// Section prints a section header.
func (l *Logger) Section(name string) {
	if l.w != nil {
		fmt.Fprintf(l.w, "\n[lexvm] === %s ===\n", name)
	}
}

// traceCounter tallies interpreter events for the -v summary and passes
// them on to the wrapped tracer.
type traceCounter struct {
	nfa.Tracer
	steps, accepts, fails, backtracks int
}

func (c *traceCounter) Step(addr int, in nfa.Inst, pos int) {
	c.steps++
	c.Tracer.Step(addr, in, pos)
}

func (c *traceCounter) Accept(addr, tokenType, pos int) {
	c.accepts++
	c.Tracer.Accept(addr, tokenType, pos)
}

func (c *traceCounter) Fail(addr, pos int, pending []nfa.Context) {
	c.fails++
	c.Tracer.Fail(addr, pos, pending)
}

func (c *traceCounter) Backtrack(addr, pos int) {
	c.backtracks++
	c.Tracer.Backtrack(addr, pos)
}

// summarize logs the tallies; c may be nil.
func (c *traceCounter) summarize(log *Logger) {
	if c == nil {
		return
	}
	log.Log("Trace: %d steps, %d accepts, %d fails, %d backtracks",
		c.steps, c.accepts, c.fails, c.backtracks)
}
