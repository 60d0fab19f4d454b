package nfa

import (
	"fmt"
	"io"
)

// Tracer observes instruction-level execution. Interpreters call it only
// when one is configured with WithTracer; by default they are silent.
type Tracer interface {
	// Step is called before the instruction at addr executes.
	// For the PikeVM it is called once per live thread per character.
	Step(addr int, in Inst, pos int)

	// Accept is called when a thread reaches an accept instruction.
	Accept(addr int, tokenType int, pos int)

	// Fail is called when a match or range test rejects the current
	// character. For the IterativeBacktracker, pending lists the untried
	// alternatives in the order they will be retried; otherwise it is nil.
	Fail(addr int, pos int, pending []Context)

	// Backtrack is called after the cursor has been restored to the
	// checkpoint of the alternative at addr, before it executes.
	Backtrack(addr int, pos int)
}

// NopTracer ignores every event. Embed it to implement only some methods.
type NopTracer struct{}

func (NopTracer) Step(int, Inst, int)      {}
func (NopTracer) Accept(int, int, int)     {}
func (NopTracer) Fail(int, int, []Context) {}
func (NopTracer) Backtrack(int, int)       {}

// TextTracer writes one line per event.
type TextTracer struct {
	w io.Writer
}

// NewTextTracer creates a tracer writing to w.
func NewTextTracer(w io.Writer) *TextTracer {
	return &TextTracer{w: w}
}

func (t *TextTracer) Step(addr int, in Inst, pos int) {
	fmt.Fprintf(t.w, "[lexvm] %04d  %-24s input@%d\n", addr, in, pos)
}

func (t *TextTracer) Accept(addr int, tokenType int, pos int) {
	fmt.Fprintf(t.w, "[lexvm] %04d  accept token %d ending at %d\n", addr, tokenType, pos)
}

func (t *TextTracer) Fail(addr int, pos int, pending []Context) {
	fmt.Fprintf(t.w, "[lexvm] %04d  fail at %d (%d pending)\n", addr, pos, len(pending))
}

func (t *TextTracer) Backtrack(addr int, pos int) {
	fmt.Fprintf(t.w, "[lexvm] %04d  retry from %d\n", addr, pos)
}

// Option configures an interpreter.
type Option func(*execConfig)

type execConfig struct {
	tracer   Tracer
	maxSteps int
}

func newExecConfig(opts []Option) execConfig {
	var c execConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithTracer routes execution events to t.
func WithTracer(t Tracer) Option {
	return func(c *execConfig) {
		c.tracer = t
	}
}

// WithMaxSteps bounds the number of instructions a single match may
// execute. Exceeding it aborts the match with ErrStepLimit. Zero, the
// default, means no bound.
func WithMaxSteps(n int) Option {
	return func(c *execConfig) {
		if n < 0 {
			n = 0
		}
		c.maxSteps = n
	}
}

// budget counts executed instructions against maxSteps.
type budget struct {
	max  int
	used int
}

// spend charges one instruction and reports whether the budget still holds.
func (b *budget) spend() bool {
	if b.max == 0 {
		return true
	}
	b.used++
	return b.used <= b.max
}
