package nfa

import (
	"github.com/coregx/lexvm/input"
)

// Context is a pending alternative on the IterativeBacktracker work stack:
// the address to resume at and the cursor checkpoint to resume from.
type Context struct {
	PC   int
	Mark int
}

// IterativeBacktracker explores alternatives exactly like Backtracker, in
// the same order and with the same result and final cursor position, but
// keeps pending alternatives on an explicit work stack instead of the
// goroutine stack. Grammar-driven nesting depth is therefore limited only by
// memory.
//
// On a split of N alternatives it pushes alternatives N..2 (so that 2 is on
// top) and continues straight into alternative 1 without taking a
// checkpoint for it. When a thread fails, the top context is popped, the
// cursor rewound to its checkpoint, and execution resumes at its address.
//
// An IterativeBacktracker holds no per-match state and is safe for
// concurrent use.
type IterativeBacktracker struct {
	prog *Program
	cfg  execConfig
}

// NewIterativeBacktracker creates an explicit-stack backtracker for prog.
func NewIterativeBacktracker(prog *Program, opts ...Option) *IterativeBacktracker {
	return &IterativeBacktracker{
		prog: prog,
		cfg:  newExecConfig(opts),
	}
}

// Program returns the program being executed.
func (b *IterativeBacktracker) Program() *Program {
	return b.prog
}

// Match runs the program from start with first-match semantics. Cursor
// handling is the same as Backtracker.Match.
func (b *IterativeBacktracker) Match(in input.Cursor, start int) (Result, error) {
	if err := b.prog.checkStart(start); err != nil {
		return NoMatch, err
	}

	r := iterativeRun{
		code:   b.prog.code,
		prog:   b.prog,
		in:     in,
		tracer: b.cfg.tracer,
		budget: budget{max: b.cfg.maxSteps},
		work:   make([]Context, 0, 16),
	}

	begin := in.Mark()
	pc := start
	for {
		out, v := r.thread(pc)
		switch out {
		case threadAccepted:
			r.releaseAll()
			in.Release(begin)
			return Result(v), nil

		case threadAborted:
			err := &MatchError{Addr: v, Pos: in.Position(), Err: ErrStepLimit}
			r.releaseAll()
			in.RewindTo(begin)
			in.Release(begin)
			return NoMatch, err
		}

		if r.tracer != nil {
			r.tracer.Fail(v, in.Position(), r.pending())
		}
		if len(r.work) == 0 {
			in.RewindTo(begin)
			in.Release(begin)
			return NoMatch, nil
		}

		ctx := r.work[len(r.work)-1]
		r.work = r.work[:len(r.work)-1]
		in.RewindTo(ctx.Mark)
		in.Release(ctx.Mark)
		if r.tracer != nil {
			r.tracer.Backtrack(ctx.PC, in.Position())
		}
		pc = ctx.PC
	}
}

// MatchRule runs the named rule.
func (b *IterativeBacktracker) MatchRule(in input.Cursor, name string) (Result, error) {
	addr, err := b.prog.resolve(name)
	if err != nil {
		return NoMatch, err
	}
	return b.Match(in, addr)
}

type threadOutcome uint8

const (
	threadFailed threadOutcome = iota
	threadAccepted
	threadAborted
)

// iterativeRun is the state of one IterativeBacktracker.Match call.
type iterativeRun struct {
	code   []byte
	prog   *Program
	in     input.Cursor
	tracer Tracer
	budget budget
	work   []Context
}

// thread runs a single thread from pc. It returns the token type on accept,
// or the address where the thread failed or was aborted.
//
//nolint:gocyclo,cyclop // complexity is inherent to opcode dispatch
func (r *iterativeRun) thread(pc int) (threadOutcome, int) {
	code := r.code
	for pc < len(code) {
		if !r.budget.spend() {
			return threadAborted, pc
		}
		c := int(r.in.Peek())
		if r.tracer != nil {
			r.tracer.Step(pc, r.prog.Inst(pc), r.in.Position())
		}

		switch Opcode(code[pc]) {
		case OpMatch8:
			if c != int(code[pc+1]) {
				return threadFailed, pc
			}
			r.in.Advance()
			pc += match8Len

		case OpMatch16:
			if c != u16(code, pc+1) {
				return threadFailed, pc
			}
			r.in.Advance()
			pc += match16Len

		case OpRange8:
			if c < int(code[pc+1]) || c > int(code[pc+2]) {
				return threadFailed, pc
			}
			r.in.Advance()
			pc += range8Len

		case OpRange16:
			if c < u16(code, pc+1) || c > u16(code, pc+3) {
				return threadFailed, pc
			}
			r.in.Advance()
			pc += range16Len

		case OpAccept:
			tokenType := u16(code, pc+1)
			if r.tracer != nil {
				r.tracer.Accept(pc, tokenType, r.in.Position())
			}
			return threadAccepted, tokenType

		case OpJump:
			pc = u16(code, pc+1)

		case OpSplit:
			n := u16(code, pc+1)
			for i := n - 1; i >= 1; i-- {
				r.work = append(r.work, Context{
					PC:   u16(code, pc+splitHeaderLen+2*i),
					Mark: r.in.Mark(),
				})
			}
			pc = u16(code, pc+splitHeaderLen)

		default:
			corrupt(pc)
		}
	}
	return threadFailed, pc
}

// pending returns the untried alternatives in the order they will be retried.
func (r *iterativeRun) pending() []Context {
	out := make([]Context, len(r.work))
	for i, ctx := range r.work {
		out[len(r.work)-1-i] = ctx
	}
	return out
}

// releaseAll drops the checkpoints of alternatives that will never run.
func (r *iterativeRun) releaseAll() {
	for _, ctx := range r.work {
		r.in.Release(ctx.Mark)
	}
	r.work = r.work[:0]
}
