package nfa

import (
	"github.com/coregx/lexvm/input"
)

// Backtracker is the recursive backtracking interpreter.
//
// It explores alternatives depth first and returns the token type of the
// first accept it reaches (first-match, PEG-style semantics), not the
// longest. Split alternatives 1..N-1 are each tried from a checkpoint with a
// recursive call; alternative N is entered by falling through, so a chain of
// splits whose early alternatives fail quickly does not grow the stack.
// Nesting depth is still bounded by the goroutine stack; IterativeBacktracker
// is the production form and this type serves as its reference.
//
// A Backtracker holds no per-match state and is safe for concurrent use.
type Backtracker struct {
	prog *Program
	cfg  execConfig
}

// NewBacktracker creates a recursive backtracker for prog.
func NewBacktracker(prog *Program, opts ...Option) *Backtracker {
	return &Backtracker{
		prog: prog,
		cfg:  newExecConfig(opts),
	}
}

// Program returns the program being executed.
func (b *Backtracker) Program() *Program {
	return b.prog
}

// Match runs the program from start. On a token the cursor is left after
// the last consumed character; on NoMatch or error it is restored to where
// the match began.
func (b *Backtracker) Match(in input.Cursor, start int) (Result, error) {
	if err := b.prog.checkStart(start); err != nil {
		return NoMatch, err
	}

	r := recursiveRun{
		code:   b.prog.code,
		prog:   b.prog,
		in:     in,
		tracer: b.cfg.tracer,
		budget: budget{max: b.cfg.maxSteps},
	}

	begin := in.Mark()
	res := r.exec(start)
	if res == NoMatch {
		in.RewindTo(begin)
	}
	in.Release(begin)
	if r.err != nil {
		return NoMatch, r.err
	}
	return res, nil
}

// MatchRule runs the named rule.
func (b *Backtracker) MatchRule(in input.Cursor, name string) (Result, error) {
	addr, err := b.prog.resolve(name)
	if err != nil {
		return NoMatch, err
	}
	return b.Match(in, addr)
}

// recursiveRun is the state of one Backtracker.Match call.
type recursiveRun struct {
	code   []byte
	prog   *Program
	in     input.Cursor
	tracer Tracer
	budget budget
	err    error
}

// exec runs from pc until an accept (returning its token type), a failed
// test or falling off the end of the code (returning NoMatch).
//
//nolint:gocyclo,cyclop // complexity is inherent to opcode dispatch
func (r *recursiveRun) exec(pc int) Result {
	code := r.code
	for pc < len(code) {
		if !r.budget.spend() {
			r.err = &MatchError{Addr: pc, Pos: r.in.Position(), Err: ErrStepLimit}
			return NoMatch
		}
		c := int(r.in.Peek())
		if r.tracer != nil {
			r.tracer.Step(pc, r.prog.Inst(pc), r.in.Position())
		}

		switch Opcode(code[pc]) {
		case OpMatch8:
			if c != int(code[pc+1]) {
				return r.fail(pc)
			}
			r.in.Advance()
			pc += match8Len

		case OpMatch16:
			if c != u16(code, pc+1) {
				return r.fail(pc)
			}
			r.in.Advance()
			pc += match16Len

		case OpRange8:
			if c < int(code[pc+1]) || c > int(code[pc+2]) {
				return r.fail(pc)
			}
			r.in.Advance()
			pc += range8Len

		case OpRange16:
			if c < u16(code, pc+1) || c > u16(code, pc+3) {
				return r.fail(pc)
			}
			r.in.Advance()
			pc += range16Len

		case OpAccept:
			tokenType := u16(code, pc+1)
			if r.tracer != nil {
				r.tracer.Accept(pc, tokenType, r.in.Position())
			}
			return Result(tokenType)

		case OpJump:
			pc = u16(code, pc+1)

		case OpSplit:
			n := u16(code, pc+1)
			for i := 0; i < n-1; i++ {
				alt := u16(code, pc+splitHeaderLen+2*i)
				m := r.in.Mark()
				res := r.exec(alt)
				if res.IsToken() || r.err != nil {
					r.in.Release(m)
					return res
				}
				r.in.RewindTo(m)
				r.in.Release(m)
				if r.tracer != nil {
					r.tracer.Backtrack(u16(code, pc+splitHeaderLen+2*(i+1)), r.in.Position())
				}
			}
			// Last alternative: no checkpoint, no recursion.
			pc = u16(code, pc+splitHeaderLen+2*(n-1))

		default:
			corrupt(pc)
		}
	}
	return r.fail(pc)
}

func (r *recursiveRun) fail(pc int) Result {
	if r.tracer != nil {
		r.tracer.Fail(pc, r.in.Position(), nil)
	}
	return NoMatch
}
