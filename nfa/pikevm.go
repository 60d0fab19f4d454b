package nfa

import (
	"github.com/coregx/lexvm/input"
)

// PikeVM is the Thompson-style parallel-state simulator.
//
// It advances every live thread in lockstep, one character at a time, and
// never stops at the first accept: it keeps going while any thread can still
// consume input and remembers the best accept seen so far. The best accept
// is the one ending furthest into the input (longest match, regardless of
// rule); among accepts ending at the same position, the one at the lowest
// address (the earliest-declared rule) wins. This is the only interpreter
// that implements longest-match tokenization.
//
// "Parallel" describes the simulated sweep over threads; execution is
// synchronous and single-goroutine.
//
// Thread safety: PikeVM configuration is immutable after creation. Match
// allocates fresh scratch state per call; MatchWithState lets callers reuse
// a PikeVMState (for example from a sync.Pool). Each goroutine must use its
// own PikeVMState.
type PikeVM struct {
	prog *Program
	cfg  execConfig
}

// PikeVMState holds mutable per-match scratch state for PikeVM.
type PikeVMState struct {
	// closure holds the live threads for the current character
	closure *Closure

	// reach collects the threads that survive the current character
	reach *Closure
}

// NewPikeVM creates a new PikeVM for executing the given program
func NewPikeVM(prog *Program, opts ...Option) *PikeVM {
	return &PikeVM{
		prog: prog,
		cfg:  newExecConfig(opts),
	}
}

// NewPikeVMState creates scratch state sized for prog.
func NewPikeVMState(prog *Program) *PikeVMState {
	return &PikeVMState{
		closure: NewClosure(prog),
		reach:   NewClosure(prog),
	}
}

func (s *PikeVMState) reset(prog *Program) {
	s.closure.reset(prog)
	s.reach.reset(prog)
}

// Program returns the program being executed.
func (p *PikeVM) Program() *Program {
	return p.prog
}

// Match runs the simulation from a single entry address.
func (p *PikeVM) Match(in input.Cursor, start int) (Result, error) {
	return p.MatchWithState(NewPikeVMState(p.prog), in, []int{start})
}

// MatchSet runs the simulation with every address in starts live at once.
// Seeds enter the initial closure in the order given.
func (p *PikeVM) MatchSet(in input.Cursor, starts []int) (Result, error) {
	return p.MatchWithState(NewPikeVMState(p.prog), in, starts)
}

// MatchRule runs the simulation from the named rule.
func (p *PikeVM) MatchRule(in input.Cursor, name string) (Result, error) {
	return p.MatchRules(in, name)
}

// MatchRules runs the named rules together, so the longest match among them
// wins.
func (p *PikeVM) MatchRules(in input.Cursor, names ...string) (Result, error) {
	starts := make([]int, len(names))
	for i, name := range names {
		addr, err := p.prog.resolve(name)
		if err != nil {
			return NoMatch, err
		}
		starts[i] = addr
	}
	return p.MatchSet(in, starts)
}

// MatchWithState is MatchSet using caller-provided scratch state.
//
// If the cursor is already at end of input it returns EndOfInput without
// simulating. On a token the cursor is left at the end of the winning match;
// on NoMatch or error it is restored to where the match began.
//
//nolint:gocyclo,cyclop,funlen // complexity is inherent to opcode dispatch
func (p *PikeVM) MatchWithState(state *PikeVMState, in input.Cursor, starts []int) (Result, error) {
	for _, s := range starts {
		if err := p.prog.checkStart(s); err != nil {
			return NoMatch, err
		}
	}
	if in.Peek() == input.EOF {
		return EndOfInput, nil
	}

	code := p.prog.code
	tracer := p.cfg.tracer
	bud := budget{max: p.cfg.maxSteps}

	state.reset(p.prog)
	clos, reach := state.closure, state.reach
	for _, s := range starts {
		clos.Add(p.prog, s)
	}

	begin := in.Mark()
	bestAddr, bestEnd, bestMark := -1, -1, 0

	for clos.Len() > 0 {
		c := int(in.Peek())
		pos := in.Position()
		reach.Clear()

		for _, a32 := range clos.values() {
			a := int(a32)
			if !bud.spend() {
				err := &MatchError{Addr: a, Pos: pos, Err: ErrStepLimit}
				if bestAddr >= 0 {
					in.Release(bestMark)
				}
				in.RewindTo(begin)
				in.Release(begin)
				return NoMatch, err
			}
			if tracer != nil {
				tracer.Step(a, p.prog.Inst(a), pos)
			}

			switch Opcode(code[a]) {
			case OpMatch8:
				if c == int(code[a+1]) {
					reach.Add(p.prog, a+match8Len)
				} else if tracer != nil {
					tracer.Fail(a, pos, nil)
				}

			case OpMatch16:
				if c == u16(code, a+1) {
					reach.Add(p.prog, a+match16Len)
				} else if tracer != nil {
					tracer.Fail(a, pos, nil)
				}

			case OpRange8:
				if c >= int(code[a+1]) && c <= int(code[a+2]) {
					reach.Add(p.prog, a+range8Len)
				} else if tracer != nil {
					tracer.Fail(a, pos, nil)
				}

			case OpRange16:
				if c >= u16(code, a+1) && c <= u16(code, a+3) {
					reach.Add(p.prog, a+range16Len)
				} else if tracer != nil {
					tracer.Fail(a, pos, nil)
				}

			case OpAccept:
				if tracer != nil {
					tracer.Accept(a, u16(code, a+1), pos)
				}
				switch {
				case pos > bestEnd:
					// Longer than anything so far, whichever rule it is.
					if bestAddr >= 0 {
						in.Release(bestMark)
					}
					bestMark = in.Mark()
					bestEnd = pos
					bestAddr = a
				case pos == bestEnd && a < bestAddr:
					// Same length: the earlier-declared rule wins.
					bestAddr = a
				}

			case OpJump, OpSplit:
				// Already expanded by the closure.

			default:
				corrupt(a)
			}
		}

		if reach.Len() == 0 {
			break
		}
		in.Advance()
		clos, reach = reach, clos
	}

	if bestAddr < 0 {
		in.RewindTo(begin)
		in.Release(begin)
		return NoMatch, nil
	}
	in.RewindTo(bestMark)
	in.Release(bestMark)
	in.Release(begin)
	return Result(u16(code, bestAddr+1)), nil
}
