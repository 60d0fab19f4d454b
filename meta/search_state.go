package meta

import (
	"sync"

	"github.com/coregx/lexvm/nfa"
)

// SearchState holds per-match mutable state so one Engine can serve many
// goroutines at once.
//
// Usage pattern:
//
//	state := e.statePool.get()
//	defer e.statePool.put(state)
//
// A SearchState must not be shared between goroutines.
type SearchState struct {
	// pikevm holds the closure sets reused across Thompson matches.
	pikevm *nfa.PikeVMState
}

func newSearchState(prog *nfa.Program) *SearchState {
	return &SearchState{
		pikevm: nfa.NewPikeVMState(prog),
	}
}

// searchStatePool manages SearchState reuse, following the stdlib regexp
// pattern of a sync.Pool per compiled program.
type searchStatePool struct {
	pool sync.Pool
	prog *nfa.Program
}

func newSearchStatePool(prog *nfa.Program) *searchStatePool {
	p := &searchStatePool{prog: prog}
	p.pool = sync.Pool{
		New: func() any {
			return newSearchState(p.prog)
		},
	}
	return p
}

// get retrieves a SearchState from the pool, creating one if necessary.
func (p *searchStatePool) get() *SearchState {
	return p.pool.Get().(*SearchState)
}

// put returns a SearchState to the pool for reuse. The PikeVM clears its
// sets when a match begins, so nothing is reset here.
func (p *searchStatePool) put(state *SearchState) {
	if state == nil {
		return
	}
	p.pool.Put(state)
}
