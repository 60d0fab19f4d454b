package meta

import (
	"sort"
	"sync/atomic"

	"github.com/coregx/lexvm/input"
	"github.com/coregx/lexvm/literal"
	"github.com/coregx/lexvm/nfa"
	"github.com/coregx/lexvm/prefilter"
)

// Engine binds a program to a rule set, a strategy and a prefilter.
//
// Thread safety: an Engine is safe for concurrent use. The program and the
// prefilter are immutable; per-match Thompson state comes from a sync.Pool.
// Cursors are not shared, so each goroutine brings its own.
type Engine struct {
	// IMPORTANT: stats MUST be first field for proper 8-byte alignment on
	// 32-bit platforms, where the counters are updated atomically.
	stats Stats

	prog   *nfa.Program
	config Config

	// rules are the configured rules in address order; starts holds their
	// distinct entry addresses in the same order.
	rules  []nfa.Rule
	starts []int

	pikevm      *nfa.PikeVM
	backtracker *nfa.IterativeBacktracker
	recursive   *nfa.Backtracker

	prefixes  *literal.Seq
	prefilter prefilter.Prefilter

	statePool *searchStatePool
}

// Stats tracks execution statistics.
type Stats struct {
	// ThompsonMatches counts matches run on the parallel-state simulator.
	ThompsonMatches uint64

	// BacktrackMatches counts matches run on either backtracker. A single
	// Match may try several rules; each attempt is counted.
	BacktrackMatches uint64

	// Tokens counts tokens produced by Tokenize.
	Tokens uint64

	// LexErrors counts positions where no rule produced a token.
	LexErrors uint64

	// PrefilterSkips counts recovery skips that landed on a prefilter
	// candidate.
	PrefilterSkips uint64

	// PrefilterBytes counts bytes jumped over by those skips, beyond the
	// character every recovery step consumes.
	PrefilterBytes uint64

	// PrefilterAbandoned counts scans in which the prefilter was retired
	// because its candidates stopped paying off.
	PrefilterAbandoned uint64
}

// NewEngine creates an engine for prog. Options are passed through to the
// interpreter, after the step bound taken from config.
//
// Returns a *ConfigError for an invalid config and a *nfa.RuleError when
// config.Rules names a rule the program does not have.
func NewEngine(prog *nfa.Program, config Config, opts ...nfa.Option) (*Engine, error) {
	if prog == nil {
		return nil, ErrNilProgram
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rules, err := selectRules(prog, config.Rules)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		prog:      prog,
		config:    config,
		rules:     rules,
		starts:    entryAddrs(rules),
		statePool: newSearchStatePool(prog),
	}

	execOpts := append([]nfa.Option{nfa.WithMaxSteps(config.MaxSteps)}, opts...)
	switch config.Strategy {
	case UseThompson:
		e.pikevm = nfa.NewPikeVM(prog, execOpts...)
	case UseBacktrack:
		e.backtracker = nfa.NewIterativeBacktracker(prog, execOpts...)
	case UseRecursive:
		e.recursive = nfa.NewBacktracker(prog, execOpts...)
	}

	if config.EnablePrefilter {
		extractor := literal.New(literal.ExtractorConfig{
			MaxLiterals:   config.MaxLiterals,
			MaxLiteralLen: config.MaxLiteralLen,
			MaxClassSize:  config.MaxClassSize,
		})
		e.prefixes = extractor.ExtractPrefixes(prog, e.starts)
		e.prefilter = prefilter.NewBuilder(e.prefixes).Build()
	}

	return e, nil
}

// selectRules resolves names against prog, or takes every rule when names is
// nil. The result is ordered by address, then name.
func selectRules(prog *nfa.Program, names []string) ([]nfa.Rule, error) {
	if names == nil {
		return prog.Rules(), nil
	}
	rules := make([]nfa.Rule, 0, len(names))
	for _, name := range names {
		addr, ok := prog.Entry(name)
		if !ok {
			return nil, &nfa.RuleError{Name: name}
		}
		rules = append(rules, nfa.Rule{Name: name, Addr: addr})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Addr != rules[j].Addr {
			return rules[i].Addr < rules[j].Addr
		}
		return rules[i].Name < rules[j].Name
	})
	return rules, nil
}

// entryAddrs returns the distinct entry addresses of rules, which are
// already in address order.
func entryAddrs(rules []nfa.Rule) []int {
	starts := make([]int, 0, len(rules))
	for _, r := range rules {
		if n := len(starts); n > 0 && starts[n-1] == r.Addr {
			continue
		}
		starts = append(starts, r.Addr)
	}
	return starts
}

// Program returns the program the engine runs.
func (e *Engine) Program() *nfa.Program {
	return e.prog
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Strategy returns the interpreter strategy.
func (e *Engine) Strategy() Strategy {
	return e.config.Strategy
}

// Rules returns the configured rules in address order.
func (e *Engine) Rules() []nfa.Rule {
	rules := make([]nfa.Rule, len(e.rules))
	copy(rules, e.rules)
	return rules
}

// Prefixes returns the literal prefixes extracted for the prefilter, or nil.
func (e *Engine) Prefixes() *literal.Seq {
	return e.prefixes
}

// Prefilter returns the recovery prefilter, or nil when the rules have no
// usable literal prefixes or prefiltering is disabled.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// Stats returns a snapshot of the execution statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		ThompsonMatches:    atomic.LoadUint64(&e.stats.ThompsonMatches),
		BacktrackMatches:   atomic.LoadUint64(&e.stats.BacktrackMatches),
		Tokens:             atomic.LoadUint64(&e.stats.Tokens),
		LexErrors:          atomic.LoadUint64(&e.stats.LexErrors),
		PrefilterSkips:     atomic.LoadUint64(&e.stats.PrefilterSkips),
		PrefilterBytes:     atomic.LoadUint64(&e.stats.PrefilterBytes),
		PrefilterAbandoned: atomic.LoadUint64(&e.stats.PrefilterAbandoned),
	}
}

// ResetStats resets execution statistics to zero.
func (e *Engine) ResetStats() {
	atomic.StoreUint64(&e.stats.ThompsonMatches, 0)
	atomic.StoreUint64(&e.stats.BacktrackMatches, 0)
	atomic.StoreUint64(&e.stats.Tokens, 0)
	atomic.StoreUint64(&e.stats.LexErrors, 0)
	atomic.StoreUint64(&e.stats.PrefilterSkips, 0)
	atomic.StoreUint64(&e.stats.PrefilterBytes, 0)
	atomic.StoreUint64(&e.stats.PrefilterAbandoned, 0)
}

// Match reads one token from in using every configured rule.
//
// It returns EndOfInput when in is exhausted, the token type when a rule
// matched (in is left after the token), or NoMatch (in is unchanged).
func (e *Engine) Match(in input.Cursor) (nfa.Result, error) {
	state := e.statePool.get()
	defer e.statePool.put(state)
	return e.matchStarts(state, in, e.starts)
}

// MatchRule reads one token from in using only the named rule. The rule
// need not be among the configured ones.
func (e *Engine) MatchRule(in input.Cursor, name string) (nfa.Result, error) {
	addr, ok := e.prog.Entry(name)
	if !ok {
		return nfa.NoMatch, &nfa.RuleError{Name: name}
	}
	state := e.statePool.get()
	defer e.statePool.put(state)
	return e.matchStarts(state, in, []int{addr})
}

func (e *Engine) matchStarts(state *SearchState, in input.Cursor, starts []int) (nfa.Result, error) {
	if in.Peek() == input.EOF {
		return nfa.EndOfInput, nil
	}

	if e.pikevm != nil {
		atomic.AddUint64(&e.stats.ThompsonMatches, 1)
		return e.pikevm.MatchWithState(state.pikevm, in, starts)
	}

	for _, start := range starts {
		atomic.AddUint64(&e.stats.BacktrackMatches, 1)
		var res nfa.Result
		var err error
		if e.backtracker != nil {
			res, err = e.backtracker.Match(in, start)
		} else {
			res, err = e.recursive.Match(in, start)
		}
		if err != nil || res.IsToken() {
			return res, err
		}
	}
	return nfa.NoMatch, nil
}
