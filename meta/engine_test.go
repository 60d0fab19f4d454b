package meta

import (
	"errors"
	"testing"

	"github.com/coregx/lexvm/asm"
	"github.com/coregx/lexvm/input"
	"github.com/coregx/lexvm/nfa"
)

// lexSrc has three rules. kw_if and ident overlap on "if", which tells the
// strategies apart: longest match prefers ident on "iffy", ordered choice
// stops at kw_if.
const lexSrc = `
kw_if:
	match 'i'
	match 'f'
	accept 2
ident:
.id:
	range 'a', 'z'
	split .id, .idDone
.idDone:
	accept 1
space:
	match ' '
.sp:
	split .spMore, .spDone
.spMore:
	match ' '
	jmp .sp
.spDone:
	accept 3
`

const (
	typeIdent = 1
	typeIf    = 2
	typeSpace = 3
)

var allStrategies = []Strategy{UseThompson, UseBacktrack, UseRecursive}

func assemble(t *testing.T, src string) *nfa.Program {
	t.Helper()
	prog, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return prog
}

func newEngine(t *testing.T, src string, mutate func(*Config)) *Engine {
	t.Helper()
	config := DefaultConfig()
	if mutate != nil {
		mutate(&config)
	}
	e, err := NewEngine(assemble(t, src), config)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func TestEngine_MatchByStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    map[Strategy]nfa.Result
		wantPos map[Strategy]int
	}{
		{
			input:   "iffy",
			want:    map[Strategy]nfa.Result{UseThompson: typeIdent, UseBacktrack: typeIf, UseRecursive: typeIf},
			wantPos: map[Strategy]int{UseThompson: 4, UseBacktrack: 2, UseRecursive: 2},
		},
		{
			// Equal length: the accept at the lower address wins.
			input:   "if",
			want:    map[Strategy]nfa.Result{UseThompson: typeIf, UseBacktrack: typeIf, UseRecursive: typeIf},
			wantPos: map[Strategy]int{UseThompson: 2, UseBacktrack: 2, UseRecursive: 2},
		},
		{
			input:   "   x",
			want:    map[Strategy]nfa.Result{UseThompson: typeSpace, UseBacktrack: typeSpace, UseRecursive: typeSpace},
			wantPos: map[Strategy]int{UseThompson: 3, UseBacktrack: 3, UseRecursive: 3},
		},
		{
			input:   "9",
			want:    map[Strategy]nfa.Result{UseThompson: nfa.NoMatch, UseBacktrack: nfa.NoMatch, UseRecursive: nfa.NoMatch},
			wantPos: map[Strategy]int{UseThompson: 0, UseBacktrack: 0, UseRecursive: 0},
		},
		{
			input:   "",
			want:    map[Strategy]nfa.Result{UseThompson: nfa.EndOfInput, UseBacktrack: nfa.EndOfInput, UseRecursive: nfa.EndOfInput},
			wantPos: map[Strategy]int{UseThompson: 0, UseBacktrack: 0, UseRecursive: 0},
		},
	}

	for _, s := range allStrategies {
		e := newEngine(t, lexSrc, func(c *Config) { c.Strategy = s })
		for _, tt := range tests {
			t.Run(s.String()+"/"+tt.input, func(t *testing.T) {
				cur := input.NewString(tt.input)
				got, err := e.Match(cur)
				if err != nil {
					t.Fatalf("Match() error: %v", err)
				}
				if got != tt.want[s] {
					t.Errorf("Match() = %v, want %v", got, tt.want[s])
				}
				if cur.Position() != tt.wantPos[s] {
					t.Errorf("Position() = %d, want %d", cur.Position(), tt.wantPos[s])
				}
				if cur.Marks() != 0 {
					t.Errorf("%d marks left outstanding", cur.Marks())
				}
			})
		}
	}
}

func TestEngine_MatchRule(t *testing.T) {
	for _, s := range allStrategies {
		t.Run(s.String(), func(t *testing.T) {
			e := newEngine(t, lexSrc, func(c *Config) { c.Strategy = s })

			got, err := e.MatchRule(input.NewString("iffy"), "ident")
			if err != nil || got != typeIdent {
				t.Errorf("MatchRule(ident) = %v, %v; want %d", got, err, typeIdent)
			}

			_, err = e.MatchRule(input.NewString("x"), "number")
			var ruleErr *nfa.RuleError
			if !errors.As(err, &ruleErr) || ruleErr.Name != "number" {
				t.Errorf("MatchRule(number) error = %v, want *RuleError", err)
			}
			if !errors.Is(err, nfa.ErrUnknownRule) {
				t.Errorf("error %v does not wrap ErrUnknownRule", err)
			}
		})
	}
}

func TestNewEngine_Rules(t *testing.T) {
	e := newEngine(t, lexSrc, func(c *Config) { c.Rules = []string{"space", "ident"} })

	rules := e.Rules()
	if len(rules) != 2 || rules[0].Name != "ident" || rules[1].Name != "space" {
		t.Errorf("Rules() = %v, want ident then space in address order", rules)
	}

	// kw_if is not configured, so ident takes "if".
	got, err := e.Match(input.NewString("if"))
	if err != nil || got != typeIdent {
		t.Errorf("Match(if) = %v, %v; want %d", got, err, typeIdent)
	}
}

func TestNewEngine_Errors(t *testing.T) {
	prog := assemble(t, lexSrc)

	if _, err := NewEngine(nil, DefaultConfig()); !errors.Is(err, ErrNilProgram) {
		t.Errorf("NewEngine(nil) error = %v, want ErrNilProgram", err)
	}

	config := DefaultConfig()
	config.Rules = []string{"ident", "missing"}
	_, err := NewEngine(prog, config)
	if !errors.Is(err, nfa.ErrUnknownRule) {
		t.Errorf("NewEngine(unknown rule) error = %v, want ErrUnknownRule", err)
	}

	config = DefaultConfig()
	config.MaxSteps = -1
	_, err = NewEngine(prog, config)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "MaxSteps" {
		t.Errorf("NewEngine(bad config) error = %v, want *ConfigError for MaxSteps", err)
	}
}

func TestEngine_StepLimit(t *testing.T) {
	for _, s := range allStrategies {
		t.Run(s.String(), func(t *testing.T) {
			e := newEngine(t, lexSrc, func(c *Config) {
				c.Strategy = s
				c.MaxSteps = 3
			})
			cur := input.NewString("abcdefgh")
			got, err := e.Match(cur)
			if !errors.Is(err, nfa.ErrStepLimit) {
				t.Fatalf("Match() = %v, %v; want ErrStepLimit", got, err)
			}
			if cur.Position() != 0 {
				t.Errorf("Position() = %d after abort, want 0", cur.Position())
			}
		})
	}
}

func TestEngine_Prefilter(t *testing.T) {
	e := newEngine(t, lexSrc, nil)
	if e.Prefilter() == nil {
		t.Fatal("Prefilter() = nil, want a prefilter for literal-led rules")
	}
	if e.Prefixes().IsEmpty() {
		t.Error("Prefixes() is empty")
	}

	e = newEngine(t, lexSrc, func(c *Config) { c.EnablePrefilter = false })
	if e.Prefilter() != nil {
		t.Error("Prefilter() != nil with EnablePrefilter = false")
	}

	// An empty-accepting rule can start anywhere.
	e = newEngine(t, "any:\n\taccept 1\n", nil)
	if e.Prefilter() != nil {
		t.Error("Prefilter() != nil for a rule accepting the empty string")
	}
}

func TestEngine_Stats(t *testing.T) {
	e := newEngine(t, lexSrc, func(c *Config) { c.Strategy = UseBacktrack })
	if _, err := e.Match(input.NewString("x")); err != nil {
		t.Fatal(err)
	}

	// kw_if fails, ident matches: two attempts.
	if got := e.Stats().BacktrackMatches; got != 2 {
		t.Errorf("BacktrackMatches = %d, want 2", got)
	}
	if got := e.Stats().ThompsonMatches; got != 0 {
		t.Errorf("ThompsonMatches = %d, want 0", got)
	}

	e.ResetStats()
	if e.Stats() != (Stats{}) {
		t.Errorf("Stats() after reset = %+v", e.Stats())
	}
}

func TestEngine_Accessors(t *testing.T) {
	prog := assemble(t, lexSrc)
	e, err := NewEngine(prog, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if e.Program() != prog {
		t.Error("Program() returned a different program")
	}
	if e.Strategy() != UseThompson {
		t.Errorf("Strategy() = %v, want thompson", e.Strategy())
	}
	if e.Config().MaxLiterals != 256 {
		t.Errorf("Config().MaxLiterals = %d", e.Config().MaxLiterals)
	}
	if got := len(e.Rules()); got != 3 {
		t.Errorf("len(Rules()) = %d, want 3", got)
	}
}
