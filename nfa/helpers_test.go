package nfa

import (
	"testing"

	"github.com/coregx/lexvm/input"
)

// matcher is the API shared by all three interpreters.
type matcher interface {
	Match(in input.Cursor, start int) (Result, error)
	MatchRule(in input.Cursor, name string) (Result, error)
}

type namedMatcher struct {
	name string
	m    matcher
}

func allMatchers(prog *Program, opts ...Option) []namedMatcher {
	return []namedMatcher{
		{"recursive", NewBacktracker(prog, opts...)},
		{"iterative", NewIterativeBacktracker(prog, opts...)},
		{"pikevm", NewPikeVM(prog, opts...)},
	}
}

func backtrackers(prog *Program, opts ...Option) []namedMatcher {
	return allMatchers(prog, opts...)[:2]
}

func mustBuild(t *testing.T, build func(b *Builder)) *Program {
	t.Helper()
	b := NewBuilder()
	build(b)
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return prog
}

// literalRule emits rule name matching exactly s and accepting tokenType.
func literalRule(b *Builder, name, s string, tokenType int) {
	b.Rule(name)
	for _, c := range s {
		b.Match(c)
	}
	b.Accept(tokenType)
}

// plusRule emits rule name matching one or more characters in [lo, hi].
func plusRule(b *Builder, name string, lo, hi rune, tokenType int) {
	b.Rule(name)
	top := b.Here()
	done := b.NewLabel()
	b.Range(lo, hi)
	b.Branch(top, done)
	b.Bind(done)
	b.Accept(tokenType)
}

type event struct {
	kind    string
	addr    int
	pos     int
	pending []Context
}

// recordingTracer keeps every event in order.
type recordingTracer struct {
	events []event
}

func (r *recordingTracer) Step(addr int, _ Inst, pos int) {
	r.events = append(r.events, event{kind: "step", addr: addr, pos: pos})
}

func (r *recordingTracer) Accept(addr int, _ int, pos int) {
	r.events = append(r.events, event{kind: "accept", addr: addr, pos: pos})
}

func (r *recordingTracer) Fail(addr int, pos int, pending []Context) {
	r.events = append(r.events, event{kind: "fail", addr: addr, pos: pos, pending: pending})
}

func (r *recordingTracer) Backtrack(addr int, pos int) {
	r.events = append(r.events, event{kind: "backtrack", addr: addr, pos: pos})
}

func (r *recordingTracer) byKind(kind string) []event {
	var out []event
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}
