package nfa

import (
	"testing"

	"github.com/coregx/lexvm/input"
)

// benchProgram has a keyword, identifiers and numbers, with "if" shared
// between the keyword and identifier rules.
func benchProgram(b *testing.B) (*Program, []int) {
	b.Helper()
	bld := NewBuilder()
	literalRule(bld, "kw_if", "if", 2)
	plusRule(bld, "ident", 'a', 'z', 1)
	plusRule(bld, "digits", '0', '9', 3)
	prog, err := bld.Build()
	if err != nil {
		b.Fatal(err)
	}
	var starts []int
	for _, r := range prog.Rules() {
		starts = append(starts, r.Addr)
	}
	return prog, starts
}

var benchInputs = []struct {
	name string
	text string
}{
	{"keyword", "if"},
	{"ident", "interpolation"},
	{"number", "12345678901234567890"},
	{"nomatch", "#"},
}

func BenchmarkPikeVM_Match(b *testing.B) {
	prog, starts := benchProgram(b)
	vm := NewPikeVM(prog)

	for _, in := range benchInputs {
		b.Run(in.name+"/fresh-state", func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = vm.MatchSet(input.NewString(in.text), starts)
			}
		})

		b.Run(in.name+"/reused-state", func(b *testing.B) {
			state := NewPikeVMState(prog)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = vm.MatchWithState(state, input.NewString(in.text), starts)
			}
		})
	}
}

func BenchmarkIterativeVsRecursive(b *testing.B) {
	prog, _ := benchProgram(b)
	ident, _ := prog.Entry("ident")

	for _, in := range benchInputs {
		b.Run(in.name+"/recursive", func(b *testing.B) {
			bt := NewBacktracker(prog)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = bt.Match(input.NewString(in.text), ident)
			}
		})

		b.Run(in.name+"/iterative", func(b *testing.B) {
			bt := NewIterativeBacktracker(prog)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = bt.Match(input.NewString(in.text), ident)
			}
		})
	}
}

func BenchmarkClosure_Add(b *testing.B) {
	prog, starts := benchProgram(b)
	c := NewClosure(prog)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Clear()
		for _, s := range starts {
			c.Add(prog, s)
		}
	}
}
