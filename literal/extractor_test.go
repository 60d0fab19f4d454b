package literal

import (
	"testing"

	"github.com/coregx/lexvm/asm"
	"github.com/coregx/lexvm/nfa"
)

func assemble(t *testing.T, src string) (*nfa.Program, []int) {
	t.Helper()
	prog, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	var starts []int
	for _, r := range prog.Rules() {
		starts = append(starts, r.Addr)
	}
	return prog, starts
}

// checkLiterals compares the literal bytes of seq, in order, with expected.
func checkLiterals(t *testing.T, seq *Seq, expected []string) {
	t.Helper()
	if seq.Len() != len(expected) {
		t.Errorf("expected %d literals, got %d", len(expected), seq.Len())
		for _, lit := range seq.Literals() {
			t.Logf("  got: %q", lit.Bytes)
		}
		return
	}
	for i, exp := range expected {
		if got := string(seq.Get(i).Bytes); got != exp {
			t.Errorf("literal %d: expected %q, got %q", i, exp, got)
		}
	}
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []string
		complete bool
	}{
		{
			name: "keywords",
			src: `
kw_if:
	match 'i'
	match 'f'
	accept 1
kw_else:
	match 'e'
	match 'l'
	match 's'
	match 'e'
	accept 2
`,
			expected: []string{"if", "else"},
			complete: true,
		},
		{
			name: "small range",
			src: `
digit:
	range '0', '3'
	accept 1
`,
			expected: []string{"0", "1", "2", "3"},
			complete: true,
		},
		{
			name: "split and jump",
			src: `
r:
	split .a, .b
.a:
	match 'x'
	jmp .c
.b:
	match 'y'
.c:
	match 'z'
	accept 1
`,
			expected: []string{"xz", "yz"},
			complete: true,
		},
		{
			name: "wide character",
			src: `
lambda:
	match16 'λ'
	accept 1
`,
			expected: []string{"λ"},
			complete: true,
		},
		{
			name: "epsilon loop",
			src: `
r:
.l:
	split .l, .m
.m:
	match 'a'
	accept 1
`,
			expected: []string{"a"},
			complete: true,
		},
		{
			name: "large range ends the literal",
			src: `
hex:
	match '0'
	match 'x'
	range 'a', 'z'
	accept 1
`,
			expected: []string{"0x"},
			complete: false,
		},
		{
			name: "dead path is dropped",
			src: `
r:
	split .dead, .live
.dead:
	range 'z', 'a'
	accept 1
.live:
	match 'q'
	accept 2
`,
			expected: []string{"q"},
			complete: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, starts := assemble(t, tt.src)
			seq := New(DefaultConfig()).ExtractPrefixes(prog, starts)
			checkLiterals(t, seq, tt.expected)
			if seq.AllComplete() != tt.complete {
				t.Errorf("AllComplete() = %v, want %v", seq.AllComplete(), tt.complete)
			}
		})
	}
}

func TestExtractPrefixes_Unusable(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty token", "r:\n\taccept 1"},
		{"large first range", "ident:\n\trange 'a', 'z'\n\taccept 1"},
		{"one unusable rule spoils the set", `
kw:
	match 'k'
	accept 1
any:
	range16 0x0, 0xffff
	accept 2
`},
		{"replacement character", `
kw:
	match 'k'
	accept 1
bad:
	match16 0xfffd
	accept 2
`},
		{"replacement character after a prefix", "r:\n\tmatch 'a'\n\trange16 0xfffc, 0xfffd\n\taccept 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, starts := assemble(t, tt.src)
			if seq := New(DefaultConfig()).ExtractPrefixes(prog, starts); seq != nil {
				t.Errorf("ExtractPrefixes() = %v, want nil", seq.Literals())
			}
		})
	}
}

func TestExtractPrefixes_BadStart(t *testing.T) {
	prog, _ := assemble(t, "r:\n\tmatch 'a'\n\taccept 1")
	if seq := New(DefaultConfig()).ExtractPrefixes(prog, []int{1}); seq != nil {
		t.Errorf("ExtractPrefixes() = %v, want nil", seq.Literals())
	}
}

func TestExtractPrefixes_MaxLiteralLen(t *testing.T) {
	prog, starts := assemble(t, `
greeting:
	match 'h'
	match 'e'
	match 'l'
	match 'l'
	match 'o'
	accept 1
`)
	config := DefaultConfig()
	config.MaxLiteralLen = 3
	seq := New(config).ExtractPrefixes(prog, starts)
	checkLiterals(t, seq, []string{"hel"})
	if seq.Get(0).Complete {
		t.Error("truncated literal marked complete")
	}
}

func TestExtractPrefixes_BudgetEndsLiterals(t *testing.T) {
	prog, starts := assemble(t, `
ident:
.top:
	range 'a', 'z'
	split .top, .done
.done:
	accept 1
`)
	config := ExtractorConfig{MaxLiterals: 30, MaxLiteralLen: 16, MaxClassSize: 26}
	seq := New(config).ExtractPrefixes(prog, starts)
	if seq.Len() != 26 {
		t.Fatalf("got %d literals, want 26", seq.Len())
	}
	for _, lit := range seq.Literals() {
		if lit.Len() != 1 {
			t.Errorf("literal %q longer than one byte", lit.Bytes)
		}
	}
	// Every one-letter identifier is itself a token.
	if !seq.AllComplete() {
		t.Error("AllComplete() = false")
	}
}
