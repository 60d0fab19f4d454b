package asm

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/coregx/lexvm/nfa"
)

// Disassemble returns the assembly text of prog. Assembling the result
// yields the same code and entrypoints, provided no rule name starts with
// '.'.
func Disassemble(prog *nfa.Program) string {
	var sb strings.Builder
	_, _ = Fprint(&sb, prog)
	return sb.String()
}

// Fprint writes the assembly text of prog to w.
func Fprint(w io.Writer, prog *nfa.Program) (int, error) {
	names := labelNames(prog)
	rules := prog.Rules()

	var buf bytes.Buffer
	ri := 0
	for _, in := range prog.Instructions() {
		atRule := false
		for ri < len(rules) && rules[ri].Addr == in.Addr {
			fmt.Fprintf(&buf, "%s:\n", rules[ri].Name)
			ri++
			atRule = true
		}
		if name, ok := names[in.Addr]; ok && !atRule {
			fmt.Fprintf(&buf, "%s:\n", name)
		}
		buf.WriteByte('\t')
		buf.WriteString(render(in, names))
		buf.WriteByte('\n')
	}
	return w.Write(buf.Bytes())
}

// labelNames names every jump or split target: the first rule declared at
// the address if there is one, .L<addr> otherwise.
func labelNames(prog *nfa.Program) map[int]string {
	names := make(map[int]string)
	for _, r := range prog.Rules() {
		if _, ok := names[r.Addr]; !ok {
			names[r.Addr] = r.Name
		}
	}
	for _, in := range prog.Instructions() {
		var targets []int
		switch in.Op {
		case nfa.OpJump:
			targets = []int{in.Arg}
		case nfa.OpSplit:
			targets = in.Targets
		}
		for _, t := range targets {
			if _, ok := names[t]; !ok {
				names[t] = fmt.Sprintf(".L%d", t)
			}
		}
	}
	return names
}

func render(in nfa.Inst, names map[int]string) string {
	switch in.Op {
	case nfa.OpJump:
		return "jmp " + names[in.Arg]
	case nfa.OpSplit:
		parts := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			parts[i] = names[t]
		}
		return "split " + strings.Join(parts, ", ")
	default:
		return in.String()
	}
}
