// Package codegen writes Go source files that embed a compiled program, so
// a lexer can ship its bytecode without parsing assembly at start-up.
package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/coregx/lexvm/nfa"
)

const nfaPath = "github.com/coregx/lexvm/nfa"

// Options controls the generated file.
type Options struct {
	Package string // package clause; default "lexer"
	VarName string // name of the program variable; default "Program"
	Source  string // optional origin named in the header comment
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "lexer"
	}
	if o.VarName == "" {
		o.VarName = "Program"
	}
	return o
}

func (o Options) validate() error {
	if !token.IsIdentifier(o.Package) {
		return fmt.Errorf("codegen: invalid package name %q", o.Package)
	}
	if !token.IsIdentifier(o.VarName) {
		return fmt.Errorf("codegen: invalid variable name %q", o.VarName)
	}
	return nil
}

// Generate returns a formatted Go file declaring prog as a package-level
// variable built with nfa.MustProgram, plus one Entry<Name> constant per
// rule.
func Generate(prog *nfa.Program, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, prog, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write is Generate writing to w.
func Write(w io.Writer, prog *nfa.Program, opts Options) error {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return err
	}

	f := jen.NewFile(opts.Package)
	if opts.Source != "" {
		f.HeaderComment(fmt.Sprintf("Code generated by lexvm from %s. DO NOT EDIT.", opts.Source))
	} else {
		f.HeaderComment("Code generated by lexvm. DO NOT EDIT.")
	}

	rules := prog.Rules()
	names := ruleIdents(rules)

	if len(rules) > 0 {
		f.Comment(fmt.Sprintf("Entry addresses of the rules in %s.", opts.VarName))
		f.Const().DefsFunc(func(g *jen.Group) {
			for i, r := range rules {
				g.Id(names[i]).Op("=").Lit(r.Addr)
			}
		})
		f.Line()
	}

	entries := jen.Dict{}
	for i, r := range rules {
		entries[jen.Lit(r.Name)] = jen.Id(names[i])
	}

	f.Comment(fmt.Sprintf("%s holds %d instructions in %d bytes.", opts.VarName, prog.Insts(), prog.Len()))
	f.Var().Id(opts.VarName).Op("=").Qual(nfaPath, "MustProgram").Call(
		codeLiteral(prog),
		jen.Map(jen.String()).Int().Values(entries),
	)

	if err := f.Render(w); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	return nil
}

// codeLiteral renders the instruction stream one instruction per line.
func codeLiteral(prog *nfa.Program) *jen.Statement {
	code := prog.Code()
	insts := prog.Instructions()
	lines := make([]jen.Code, 0, len(insts))
	for _, in := range insts {
		lines = append(lines, jen.ListFunc(func(g *jen.Group) {
			for _, b := range code[in.Addr:in.Next()] {
				g.Lit(int(b))
			}
		}))
	}
	return jen.Index().Byte().Custom(jen.Options{
		Open:      "{",
		Close:     "}",
		Separator: ",",
		Multi:     true,
	}, lines...)
}

// Save writes the generated file to path.
func Save(path string, prog *nfa.Program, opts Options) error {
	src, err := Generate(prog, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, src, 0o600); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	return nil
}

// ruleIdents maps rule names to distinct exported constant names.
func ruleIdents(rules []nfa.Rule) []string {
	used := make(map[string]bool, len(rules))
	out := make([]string, len(rules))
	for i, r := range rules {
		base := "Entry" + Identifier(r.Name)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s%d", base, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Identifier turns a rule name into the CamelCase tail of an exported
// identifier: "kw_if" becomes "KwIf" and "$start" becomes "Start". Runs of
// characters outside letters and digits separate words.
func Identifier(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "Rule"
	}
	return sb.String()
}
