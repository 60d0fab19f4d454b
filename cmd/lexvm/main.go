// Command lexvm assembles, inspects and runs lexer programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/coregx/lexvm"
	"github.com/coregx/lexvm/asm"
	"github.com/coregx/lexvm/internal/codegen"
	"github.com/coregx/lexvm/meta"
	"github.com/coregx/lexvm/nfa"
)

const (
	appName     = "lexvm"
	historyFile = ".lexvm_history"
	promptMain  = "lex> "
)

const usageText = `Usage:
  lexvm dis FILE                          Disassemble a program.
  lexvm run [flags] FILE [INPUT]          Tokenize INPUT, or stdin when absent.
  lexvm gen [-pkg P] [-var V] [-o OUT] FILE
                                          Write Go source embedding the program.
  lexvm repl [flags] FILE                 Tokenize lines interactively.

FILE is lexvm assembly. Run "lexvm <command> -h" for command flags.
`

// arrayFlags collects a repeated string flag.
type arrayFlags []string

func (f *arrayFlags) String() string {
	return strings.Join(*f, ", ")
}

func (f *arrayFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

// cli carries the process streams so commands can be tested.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.main(os.Args[1:]))
}

func (c *cli) main(args []string) int {
	if len(args) < 1 {
		fmt.Fprint(c.stderr, usageText)
		return 2
	}
	switch args[0] {
	case "dis":
		return c.cmdDis(args[1:])
	case "run":
		return c.cmdRun(args[1:])
	case "gen":
		return c.cmdGen(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(c.stdout, usageText)
		return 0
	default:
		fmt.Fprintf(c.stderr, "%s: unknown command %q\n", appName, args[0])
		fmt.Fprint(c.stderr, usageText)
		return 2
	}
}

func (c *cli) fail(err error) int {
	fmt.Fprintf(c.stderr, "%s: %v\n", appName, err)
	return 1
}

func loadProgram(path string) (*nfa.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := asm.Assemble(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// -----------------------------------------------------------------------------
// dis
// -----------------------------------------------------------------------------

func (c *cli) cmdDis(args []string) int {
	fs := flag.NewFlagSet("dis", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "usage: %s dis FILE\n", appName)
		return 2
	}

	prog, err := loadProgram(fs.Arg(0))
	if err != nil {
		return c.fail(err)
	}
	if _, err := asm.Fprint(c.stdout, prog); err != nil {
		return c.fail(err)
	}
	return 0
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

// lexFlags are the flags shared by run and repl.
type lexFlags struct {
	strategy    string
	rules       arrayFlags
	trace       bool
	recover     bool
	noPrefilter bool
	maxSteps    int
	verbose     bool
}

func (f *lexFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.strategy, "strategy", "thompson", "interpreter: thompson, backtrack or recursive")
	fs.Var(&f.rules, "rule", "rule to run (repeatable; default all)")
	fs.BoolVar(&f.trace, "trace", false, "print every executed instruction to stderr")
	fs.BoolVar(&f.recover, "recover", false, "report unmatched input as invalid tokens and continue")
	fs.BoolVar(&f.noPrefilter, "no-prefilter", false, "resume after errors one character at a time")
	fs.IntVar(&f.maxSteps, "max-steps", 0, "instruction budget per token (0 = unbounded)")
	fs.BoolVar(&f.verbose, "v", false, "verbose output")
}

// lexer loads path and configures a Lexer from the flags. With -v it also
// returns a tracer counting interpreter events.
func (c *cli) lexer(f *lexFlags, path string, log *Logger) (*lexvm.Lexer, *traceCounter, error) {
	strategy, err := meta.ParseStrategy(f.strategy)
	if err != nil {
		return nil, nil, err
	}
	prog, err := loadProgram(path)
	if err != nil {
		return nil, nil, err
	}

	config := lexvm.DefaultConfig()
	config.Strategy = strategy
	config.Recover = f.recover
	config.EnablePrefilter = !f.noPrefilter
	config.MaxSteps = f.maxSteps
	if len(f.rules) > 0 {
		config.Rules = []string(f.rules)
	}

	var tracer nfa.Tracer
	if f.trace {
		tracer = nfa.NewTextTracer(c.stderr)
	}
	var counter *traceCounter
	if log.Enabled() {
		if tracer == nil {
			tracer = nfa.NopTracer{}
		}
		counter = &traceCounter{Tracer: tracer}
		tracer = counter
	}
	var opts []nfa.Option
	if tracer != nil {
		opts = append(opts, nfa.WithTracer(tracer))
	}
	lx, err := lexvm.New(prog, config, opts...)
	if err != nil {
		return nil, nil, err
	}

	log.Section("Program")
	log.Log("File: %s", path)
	log.Log("Size: %d bytes, %d instructions", prog.Len(), prog.Insts())
	for _, r := range lx.Rules() {
		log.Log("Rule %s at %d", r.Name, r.Addr)
	}
	log.Section("Engine")
	log.Log("Strategy: %s", strategy)
	log.Log("Recover: %v", config.Recover)
	if log.Enabled() && config.Recover {
		if pf := lx.Prefilter(); pf != nil {
			log.Log("Prefilter: %v over %d prefixes", pf, lx.Prefixes().Len())
		} else {
			log.Log("Prefilter: none, recovery steps one character at a time")
		}
	}
	return lx, counter, nil
}

func (c *cli) cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var f lexFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fmt.Fprintf(c.stderr, "usage: %s run [flags] FILE [INPUT]\n", appName)
		return 2
	}

	log := NewLogger(c.stderr, f.verbose)
	lx, counter, err := c.lexer(&f, fs.Arg(0), log)
	if err != nil {
		return c.fail(err)
	}

	var data []byte
	if fs.NArg() == 2 {
		data = []byte(fs.Arg(1))
	} else if data, err = io.ReadAll(c.stdin); err != nil {
		return c.fail(err)
	}

	tokens, err := lx.Tokenize(data)
	c.printTokens(tokens)

	stats := lx.Stats()
	log.Section("Stats")
	log.Log("Tokens: %d, lexical errors: %d", stats.Tokens, stats.LexErrors)
	log.Log("Prefilter skips: %d (%d bytes), abandoned: %d",
		stats.PrefilterSkips, stats.PrefilterBytes, stats.PrefilterAbandoned)
	counter.summarize(log)

	if err != nil {
		return c.fail(err)
	}
	return 0
}

func (c *cli) printTokens(tokens []lexvm.Token) {
	for _, tok := range tokens {
		typ := fmt.Sprint(tok.Type)
		if tok.IsInvalid() {
			typ = "invalid"
		}
		fmt.Fprintf(c.stdout, "%d:%d\t%s\t%q\n", tok.Start, tok.End, typ, tok.Text)
	}
}

// -----------------------------------------------------------------------------
// gen
// -----------------------------------------------------------------------------

func (c *cli) cmdGen(args []string) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	pkg := fs.String("pkg", "lexer", "package name of the generated file")
	varName := fs.String("var", "Program", "name of the program variable")
	out := fs.String("o", "", "output file (default stdout)")
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "usage: %s gen [-pkg P] [-var V] [-o OUT] FILE\n", appName)
		return 2
	}

	log := NewLogger(c.stderr, *verbose)

	path := fs.Arg(0)
	prog, err := loadProgram(path)
	if err != nil {
		return c.fail(err)
	}
	opts := codegen.Options{
		Package: *pkg,
		VarName: *varName,
		Source:  filepath.Base(path),
	}

	log.Log("Generating package %s, variable %s, %d rules", opts.Package, opts.VarName, len(prog.Rules()))
	if *out == "" {
		if err := codegen.Write(c.stdout, prog, opts); err != nil {
			return c.fail(err)
		}
		return 0
	}
	if err := codegen.Save(*out, prog, opts); err != nil {
		return c.fail(err)
	}
	log.Log("Wrote %s", *out)
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func (c *cli) cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var f lexFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "usage: %s repl [flags] FILE\n", appName)
		return 2
	}

	log := NewLogger(c.stderr, f.verbose)
	lx, _, err := c.lexer(&f, fs.Arg(0), log)
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.stdout, "%s REPL (%s)\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n",
		appName, lx.Strategy())

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if fh, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(fh)
		_ = fh.Close()
	}
	defer func() {
		if fh, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(fh)
			_ = fh.Close()
		}
	}()

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(c.stdout)
			return 0
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if quit := c.replLine(lx, line); quit {
			return 0
		}
	}
}

// replLine handles one REPL line and reports whether to exit.
func (c *cli) replLine(lx *lexvm.Lexer, line string) bool {
	switch strings.TrimSpace(line) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(c.stdout, ":rules  list rules\n:dis    disassemble the program\n:quit   exit")
		return false
	case ":rules":
		for _, r := range lx.Rules() {
			fmt.Fprintf(c.stdout, "%s\t%d\n", r.Name, r.Addr)
		}
		return false
	case ":dis":
		fmt.Fprint(c.stdout, lx.String())
		return false
	}

	tokens, err := lx.TokenizeString(line)
	c.printTokens(tokens)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", appName, err)
	}
	return false
}
