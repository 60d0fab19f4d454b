package lexvm_test

import (
	"fmt"

	"github.com/coregx/lexvm"
	"github.com/coregx/lexvm/input"
)

const exampleSrc = `
kw_if:
	match 'i'
	match 'f'
	accept 2
ident:
.L0:
	range 'a', 'z'
	split .L0, .done
.done:
	accept 1
space:
	match ' '
	accept 3
`

// ExampleAssemble demonstrates building a lexer from assembly text.
func ExampleAssemble() {
	lx, err := lexvm.Assemble(exampleSrc)
	if err != nil {
		panic(err)
	}

	tokens, err := lx.TokenizeString("if iffy")
	if err != nil {
		panic(err)
	}
	for _, tok := range tokens {
		fmt.Println(tok)
	}
	// Output:
	// 2[0:2] "if"
	// 3[2:3] " "
	// 1[3:7] "iffy"
}

// ExampleLoad demonstrates loading raw bytecode.
func ExampleLoad() {
	code := []byte{
		3, '0', '9', // 0: range '0', '9'
		7, 0, 2, 0, 0, 0, 10, // 3: split 0, 10
		5, 0, 4, // 10: accept 4
	}
	lx, err := lexvm.Load(code, map[string]int{"number": 0})
	if err != nil {
		panic(err)
	}

	typ, n, ok := lx.MatchString("2024-10")
	fmt.Println(typ, n, ok)
	// Output: 4 4 true
}

// ExampleConfig demonstrates ordered-choice matching with error recovery.
func ExampleConfig() {
	config := lexvm.DefaultConfig()
	config.Strategy = lexvm.UseBacktrack
	config.Recover = true

	lx, err := lexvm.AssembleWithConfig(exampleSrc, config)
	if err != nil {
		panic(err)
	}

	tokens, _ := lx.TokenizeString("iffy 42")
	for _, tok := range tokens {
		fmt.Println(tok)
	}
	// Output:
	// 2[0:2] "if"
	// 1[2:4] "fy"
	// 3[4:5] " "
	// invalid[5:7] "42"
}

// ExampleLexer_Match demonstrates driving a cursor one token at a time.
func ExampleLexer_Match() {
	lx, err := lexvm.Assemble(exampleSrc)
	if err != nil {
		panic(err)
	}

	cur := input.NewString("if x")
	for {
		start := cur.Offset()
		res, err := lx.Match(cur)
		if err != nil || !res.IsToken() {
			fmt.Println(res)
			break
		}
		fmt.Println(res, cur.Offset()-start)
	}
	// Output:
	// Token(2) 2
	// Token(3) 1
	// Token(1) 1
	// EndOfInput
}
