package nfa

import (
	"fmt"
	"math"

	"github.com/coregx/lexvm/internal/conv"
)

// Label names an address that may not be known yet. Jumps and splits refer
// to labels; Build patches in the addresses once every label is bound.
type Label int

// Builder emits a Program instruction by instruction.
// This provides full control over program layout and is used by the
// assembler and by tests.
//
// Emit methods return the address of the emitted instruction. The first
// error (an operand that does not fit, a label bound twice, ...) is kept and
// returned by Build; later calls are ignored.
type Builder struct {
	code    []byte
	entries map[string]int
	labels  []int // label -> address, -1 while unbound
	fixups  []fixup
	err     error
}

// fixup is a 16-bit operand at code[at:at+2] waiting for label's address.
type fixup struct {
	at    int
	label Label
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		code:    make([]byte, 0, 64),
		entries: make(map[string]int),
	}
}

// Addr returns the address the next instruction will be emitted at.
func (b *Builder) Addr() int {
	return len(b.code)
}

// Err returns the first error recorded, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = &BuildError{Message: fmt.Sprintf(format, args...), Addr: len(b.code)}
	}
}

// Rule declares an entrypoint named name at the current address.
func (b *Builder) Rule(name string) {
	if !ValidRuleName(name) {
		b.fail("invalid rule name %q", name)
		return
	}
	if _, dup := b.entries[name]; dup {
		b.fail("rule %q declared twice", name)
		return
	}
	b.entries[name] = len(b.code)
}

// NewLabel allocates an unbound label.
func (b *Builder) NewLabel() Label {
	b.labels = append(b.labels, -1)
	return Label(len(b.labels) - 1)
}

// Bind binds l to the current address.
func (b *Builder) Bind(l Label) {
	if int(l) < 0 || int(l) >= len(b.labels) {
		b.fail("unknown label %d", l)
		return
	}
	if b.labels[l] >= 0 {
		b.fail("label %d bound twice", l)
		return
	}
	b.labels[l] = len(b.code)
}

// Here allocates a label bound to the current address.
func (b *Builder) Here() Label {
	l := b.NewLabel()
	b.Bind(l)
	return l
}

func (b *Builder) checkChar(c rune, limit int) bool {
	if c < 0 || int(c) > limit {
		b.fail("character %#x out of range [0, %#x]", c, limit)
		return false
	}
	return true
}

// Match emits a literal match, using the narrow encoding when c fits in a
// byte.
func (b *Builder) Match(c rune) int {
	if fitsByte(c) {
		return b.emit(byte(OpMatch8), byte(c))
	}
	return b.MatchWide(c)
}

// MatchWide emits a literal match with a 16-bit operand.
func (b *Builder) MatchWide(c rune) int {
	if !b.checkChar(c, math.MaxUint16) {
		return len(b.code)
	}
	return b.emit(byte(OpMatch16), u16Bytes(int(c))...)
}

// Range emits an inclusive range test, using the narrow encoding when both
// bounds fit in a byte. A range with lo > hi is legal and matches nothing.
func (b *Builder) Range(lo, hi rune) int {
	if fitsByte(lo) && fitsByte(hi) {
		return b.emit(byte(OpRange8), byte(lo), byte(hi))
	}
	return b.RangeWide(lo, hi)
}

// RangeWide emits an inclusive range test with 16-bit bounds.
func (b *Builder) RangeWide(lo, hi rune) int {
	if !b.checkChar(lo, math.MaxUint16) || !b.checkChar(hi, math.MaxUint16) {
		return len(b.code)
	}
	operands := append(u16Bytes(int(lo)), u16Bytes(int(hi))...)
	return b.emit(byte(OpRange16), operands...)
}

// Accept emits an accept of tokenType.
func (b *Builder) Accept(tokenType int) int {
	if tokenType < 0 || tokenType > math.MaxUint16 {
		b.fail("token type %d out of range [0, %d]", tokenType, math.MaxUint16)
		return len(b.code)
	}
	return b.emit(byte(OpAccept), u16Bytes(tokenType)...)
}

// Jump emits an unconditional jump to l.
func (b *Builder) Jump(l Label) int {
	addr := b.emit(byte(OpJump), 0, 0)
	b.fixups = append(b.fixups, fixup{at: addr + 1, label: l})
	return addr
}

// Branch emits a split: a nondeterministic choice among targets, tried in
// listed order.
func (b *Builder) Branch(targets ...Label) int {
	if len(targets) == 0 {
		b.fail("split needs at least one target")
		return len(b.code)
	}
	if len(targets) > math.MaxUint16 {
		b.fail("split has %d targets, at most %d allowed", len(targets), math.MaxUint16)
		return len(b.code)
	}
	addr := b.emit(byte(OpSplit), u16Bytes(len(targets))...)
	for _, l := range targets {
		b.fixups = append(b.fixups, fixup{at: len(b.code), label: l})
		b.code = append(b.code, 0, 0)
	}
	return addr
}

func (b *Builder) emit(op byte, operands ...byte) int {
	addr := len(b.code)
	if b.err != nil {
		return addr
	}
	b.code = append(b.code, op)
	b.code = append(b.code, operands...)
	return addr
}

// Build patches label references and returns the validated Program.
func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.code) > math.MaxUint16+1 {
		return nil, &BuildError{
			Message: fmt.Sprintf("program of %d bytes exceeds 16-bit addressing", len(b.code)),
			Addr:    -1,
		}
	}

	code := make([]byte, len(b.code))
	copy(code, b.code)
	for _, f := range b.fixups {
		if int(f.label) < 0 || int(f.label) >= len(b.labels) {
			return nil, &BuildError{Message: fmt.Sprintf("unknown label %d", f.label), Addr: f.at - 1}
		}
		target := b.labels[f.label]
		if target < 0 {
			return nil, &BuildError{Message: fmt.Sprintf("label %d never bound", f.label), Addr: f.at - 1}
		}
		v := conv.IntToUint16(target)
		code[f.at] = byte(v >> 8)
		code[f.at+1] = byte(v)
	}
	return NewProgram(code, b.entries)
}

func fitsByte(c rune) bool {
	return c >= 0 && c <= math.MaxUint8
}

// u16Bytes encodes n as a big-endian 16-bit operand.
func u16Bytes(n int) []byte {
	return conv.PutUint16(make([]byte, 0, 2), n)
}
