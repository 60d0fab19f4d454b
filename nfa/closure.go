package nfa

import (
	"github.com/coregx/lexvm/internal/conv"
	"github.com/coregx/lexvm/internal/sparse"
)

// Closure is the epsilon closure of one or more addresses: every address
// reachable through jumps and splits without consuming input.
//
// Addresses are kept in first-discovery order, with split targets explored
// in their listed order. The PikeVM iterates threads in this order, so it is
// part of the observable tie-break behavior. Duplicates are dropped by
// address, which is also what makes cyclic jump/split graphs terminate.
//
// A Closure is scratch state owned by a single match; it is not safe for
// concurrent use.
type Closure struct {
	set   *sparse.SparseSet
	stack []int // pending addresses, explored LIFO
}

// NewClosure creates an empty closure sized for prog.
func NewClosure(prog *Program) *Closure {
	return &Closure{
		set:   sparse.NewSparseSet(conv.IntToUint32(prog.Len())),
		stack: make([]int, 0, 16),
	}
}

// reset clears the closure and makes it fit prog.
func (c *Closure) reset(prog *Program) {
	c.set.Resize(conv.IntToUint32(prog.Len()))
	c.stack = c.stack[:0]
}

// Add inserts addr and everything reachable from it without consuming
// input. The traversal is a preorder depth-first walk on an explicit stack:
// targets are pushed in reverse so the first one is explored first, giving
// the same order as the obvious recursive walk without its depth limit.
//
// Addresses at or beyond the end of the code are dead threads (execution
// fell off the last instruction) and are not recorded.
func (c *Closure) Add(prog *Program, addr int) {
	code := prog.code
	c.stack = append(c.stack[:0], addr)
	for len(c.stack) > 0 {
		a := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

		if a >= len(code) {
			continue
		}
		if !c.set.Insert(uint32(a)) {
			continue
		}

		switch Opcode(code[a]) {
		case OpJump:
			c.stack = append(c.stack, u16(code, a+1))
		case OpSplit:
			n := u16(code, a+1)
			for i := n - 1; i >= 0; i-- {
				c.stack = append(c.stack, u16(code, a+splitHeaderLen+2*i))
			}
		}
	}
}

// Contains reports whether addr is in the closure.
func (c *Closure) Contains(addr int) bool {
	return addr >= 0 && c.set.Contains(uint32(addr))
}

// Len returns the number of addresses in the closure.
func (c *Closure) Len() int {
	return c.set.Len()
}

// Clear empties the closure, keeping its storage.
func (c *Closure) Clear() {
	c.set.Clear()
}

// Addrs returns a copy of the addresses in discovery order.
func (c *Closure) Addrs() []int {
	vals := c.set.Values()
	addrs := make([]int, len(vals))
	for i, v := range vals {
		addrs[i] = int(v)
	}
	return addrs
}

// values exposes the live backing slice for iteration without copying.
func (c *Closure) values() []uint32 {
	return c.set.Values()
}
