package nfa

import (
	"slices"
	"testing"
)

func TestClosure_PreorderDiscovery(t *testing.T) {
	prog := mustBuild(t, func(b *Builder) {
		l1, l2, l3 := b.NewLabel(), b.NewLabel(), b.NewLabel()
		b.Branch(l1, l2) // 0
		b.Bind(l1)
		b.Jump(l3) // 7
		b.Bind(l2)
		b.Match('b') // 10
		b.Bind(l3)
		b.Match('a') // 12
		b.Accept(1)  // 14
	})

	c := NewClosure(prog)
	c.Add(prog, 0)

	// The first split target is followed all the way down before the second.
	want := []int{0, 7, 12, 10}
	if got := c.Addrs(); !slices.Equal(got, want) {
		t.Errorf("Addrs() = %v, want %v", got, want)
	}
	if c.Contains(14) {
		t.Error("closure crossed a consuming instruction")
	}
}

func TestClosure_Cycle(t *testing.T) {
	prog := mustBuild(t, func(b *Builder) {
		top := b.Here()
		l1, l2 := b.NewLabel(), b.NewLabel()
		b.Branch(l1, l2) // 0
		b.Bind(l1)
		b.Jump(top) // 7
		b.Bind(l2)
		b.Accept(1) // 10
	})

	c := NewClosure(prog)
	c.Add(prog, 0)
	if got, want := c.Addrs(), []int{0, 7, 10}; !slices.Equal(got, want) {
		t.Errorf("Addrs() = %v, want %v", got, want)
	}

	// Adding an address already present changes nothing.
	c.Add(prog, 7)
	if c.Len() != 3 {
		t.Errorf("Len() = %d after re-adding, want 3", c.Len())
	}
}

func TestClosure_DeadAddress(t *testing.T) {
	prog := mustBuild(t, func(b *Builder) {
		b.Match('a')
	})
	c := NewClosure(prog)
	c.Add(prog, prog.Len())
	if c.Len() != 0 {
		t.Errorf("fall-through address was recorded: %v", c.Addrs())
	}
}

func TestClosure_DeepChain(t *testing.T) {
	const depth = 10000
	prog := mustBuild(t, func(b *Builder) {
		for range depth {
			next := b.NewLabel()
			b.Jump(next)
			b.Bind(next)
		}
		b.Accept(1)
	})

	c := NewClosure(prog)
	c.Add(prog, 0)
	if c.Len() != depth+1 {
		t.Fatalf("Len() = %d, want %d", c.Len(), depth+1)
	}
	if !c.Contains(3 * depth) {
		t.Error("accept at the end of the chain not reached")
	}

	c.Clear()
	if c.Len() != 0 || c.Contains(0) {
		t.Error("Clear() left addresses behind")
	}
}

func TestClosure_MultipleSeeds(t *testing.T) {
	prog := mustBuild(t, func(b *Builder) {
		literalRule(b, "x", "a", 10)  // 0
		literalRule(b, "y", "ab", 20) // 5
	})
	c := NewClosure(prog)
	c.Add(prog, 5)
	c.Add(prog, 0)
	if got, want := c.Addrs(), []int{5, 0}; !slices.Equal(got, want) {
		t.Errorf("Addrs() = %v, want %v", got, want)
	}
}
