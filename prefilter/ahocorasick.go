package prefilter

import (
	"strconv"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/lexvm/literal"
)

// ahoCorasickPrefilter searches for many literals at once.
type ahoCorasickPrefilter struct {
	auto     *ahocorasick.Automaton
	patterns int
	bytes    int
	complete bool
}

// newAhoCorasickPrefilter returns nil if the automaton cannot be built.
func newAhoCorasickPrefilter(seq *literal.Seq, complete bool) Prefilter {
	builder := ahocorasick.NewBuilder()
	total := 0
	for _, lit := range seq.Literals() {
		builder.AddPattern(lit.Bytes)
		total += lit.Len()
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{
		auto:     auto,
		patterns: seq.Len(),
		bytes:    total,
		complete: complete,
	}
}

// Find implements Prefilter.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete implements Prefilter.
func (p *ahoCorasickPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter. The automaton does not report its size;
// this is the pattern bytes it was built from.
func (p *ahoCorasickPrefilter) HeapBytes() int {
	return p.bytes
}

func (p *ahoCorasickPrefilter) String() string {
	return "ahocorasick(" + strconv.Itoa(p.patterns) + ")"
}
