package prefilter

import (
	"strconv"

	"github.com/coregx/lexvm/literal"
)

// byteSetPrefilter finds the next byte that starts some literal using a
// 256-entry membership table.
type byteSetPrefilter struct {
	table    [256]bool
	count    int
	complete bool
}

func newByteSetPrefilter(seq *literal.Seq, complete bool) Prefilter {
	p := &byteSetPrefilter{complete: complete}
	for _, lit := range seq.Literals() {
		b := lit.Bytes[0]
		if !p.table[b] {
			p.table[b] = true
			p.count++
		}
	}
	return p
}

// Find implements Prefilter.
func (p *byteSetPrefilter) Find(haystack []byte, start int) int {
	if start < 0 {
		return -1
	}
	for i := start; i < len(haystack); i++ {
		if p.table[haystack[i]] {
			return i
		}
	}
	return -1
}

// IsComplete implements Prefilter.
func (p *byteSetPrefilter) IsComplete() bool {
	return p.complete
}

// HeapBytes implements Prefilter.
func (p *byteSetPrefilter) HeapBytes() int {
	return len(p.table)
}

func (p *byteSetPrefilter) String() string {
	return "byteset(" + strconv.Itoa(p.count) + ")"
}
