package prefilter

import (
	"bytes"
	"testing"

	"github.com/coregx/lexvm/literal"
)

func BenchmarkPrefilter_Find(b *testing.B) {
	haystack := append(bytes.Repeat([]byte("0123456789 +-*/ "), 256), "return"...)

	prefilters := []struct {
		name string
		seq  *literal.Seq
	}{
		{"byteset", seqOf(true, "r", "+")},
		{"memmem", seqOf(true, "return")},
		{"ahocorasick", seqOf(true, "return", "if", "else", "for", "while")},
		{"overlap-fallback", seqOf(true, "return", "tu", "for")},
	}

	for _, p := range prefilters {
		pf := NewBuilder(p.seq).Build()
		b.Run(p.name, func(b *testing.B) {
			b.SetBytes(int64(len(haystack)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				pf.Find(haystack, 0)
			}
		})
	}
}

func BenchmarkTracker_Next(b *testing.B) {
	pf := NewBuilder(seqOf(true, "x")).Build()
	haystack := bytes.Repeat([]byte("....x"), 64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr := NewTracker(pf)
		for pos := tr.Next(haystack, 0); pos >= 0; pos = tr.Next(haystack, pos+1) {
			tr.Confirm()
		}
	}
}
