package input

import (
	"bufio"
	"io"
)

func bufioRuneReader(r io.Reader) io.RuneReader {
	return bufio.NewReader(r)
}
