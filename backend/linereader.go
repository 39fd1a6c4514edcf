package backend

import (
	"bufio"
	"io"
)

// lineReader only ever yields whole newline-terminated lines. A definition
// file that is still being appended to can then be parsed without seeing
// half-written rows: the partial tail is held back until its newline lands.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
}

var _ io.Reader = (*lineReader)(nil)

func NewLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

// Read returns io.EOF whenever the underlying reader runs out before a
// newline. Reading again after more data arrives picks up the held tail.
func (l *lineReader) Read(b []byte) (int, error) {
	data, err := l.r.ReadBytes('\n')
	if err != nil {
		l.partial = append(l.partial, data...)
		return 0, io.EOF
	}
	var n int
	if len(l.partial) > 0 {
		n = copy(b, l.partial)
		l.partial = l.partial[:copy(l.partial, l.partial[n:])]
		b = b[n:]
	}
	return n + copy(b, data), nil
}
