package nquads

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single N-Quads statement line; long IRI lists or
// literals in generated corpora can exceed bufio.Scanner's 64KiB default.
const maxLineBytes = 16 * 1024 * 1024

// Reader reads successive N-Quads statements off r, one per line, skipping
// blank and comment-only lines.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r as a Reader.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{sc: sc}
}

// Read returns the next statement, or io.EOF once the input is exhausted.
func (r *Reader) Read() (Quad, error) {
	for r.sc.Scan() {
		r.line++
		q, ok, err := newLineScanner(r.line, r.sc.Text()).parseStatement()
		if err != nil {
			return Quad{}, err
		}
		if ok {
			return q, nil
		}
	}
	if err := r.sc.Err(); err != nil {
		return Quad{}, err
	}
	return Quad{}, io.EOF
}

// ReadAll reads every statement off r until EOF.
func ReadAll(r io.Reader) ([]Quad, error) {
	rd := NewReader(r)
	var out []Quad
	for {
		q, err := rd.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
}
