package logic

import (
	"bytes"
	"strings"
)

// Framer splits a serial byte stream into trimmed, non-empty lines.
// Not safe for concurrent use.
type Framer struct {
	buf        []byte
	maxLine    int
	discarding bool // dropping bytes until the next newline
	overflows  int
}

// NewFramer creates a Framer. If maxLine > 0, a partial line longer than
// maxLine bytes is discarded along with the rest of that line.
// maxLine == 0 leaves the buffer unbounded.
func NewFramer(maxLine int) *Framer {
	return &Framer{maxLine: maxLine}
}

// Feed appends chunk to the buffer and returns every complete line in it.
// Invalid UTF-8 is dropped, surrounding whitespace is trimmed and empty
// lines are skipped. The trailing partial line is kept for the next call.
func (f *Framer) Feed(chunk []byte) []string {
	var lines []string

	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			f.appendPartial(chunk)
			break
		}

		f.appendPartial(chunk[:i])
		if !f.discarding {
			if line := decodeLine(f.buf); line != "" {
				lines = append(lines, line)
			}
		}
		f.discarding = false
		f.buf = f.buf[:0]
		chunk = chunk[i+1:]
	}

	return lines
}

// appendPartial adds bytes with no newline to the pending line, enforcing
// the length bound.
func (f *Framer) appendPartial(b []byte) {
	if f.discarding {
		return
	}
	f.buf = append(f.buf, b...)
	if f.maxLine > 0 && len(f.buf) > f.maxLine {
		f.buf = f.buf[:0]
		f.discarding = true
		f.overflows++
	}
}

// Pending returns the number of buffered bytes awaiting a newline.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Overflows returns how many over-long lines have been discarded.
func (f *Framer) Overflows() int {
	return f.overflows
}

func decodeLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}
