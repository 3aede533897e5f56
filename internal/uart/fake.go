package uart

import (
	"bytes"
	"strings"
)

// FakePort is a test double that returns scripted reads and records writes.
type FakePort struct {
	// Chunks contains scripted reads. Each call to Read() consumes the next
	// chunk; a nil chunk reads as "no data available". Once exhausted,
	// Read returns (0, nil).
	Chunks [][]byte

	// index tracks current position in Chunks
	index int

	// Written collects everything passed to Write.
	Written bytes.Buffer

	// ReadError, if set, will be returned by Read()
	ReadError error

	// WriteError, if set, will be returned by Write()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePort creates a FakePort with the given chunks.
func NewFakePort(chunks ...[]byte) *FakePort {
	return &FakePort{Chunks: chunks}
}

// Read copies the next scripted chunk into b. Chunks larger than b are
// split across calls.
func (f *FakePort) Read(b []byte) (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if f.index >= len(f.Chunks) {
		return 0, nil
	}

	chunk := f.Chunks[f.index]
	n := copy(b, chunk)
	if n < len(chunk) {
		f.Chunks[f.index] = chunk[n:]
	} else {
		f.index++
	}
	return n, nil
}

// Write records b.
func (f *FakePort) Write(b []byte) (int, error) {
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	return f.Written.Write(b)
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}

// Lines returns the written output split into lines, without terminators.
func (f *FakePort) Lines() []string {
	s := strings.TrimSuffix(f.Written.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
