// Package uart provides the serial link to the networking peer.
// The real implementation uses go.bug.st/serial.
// The fake implementation allows testing without hardware.
package uart

import "io"

// Port is a polled serial port. Read must not block for longer than a
// short timeout; it returns (0, nil) when no data is available.
type Port interface {
	io.Reader
	io.Writer
	io.Closer
}

// Link defaults
const (
	DefaultPath = "/dev/serial0"
	DefaultBaud = 9600
)
