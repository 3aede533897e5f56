package uart

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each Read so the control loop never stalls on an
// idle link.
const readTimeout = time.Millisecond

// RealPort is a serial port opened through go.bug.st/serial.
type RealPort struct {
	port serial.Port
}

// Open opens path at the given baud rate, 8N1, with a short read timeout.
func Open(path string, baud int) (*RealPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}

	return &RealPort{port: port}, nil
}

// Read returns whatever bytes arrived within the read timeout.
func (p *RealPort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write sends b to the peer.
func (p *RealPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close releases the port.
func (p *RealPort) Close() error {
	return p.port.Close()
}

// ListPorts returns the serial ports present on this machine.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
