package logic

import "time"

// DefaultBlinkInterval is the indicator toggle period while connecting.
const DefaultBlinkInterval = 250 * time.Millisecond

// Blinker drives the WiFi status indicator from the connectivity phase.
//
// The blink phase is free-running: lastToggle only advances on a toggle
// and is not realigned when the connectivity phase changes.
type Blinker struct {
	interval   time.Duration
	lastToggle time.Time
	blink      bool
	output     bool
}

// NewBlinker creates a Blinker whose first toggle is due one interval
// after start. The indicator starts off.
func NewBlinker(interval time.Duration, start time.Time) *Blinker {
	return &Blinker{
		interval:   interval,
		lastToggle: start,
	}
}

// Update returns the indicator level for phase at now.
func (b *Blinker) Update(phase ConnectivityPhase, now time.Time) bool {
	switch phase {
	case PhaseConnected:
		b.output = true
	case PhaseFailed:
		b.output = false
	case PhaseConnecting:
		if now.Sub(b.lastToggle) >= b.interval {
			b.lastToggle = now
			b.blink = !b.blink
			b.output = b.blink
		}
	}
	return b.output
}

// Output returns the level produced by the last Update.
func (b *Blinker) Output() bool {
	return b.output
}
