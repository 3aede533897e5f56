// Package gpio drives the lamp and status indicator outputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Color is an RGB lamp color at full or zero intensity per channel.
type Color struct {
	R, G, B bool
}

// Lamp colors
var (
	// ColorOn is the lamp's lit color: red and blue mixed (purple).
	ColorOn  = Color{R: true, B: true}
	ColorOff = Color{}
)

// Lamp drives the tri-channel lamp output.
type Lamp interface {
	// SetColor drives all three channels.
	SetColor(c Color) error

	// Close turns the lamp off and releases GPIO resources.
	Close() error
}

// Indicator drives the single WiFi status output.
type Indicator interface {
	Set(on bool) error
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinR      = 5
	DefaultPinG      = 6
	DefaultPinB      = 7
	DefaultPinStatus = 17
)

// LampColor returns the color for the given lit state.
func LampColor(on bool) Color {
	if on {
		return ColorOn
	}
	return ColorOff
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
