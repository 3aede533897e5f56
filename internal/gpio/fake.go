package gpio

// FakeLamp is a test double that records lamp writes.
type FakeLamp struct {
	// Colors contains every color written, in order.
	Colors []Color

	// SetError, if set, will be returned by SetColor()
	SetError error

	// Failures maps a SetColor call number, counting from 1, to the error
	// that call returns.
	Failures map[int]error

	// Closed tracks if Close was called
	Closed bool

	calls int
}

// NewFakeLamp creates a FakeLamp.
func NewFakeLamp() *FakeLamp {
	return &FakeLamp{}
}

// SetColor records c.
func (f *FakeLamp) SetColor(c Color) error {
	f.calls++
	if err := f.Failures[f.calls]; err != nil {
		return err
	}
	if f.SetError != nil {
		return f.SetError
	}
	f.Colors = append(f.Colors, c)
	return nil
}

// Current returns the last color written, or ColorOff if none.
func (f *FakeLamp) Current() Color {
	if len(f.Colors) == 0 {
		return ColorOff
	}
	return f.Colors[len(f.Colors)-1]
}

// Close marks the lamp as closed.
func (f *FakeLamp) Close() error {
	f.Closed = true
	return nil
}

// FakeIndicator is a test double that records indicator writes.
type FakeIndicator struct {
	// Levels contains every level written, in order.
	Levels []bool

	// SetError, if set, will be returned by Set()
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeIndicator creates a FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Set records the level.
func (f *FakeIndicator) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Levels = append(f.Levels, on)
	return nil
}

// Current returns the last level written, or false if none.
func (f *FakeIndicator) Current() bool {
	if len(f.Levels) == 0 {
		return false
	}
	return f.Levels[len(f.Levels)-1]
}

// Close marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.Closed = true
	return nil
}
