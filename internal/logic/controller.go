package logic

import "time"

// Controller holds the lamp state block and applies the lamp policy.
// Not safe for concurrent use; the control loop owns it.
type Controller struct {
	state  State
	counts Counts
}

// NewController creates a controller in its power-on state: automatic
// mode, lamp off, no light reading, WiFi connecting.
func NewController() *Controller {
	return &Controller{
		state: State{
			Mode:   ModeAuto,
			Status: StatusOff,
			Light:  LightUnknown,
			Phase:  PhaseConnecting,
		},
	}
}

// Apply applies a parsed command and returns the resulting emissions.
// Mode commands always emit, even when the status is unchanged.
func (c *Controller) Apply(cmd Command, now time.Time) []Event {
	switch cmd := cmd.(type) {
	case SetMode:
		c.counts.Commands++
		c.state.Mode = ModeAuto
		return c.emit(now, ReasonModeAuto)

	case SetManual:
		c.counts.Commands++
		c.state.Mode = ModeManual
		c.state.Status = cmd.Status
		if cmd.Status == StatusOn {
			return c.emit(now, ReasonManualOn)
		}
		return c.emit(now, ReasonManualOff)

	case ReportLight:
		c.counts.Commands++
		c.state.LightRaw = cmd.Raw
		c.state.Light = cmd.Reading()
		return nil

	case ReportConnectivity:
		phase, ok := cmd.Phase()
		if !ok {
			c.counts.Unrecognized++
			return nil
		}
		c.counts.Commands++
		c.state.Phase = phase
		return nil

	case Informational:
		c.counts.Commands++
		c.state.PeerMQTT = cmd.Text
		return nil

	case Unrecognized:
		c.counts.Unrecognized++
		return nil
	}
	return nil
}

// Evaluate runs automatic lamp control. It only emits on an actual
// status change, and does nothing in manual mode or without a reading.
func (c *Controller) Evaluate(now time.Time) []Event {
	if c.state.Mode != ModeAuto {
		return nil
	}

	switch c.state.Light {
	case LightDark:
		if c.state.Status != StatusOn {
			c.state.Status = StatusOn
			c.counts.AutoOn++
			return c.emit(now, ReasonAutoOn)
		}
	case LightLight:
		if c.state.Status != StatusOff {
			c.state.Status = StatusOff
			c.counts.AutoOff++
			return c.emit(now, ReasonAutoOff)
		}
	}
	return nil
}

func (c *Controller) emit(now time.Time, reason EventReason) []Event {
	c.counts.Emissions++
	return []Event{{
		Timestamp: now,
		Reason:    reason,
		Status:    c.state.Status,
		Mode:      c.state.Mode,
	}}
}

// State returns a copy of the current state block.
func (c *Controller) State() State {
	return c.state
}

// Counts returns a copy of the activity counters.
func (c *Controller) Counts() Counts {
	return c.counts
}
