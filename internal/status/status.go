// Package status provides a thread-safe status tracker for the lamp-controller daemon.
// The control loop writes it; HTTP handlers and MQTT lifecycle events read it.
package status

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/lamp-controller/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	LampID      int
	Port        string
	Baud        int
	PollMs      int64
	BlinkMs     int64
	MaxLine     int
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Lamp          logic.State
	Indicator     bool
	Counts        logic.Counts
	LineOverflows int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	clock clockwork.Clock

	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker started at the clock's current time.
func NewTracker(clock clockwork.Clock, cfg Config) *Tracker {
	return &Tracker{
		clock: clock,
		snap: Snapshot{
			StartTime: clock.Now(),
			Config:    cfg,
		},
	}
}

// Update sets the controller state, indicator level and counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(lamp logic.State, indicator bool, counts logic.Counts, lineOverflows int) {
	t.mu.Lock()
	t.snap.Lamp = lamp
	t.snap.Indicator = indicator
	t.snap.Counts = counts
	t.snap.LineOverflows = lineOverflows
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the clock's time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.clock.Now()
	return s
}
