// Package logic contains the pure lamp-controller core: line framing,
// command parsing, lamp policy and indicator blinking.
// This package has NO external dependencies (no GPIO, serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// LampMode selects what drives the lamp status.
type LampMode string

const (
	ModeAuto   LampMode = "AUTO"
	ModeManual LampMode = "MANUAL"
)

// LampStatus is the actuated state of the lamp.
type LampStatus string

const (
	StatusOn  LampStatus = "ON"
	StatusOff LampStatus = "OFF"
)

// LightReading is the last ambient light report from the peer.
type LightReading string

const (
	LightUnknown LightReading = ""
	LightDark    LightReading = "Dark"
	LightLight   LightReading = "Light"
)

// ConnectivityPhase is the peer's reported WiFi link state.
type ConnectivityPhase string

const (
	PhaseConnected  ConnectivityPhase = "CONNECTED"
	PhaseConnecting ConnectivityPhase = "CONNECTING"
	PhaseFailed     ConnectivityPhase = "FAILED"
)

// EventReason names why a status emission happened.
type EventReason string

const (
	ReasonModeAuto  EventReason = "MODE_AUTO"
	ReasonManualOn  EventReason = "MANUAL_ON"
	ReasonManualOff EventReason = "MANUAL_OFF"
	ReasonAutoOn    EventReason = "AUTO_ON"
	ReasonAutoOff   EventReason = "AUTO_OFF"
)

// Event is a lamp status emission. The lamp must be actuated to Status
// and the status sent to the peer.
type Event struct {
	Timestamp time.Time
	Reason    EventReason
	Status    LampStatus
	Mode      LampMode
}

// State is the controller's state block.
type State struct {
	Mode   LampMode
	Status LampStatus
	Light  LightReading
	// LightRaw is the last LIGHT payload as received, including values
	// the policy does not recognise.
	LightRaw string
	Phase    ConnectivityPhase
	// PeerMQTT is the last informational MQTT note from the peer.
	PeerMQTT string
}

// Counts tracks controller activity since startup.
type Counts struct {
	Commands     int
	Unrecognized int
	Emissions    int
	AutoOn       int
	AutoOff      int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
