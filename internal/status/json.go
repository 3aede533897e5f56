package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Mode          string     `json:"mode"`
	Lamp          string     `json:"lamp"`
	Light         string     `json:"light"`
	LightRaw      string     `json:"light_raw,omitempty"`
	WiFi          string     `json:"wifi"`
	Indicator     bool       `json:"indicator"`
	PeerMQTT      string     `json:"peer_mqtt,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of controller counters.
type CountsJSON struct {
	Commands      int `json:"commands"`
	Unrecognized  int `json:"unrecognized"`
	Emissions     int `json:"emissions"`
	AutoOn        int `json:"auto_on"`
	AutoOff       int `json:"auto_off"`
	LineOverflows int `json:"line_overflows"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	LampID      int    `json:"lamp_id"`
	Port        string `json:"port"`
	Baud        int    `json:"baud"`
	PollMs      int64  `json:"poll_ms"`
	BlinkMs     int64  `json:"blink_ms"`
	MaxLine     int    `json:"max_line"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

// LightString returns the light reading for display.
func LightString(s Snapshot) string {
	if s.Lamp.Light == "" {
		return "UNKNOWN"
	}
	return string(s.Lamp.Light)
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:          string(snap.Lamp.Mode),
		Lamp:          string(snap.Lamp.Status),
		Light:         LightString(snap),
		LightRaw:      snap.Lamp.LightRaw,
		WiFi:          string(snap.Lamp.Phase),
		Indicator:     snap.Indicator,
		PeerMQTT:      snap.Lamp.PeerMQTT,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Commands:      snap.Counts.Commands,
			Unrecognized:  snap.Counts.Unrecognized,
			Emissions:     snap.Counts.Emissions,
			AutoOn:        snap.Counts.AutoOn,
			AutoOff:       snap.Counts.AutoOff,
			LineOverflows: snap.LineOverflows,
		},
		Config: ConfigJSON{
			LampID:      snap.Config.LampID,
			Port:        snap.Config.Port,
			Baud:        snap.Config.Baud,
			PollMs:      snap.Config.PollMs,
			BlinkMs:     snap.Config.BlinkMs,
			MaxLine:     snap.Config.MaxLine,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
