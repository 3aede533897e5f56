package logic

import "strings"

// Line prefixes of the inbound serial protocol.
const (
	PrefixCommand      = "CMD:"
	PrefixLight        = "LIGHT:"
	PrefixConnectivity = "WIFI:"
	PrefixMQTT         = "MQTT:"
)

// Command is a parsed inbound line. The concrete types are SetMode,
// SetManual, ReportLight, ReportConnectivity, Informational and
// Unrecognized.
type Command interface {
	command()
}

// SetMode switches the lamp to automatic mode.
type SetMode struct{}

// SetManual switches to manual mode and forces the lamp status.
type SetManual struct {
	Status LampStatus
}

// ReportLight carries an ambient light report.
type ReportLight struct {
	Raw string
}

// ReportConnectivity carries the peer's WiFi state.
type ReportConnectivity struct {
	Raw string
}

// Informational is diagnostic text from the peer's MQTT client.
type Informational struct {
	Text string
}

// Unrecognized is any line outside the grammar.
type Unrecognized struct {
	Line string
}

func (SetMode) command()            {}
func (SetManual) command()          {}
func (ReportLight) command()        {}
func (ReportConnectivity) command() {}
func (Informational) command()      {}
func (Unrecognized) command()       {}

// Parse classifies a trimmed line. Prefixes are case-sensitive and
// checked in protocol priority order.
func Parse(line string) Command {
	switch {
	case strings.HasPrefix(line, PrefixCommand):
		switch strings.TrimSpace(line[len(PrefixCommand):]) {
		case "AUTO":
			return SetMode{}
		case "1":
			return SetManual{Status: StatusOn}
		case "0":
			return SetManual{Status: StatusOff}
		}
		return Unrecognized{Line: line}
	case strings.HasPrefix(line, PrefixLight):
		return ReportLight{Raw: strings.TrimSpace(line[len(PrefixLight):])}
	case strings.HasPrefix(line, PrefixConnectivity):
		return ReportConnectivity{Raw: strings.TrimSpace(line[len(PrefixConnectivity):])}
	case strings.HasPrefix(line, PrefixMQTT):
		return Informational{Text: line[len(PrefixMQTT):]}
	}
	return Unrecognized{Line: line}
}

// Reading returns the light reading the policy acts on. Anything other
// than "Dark" or "Light" is LightUnknown.
func (r ReportLight) Reading() LightReading {
	return ParseLight(r.Raw)
}

// ParseLight maps a LIGHT payload to a reading.
func ParseLight(raw string) LightReading {
	switch raw {
	case string(LightDark):
		return LightDark
	case string(LightLight):
		return LightLight
	}
	return LightUnknown
}

// Phase returns the normalized connectivity phase. RETRYING collapses to
// PhaseConnecting. ok is false for values outside the protocol.
func (r ReportConnectivity) Phase() (phase ConnectivityPhase, ok bool) {
	switch r.Raw {
	case "CONNECTED":
		return PhaseConnected, true
	case "CONNECTING", "RETRYING":
		return PhaseConnecting, true
	case "FAILED":
		return PhaseFailed, true
	}
	return "", false
}
