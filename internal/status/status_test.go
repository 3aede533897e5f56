package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/lamp-controller/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		LampID:      3,
		Port:        "/dev/serial0",
		Baud:        9600,
		PollMs:      10,
		BlinkMs:     250,
		MaxLine:     512,
		HeartbeatMs: 900000,
		Broker:      "tcp://localhost:1883",
		HTTPAddr:    ":80",
	}
}

func TestNewTracker(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	tr := NewTracker(clock, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.LampID != 3 {
		t.Errorf("Config.LampID: got %d, want 3", snap.Config.LampID)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.Indicator {
		t.Error("expected Indicator=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), Config{})

	lamp := logic.State{Mode: logic.ModeManual, Status: logic.StatusOn, Light: logic.LightDark, Phase: logic.PhaseConnected}
	tr.Update(lamp, true, logic.Counts{Commands: 4, Emissions: 2}, 1)

	snap := tr.Snapshot()
	if snap.Lamp != lamp {
		t.Errorf("Lamp: got %+v, want %+v", snap.Lamp, lamp)
	}
	if !snap.Indicator {
		t.Error("expected Indicator=true")
	}
	if snap.Counts.Commands != 4 || snap.Counts.Emissions != 2 {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
	if snap.LineOverflows != 1 {
		t.Errorf("LineOverflows: got %d, want 1", snap.LineOverflows)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	tr := NewTracker(clock, Config{})

	clock.Advance(90 * time.Minute)

	snap := tr.Snapshot()
	if snap.Uptime() != 90*time.Minute {
		t.Errorf("Uptime: got %v, want 90m", snap.Uptime())
	}
	if !snap.Now.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("Now: got %v", snap.Now)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), Config{})
	tr.Update(logic.State{Status: logic.StatusOn}, false, logic.Counts{}, 0)

	snap := tr.Snapshot()
	tr.Update(logic.State{Status: logic.StatusOff}, false, logic.Counts{}, 0)

	if snap.Lamp.Status != logic.StatusOn {
		t.Errorf("snapshot changed after update: got %s", snap.Lamp.Status)
	}
}

func TestFormatJSON(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start)
	tr := NewTracker(clock, testConfig())
	tr.Update(logic.State{
		Mode:     logic.ModeAuto,
		Status:   logic.StatusOn,
		Light:    logic.LightDark,
		LightRaw: "Dark",
		Phase:    logic.PhaseConnecting,
		PeerMQTT: "Connected",
	}, true, logic.Counts{Commands: 5, Unrecognized: 1, Emissions: 2, AutoOn: 1}, 2)
	tr.SetMQTTConnected(true)
	clock.Advance(65 * time.Second)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Event != "" || s.Reason != "" {
		t.Errorf("web JSON should have no event/reason, got %q/%q", s.Event, s.Reason)
	}
	if s.Mode != "AUTO" || s.Lamp != "ON" || s.Light != "Dark" || s.WiFi != "CONNECTING" {
		t.Errorf("state: got mode=%s lamp=%s light=%s wifi=%s", s.Mode, s.Lamp, s.Light, s.WiFi)
	}
	if !s.Indicator {
		t.Error("expected indicator=true")
	}
	if s.PeerMQTT != "Connected" {
		t.Errorf("PeerMQTT: got %q", s.PeerMQTT)
	}
	if s.UptimeSeconds != 65 {
		t.Errorf("UptimeSeconds: got %d, want 65", s.UptimeSeconds)
	}
	if s.StartTime != "2026-01-01T00:00:00Z" {
		t.Errorf("StartTime: got %s", s.StartTime)
	}
	if s.Timestamp != "2026-01-01T00:01:05Z" {
		t.Errorf("Timestamp: got %s", s.Timestamp)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Counts.Commands != 5 || s.Counts.Unrecognized != 1 || s.Counts.LineOverflows != 2 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if s.Config.LampID != 3 || s.Config.Baud != 9600 || s.Config.MaxLine != 512 {
		t.Errorf("Config: got %+v", s.Config)
	}
}

func TestFormatJSONUnknownLight(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), Config{})
	tr.Update(logic.State{Mode: logic.ModeAuto, Status: logic.StatusOff, LightRaw: "Dusk"}, false, logic.Counts{}, 0)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Light != "UNKNOWN" {
		t.Errorf("Light: got %q, want UNKNOWN", parsed.Status.Light)
	}
	if parsed.Status.LightRaw != "Dusk" {
		t.Errorf("LightRaw: got %q, want Dusk", parsed.Status.LightRaw)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), testConfig())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	tr := NewTracker(clockwork.NewFakeClockAt(start), Config{})

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "STARTUP", ""), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["status"]["reason"]; exists {
		t.Error("reason field should be omitted for startup events")
	}
	if parsed["status"]["event"] != "STARTUP" {
		t.Errorf("event: got %v", parsed["status"]["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(clockwork.NewRealClock(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.State{Status: logic.StatusOn}, i%2 == 0, logic.Counts{Commands: i}, 0)
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
