package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/lamp-controller/internal/gpio"
	"github.com/sweeney/lamp-controller/internal/logic"
	"github.com/sweeney/lamp-controller/internal/mqtt"
	"github.com/sweeney/lamp-controller/internal/status"
	"github.com/sweeney/lamp-controller/internal/uart"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// pipeline wires the pure core to fake devices the way the daemon does.
type pipeline struct {
	port       *uart.FakePort
	lamp       *gpio.FakeLamp
	publisher  *mqtt.FakePublisher
	framer     *logic.Framer
	controller *logic.Controller
	emitter    *uart.Emitter
}

func newPipeline(chunks ...[]byte) *pipeline {
	port := uart.NewFakePort(chunks...)
	return &pipeline{
		port:       port,
		lamp:       gpio.NewFakeLamp(),
		publisher:  mqtt.NewFakePublisher(),
		framer:     logic.NewFramer(512),
		controller: logic.NewController(),
		emitter:    uart.NewEmitter(port),
	}
}

// step drains the port once and runs automatic control, as one loop tick.
func (p *pipeline) step(t *testing.T, now time.Time) {
	t.Helper()
	buf := make([]byte, 64)
	var events []logic.Event
	for {
		n, err := p.port.Read(buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if n == 0 {
			break
		}
		for _, line := range p.framer.Feed(buf[:n]) {
			events = append(events, p.controller.Apply(logic.Parse(line), now)...)
		}
	}
	events = append(events, p.controller.Evaluate(now)...)

	for _, ev := range events {
		if err := p.lamp.SetColor(gpio.LampColor(ev.Status == logic.StatusOn)); err != nil {
			t.Fatalf("lamp: %v", err)
		}
		if err := p.emitter.Emit(ev.Status); err != nil {
			t.Fatalf("emit: %v", err)
		}
		// Mirror failures never stop the lamp.
		p.publisher.Publish(ev)
	}
}

// TestIntegrationFullFlow tests the complete flow from serial input to lamp,
// serial output and MQTT using fakes.
func TestIntegrationFullFlow(t *testing.T) {
	p := newPipeline(
		[]byte("WIFI:CONNECTING\nLIGHT:Li"), []byte("ght\n"), nil, // tick 0
		[]byte("LIGHT:Dark\r\n"), nil, // tick 1
		[]byte("CMD:0\n"), nil, // tick 2
		[]byte("LIGHT:Light\nCMD:AUTO\n"), nil, // tick 3
	)

	for i := 0; i < 4; i++ {
		p.step(t, startTime.Add(time.Duration(i)*10*time.Millisecond))
	}

	want := []string{"PUB:ON", "PUB:OFF", "PUB:OFF"}
	got := p.port.Lines()
	if len(got) != len(want) {
		t.Fatalf("serial output: got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}

	wantReasons := []logic.EventReason{logic.ReasonAutoOn, logic.ReasonManualOff, logic.ReasonModeAuto}
	if len(p.publisher.Events) != len(wantReasons) {
		t.Fatalf("expected %d events, got %d", len(wantReasons), len(p.publisher.Events))
	}
	for i, want := range wantReasons {
		if p.publisher.Events[i].Reason != want {
			t.Errorf("event %d: got %s, want %s", i, p.publisher.Events[i].Reason, want)
		}
	}

	wantColors := []gpio.Color{gpio.ColorOn, gpio.ColorOff, gpio.ColorOff}
	for i, want := range wantColors {
		if p.lamp.Colors[i] != want {
			t.Errorf("lamp write %d: got %+v, want %+v", i, p.lamp.Colors[i], want)
		}
	}

	// Verify JSON payloads
	for i, payload := range p.publisher.Payloads() {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Lamp.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Lamp.Status != string(p.publisher.Events[i].Status) {
			t.Errorf("payload %d: status %q, want %q", i, parsed.Lamp.Status, p.publisher.Events[i].Status)
		}
	}

	// Already light and already off: returning to auto emits once and no
	// automatic event follows.
	if s := p.controller.State(); s.Mode != logic.ModeAuto || s.Status != logic.StatusOff {
		t.Errorf("final state: got %s/%s, want AUTO/OFF", s.Mode, s.Status)
	}
}

// TestIntegrationNoEmissionWithoutReading verifies the lamp stays untouched
// until a light reading arrives.
func TestIntegrationNoEmissionWithoutReading(t *testing.T) {
	p := newPipeline([]byte("WIFI:CONNECTED\nMQTT:up\n"), nil)
	p.step(t, startTime)

	if len(p.publisher.Events) != 0 {
		t.Errorf("expected no events, got %d", len(p.publisher.Events))
	}
	if p.port.Written.Len() != 0 {
		t.Errorf("expected no serial output, got %q", p.port.Written.String())
	}
	if len(p.lamp.Colors) != 0 {
		t.Errorf("expected no lamp writes, got %d", len(p.lamp.Colors))
	}
}

// TestIntegrationPublishFailureDoesNotStopLamp verifies the MQTT mirror is
// best effort.
func TestIntegrationPublishFailureDoesNotStopLamp(t *testing.T) {
	p := newPipeline([]byte("CMD:1\n"), nil)
	p.publisher.PublishError = errors.New("broker down")
	p.step(t, startTime)

	if p.lamp.Current() != gpio.ColorOn {
		t.Errorf("lamp: got %+v, want on", p.lamp.Current())
	}
	if got := p.port.Lines(); len(got) != 1 || got[0] != "PUB:ON" {
		t.Errorf("serial output: got %q", got)
	}
}

// TestIntegrationStartupThenShutdown verifies lifecycle events carry the
// tracker snapshot.
func TestIntegrationStartupThenShutdown(t *testing.T) {
	clock := clockwork.NewFakeClockAt(startTime)
	tracker := status.NewTracker(clock, status.Config{LampID: 2, Broker: "tcp://localhost:1883"})
	publisher := mqtt.NewFakePublisher()

	snap := tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		t.Fatalf("startup: %v", err)
	}

	c := logic.NewController()
	c.Apply(logic.Parse("CMD:1"), startTime)
	tracker.Update(c.State(), true, c.Counts(), 0)
	clock.Advance(time.Minute)

	snap = tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	}); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if len(publisher.SystemPayloads()) != 2 {
		t.Fatalf("expected 2 system payloads, got %d", len(publisher.SystemPayloads()))
	}

	var startup, shutdown status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads()[0], &startup); err != nil {
		t.Fatalf("startup payload: %v", err)
	}
	if err := json.Unmarshal(publisher.SystemPayloads()[1], &shutdown); err != nil {
		t.Fatalf("shutdown payload: %v", err)
	}

	if startup.Status.Event != "STARTUP" || startup.Status.Config.LampID != 2 {
		t.Errorf("startup: got %+v", startup.Status)
	}
	if shutdown.Status.Event != "SHUTDOWN" || shutdown.Status.Reason != "SIGTERM" {
		t.Errorf("shutdown: got event=%q reason=%q", shutdown.Status.Event, shutdown.Status.Reason)
	}
	if shutdown.Status.Mode != "MANUAL" || shutdown.Status.Lamp != "ON" {
		t.Errorf("shutdown state: got %s/%s", shutdown.Status.Mode, shutdown.Status.Lamp)
	}
	if shutdown.Status.UptimeSeconds != 60 {
		t.Errorf("shutdown uptime: got %d, want 60", shutdown.Status.UptimeSeconds)
	}
}
