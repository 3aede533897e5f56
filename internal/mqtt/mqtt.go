// Package mqtt mirrors lamp status emissions and lifecycle events to an
// MQTT broker, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/lamp-controller/internal/logic"
)

// Topic is the MQTT topic for lamp status events.
const Topic = "smartcity/lamp/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "smartcity/lamp/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a lamp status event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// QoS levels used by the publisher.
const (
	qosEvent  byte = 0 // at-most-once: the next emission supersedes a lost one
	qosSystem byte = 1 // at-least-once for lifecycle events
)

// Message is a serialized MQTT publish, ready for the wire or the offline buffer.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// LampMessage routes a lamp status event to Topic.
func LampMessage(event logic.Event) (Message, error) {
	payload, err := FormatPayload(event)
	if err != nil {
		return Message{}, fmt.Errorf("format payload: %w", err)
	}
	return Message{Topic: Topic, Payload: payload, QoS: qosEvent}, nil
}

// SystemMessage routes a lifecycle event to TopicSystem, retained when the
// event asks for it.
func SystemMessage(event SystemEvent) (Message, error) {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return Message{}, fmt.Errorf("format system payload: %w", err)
	}
	return Message{Topic: TopicSystem, Payload: payload, QoS: qosSystem, Retained: event.Retained}, nil
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Lamp LampPayload `json:"lamp"`
}

// LampPayload contains the lamp event details.
type LampPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Status    string `json:"status"`
	Mode      string `json:"mode"`
}

// FormatPayload creates the JSON payload for a lamp event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Lamp: LampPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Reason),
			Status:    string(event.Status),
			Mode:      string(event.Mode),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
