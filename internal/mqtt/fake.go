package mqtt

import (
	"github.com/sweeney/lamp-controller/internal/logic"
)

// FakePublisher records what would have gone to the broker.
type FakePublisher struct {
	// Events and SystemEvents record accepted publishes.
	Events       []logic.Event
	SystemEvents []SystemEvent

	// Messages records every accepted publish as routed to the wire.
	Messages []Message

	// PublishError and PublishSystemError, if set, reject the publish.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the lamp event.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	m, err := LampMessage(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Messages = append(f.Messages, m)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	m, err := SystemMessage(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Messages = append(f.Messages, m)
	return nil
}

// Payloads returns the lamp event payloads in publish order.
func (f *FakePublisher) Payloads() [][]byte {
	return f.payloadsOn(Topic)
}

// SystemPayloads returns the system event payloads in publish order.
func (f *FakePublisher) SystemPayloads() [][]byte {
	return f.payloadsOn(TopicSystem)
}

func (f *FakePublisher) payloadsOn(topic string) [][]byte {
	var out [][]byte
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected returns f.Connected.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(logic.Event) error       { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }
