package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/lamp-controller/internal/logic"
)

const (
	// offlineCapacity is how many messages are kept while the broker is unreachable.
	offlineCapacity = 100
	connectTimeout  = 10 * time.Second
	publishTimeout  = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu    sync.Mutex
	queue *offlineQueue
}

// NewRealPublisher creates a publisher for the given broker. An unreachable
// broker is not fatal: paho keeps retrying in the background and messages
// are buffered until the first connection succeeds.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{queue: newOfflineQueue(offlineCapacity)}

	will, err := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, buffering until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a lamp status event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	m, err := LampMessage(event)
	if err != nil {
		return err
	}
	if err := p.send(m); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	m, err := SystemMessage(event)
	if err != nil {
		return err
	}
	if err := p.send(m); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// send queues m while the connection is down, otherwise hands it to paho.
// It never waits for the broker: the outcome is logged by watch.
func (p *RealPublisher) send(m Message) error {
	// The connection check and the push happen under the lock that
	// onConnect drains under, so nothing is queued after the replay.
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.queue.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	watch(p.client.Publish(m.Topic, m.QoS, m.Retained, m.Payload), m.Topic)
	return nil
}

// watch logs a failed or timed out publish from its own goroutine.
func watch(token paho.Token, topic string) {
	go func() {
		if err := wait(token); err != nil {
			log.Printf("mqtt: publish on %s: %v", topic, err)
		}
	}()
}

func wait(token paho.Token) error {
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("timeout")
	}
	return token.Error()
}

// onConnect replays messages queued while disconnected. Runs on a paho goroutine.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	msgs := p.queue.drain()
	p.mu.Unlock()

	log.Printf("mqtt: connected, replaying %d queued message(s)", len(msgs))
	for _, m := range msgs {
		if err := wait(c.Publish(m.Topic, m.QoS, m.Retained, m.Payload)); err != nil {
			log.Printf("mqtt: replay on %s: %v", m.Topic, err)
		}
	}
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker, giving in-flight publishes such as
// the SHUTDOWN event up to a second to complete.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
