package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/float-alarm/internal/logger"
	"github.com/sweeney/float-alarm/internal/logic"
)

const (
	bufferCapacity = 64
	publishTimeout = 2 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while the broker is unreachable are buffered and
// replayed on reconnect, so a publish never waits for Wi-Fi to come back.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. It connects in
// the background and returns immediately.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{buffer: newRingBuffer(bufferCapacity)}

	lwt, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventShutdown, Reason: "LWT"})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(lwt), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.flush() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warnf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// Publish sends a float transition to the broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.send(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	if p.client.IsConnectionOpen() {
		return p.publish(msg)
	}

	p.mu.Lock()
	p.buffer.push(msg)
	p.mu.Unlock()

	// The connect handler may have drained the buffer between the check
	// and the push.
	if p.client.IsConnectionOpen() {
		p.flush()
	}
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// flush replays buffered messages. Runs on paho's connect handler goroutine.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	logger.Infof("mqtt: connected, replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		if err := p.publish(m); err != nil {
			logger.Warnf("mqtt: replay failed: %v", err)
		}
	}
}
