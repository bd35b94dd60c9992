package mqtt

import (
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/float-alarm/internal/logic"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

// stubClient reports the scripted connection states in order, then the last
// one forever. Methods not overridden panic through the nil embedded Client.
type stubClient struct {
	paho.Client

	mu        sync.Mutex
	states    []bool
	published []string
}

func (c *stubClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	open := c.states[0]
	if len(c.states) > 1 {
		c.states = c.states[1:]
	}
	return open
}

func (c *stubClient) Publish(topic string, _ byte, _ bool, _ interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, topic)
	c.mu.Unlock()
	return doneToken{}
}

func TestSendBuffersWhileOffline(t *testing.T) {
	client := &stubClient{states: []bool{false}}
	p := &RealPublisher{client: client, buffer: newRingBuffer(4)}

	if err := p.Publish(logic.Event{Type: logic.EventOverflow}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.published) != 0 {
		t.Errorf("published while offline: %v", client.published)
	}
	if p.buffer.len() != 1 {
		t.Errorf("buffered: got %d, want 1", p.buffer.len())
	}

	client.states = []bool{true}
	p.flush()
	if len(client.published) != 1 || client.published[0] != Topic {
		t.Errorf("replayed: got %v", client.published)
	}
}

func TestSendReplaysWhenConnectRacesPush(t *testing.T) {
	// Offline at the check, online by the time the message is buffered: the
	// connect handler has already drained an empty buffer.
	client := &stubClient{states: []bool{false, true}}
	p := &RealPublisher{client: client, buffer: newRingBuffer(4)}

	if err := p.Publish(logic.Event{Type: logic.EventSafe}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.buffer.len() != 0 {
		t.Errorf("message left in buffer: %d", p.buffer.len())
	}
	if len(client.published) != 1 {
		t.Errorf("published: got %v, want one message", client.published)
	}
}
