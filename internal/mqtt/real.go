package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/truck-scale/internal/logic"
)

// OutboxCapacity is how many messages are kept while the broker is unreachable.
const OutboxCapacity = 100

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt: publish timeout")

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are held in an outbox and replayed, oldest first, on reconnect.
type RealPublisher struct {
	client paho.Client
	log    logrus.FieldLogger

	mu     sync.Mutex
	outbox *outbox
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background; a broker that is down at start-up does not
// prevent the daemon from running.
func NewRealPublisher(broker, clientID string, log logrus.FieldLogger) *RealPublisher {
	p := &RealPublisher{
		log:    log,
		outbox: newOutbox(OutboxCapacity, log),
	}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "MQTT_DISCONNECT"})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warnf("connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	pending, dropped := p.outbox.take()
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Warnf("connected, %d messages were dropped while offline", dropped)
	}
	p.log.Infof("connected, replaying %d pending messages", len(pending))
	for _, m := range pending {
		if err := p.send(m); err != nil {
			p.log.Warnf("replay to %s failed: %v", m.topic, err)
		}
	}
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

func (p *RealPublisher) send(m pendingMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return ErrPublishTimeout
	}
	return token.Error()
}

func (p *RealPublisher) publish(m pendingMsg) error {
	if !p.client.IsConnectionOpen() {
		p.hold(m)
		return nil
	}
	if err := p.send(m); err != nil {
		p.hold(m)
		return err
	}
	return nil
}

func (p *RealPublisher) hold(m pendingMsg) {
	p.mu.Lock()
	p.outbox.add(m)
	p.mu.Unlock()
}

// Pending returns the number of messages waiting for the broker.
func (p *RealPublisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Publish sends a scale event. QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	if err := p.publish(pendingMsg{topic: Topic, payload: payload}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event. QoS 1 so shutdown is delivered.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	if err := p.publish(pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained, latestOnly: true}); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
