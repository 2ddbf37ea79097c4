package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// ErrTimeout is returned when the broker does not confirm in time.
var ErrTimeout = errors.New("mqtt operation timed out")

// MQTTPublisher publishes over an MQTT connection at QoS 1.
type MQTTPublisher struct {
	client  paho.Client
	timeout time.Duration
}

// NewMQTTPublisher creates a publisher for brokerURL. It does not connect.
func NewMQTTPublisher(brokerURL, clientID string) *MQTTPublisher {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	return &MQTTPublisher{
		client:  paho.NewClient(opts),
		timeout: 10 * time.Second,
	}
}

// Connect connects to the broker, giving up after the publisher timeout.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	if err := p.wait(ctx, token); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Publish sends payload to topic and waits for the broker's ack.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.wait(ctx, p.client.Publish(topic, 1, false, payload))
}

func (p *MQTTPublisher) wait(ctx context.Context, token paho.Token) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect closes the connection, waiting up to one second for pending
// work.
func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(1000)
}

// IsConnected reports whether the client is connected.
func (p *MQTTPublisher) IsConnected() bool {
	return p.client.IsConnected()
}
