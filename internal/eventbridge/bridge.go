package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vk/nodegrid/internal/cards"
	"github.com/vk/nodegrid/internal/ctxlog"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "nodegrid"

// Publisher sends one payload to one topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Message is the payload published for every emission.
type Message struct {
	Card  string `json:"card"`
	Event string `json:"event"`
	Value any    `json:"value"`
	TS    string `json:"ts"`
}

// Bridge subscribes to event anchors and publishes their emissions.
type Bridge struct {
	pub    Publisher
	prefix string
	now    func() time.Time

	mu     sync.Mutex
	unsubs []func()
}

// New creates a bridge publishing through pub under prefix.
func New(pub Publisher, prefix string) *Bridge {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Bridge{pub: pub, prefix: prefix, now: time.Now}
}

// Topic returns the topic of one event anchor.
func (b *Bridge) Topic(cardID, eventID string) string {
	return b.prefix + "/" + cardID + "/" + eventID
}

// Attach subscribes to every event anchor of every supported card and
// returns the number of subscriptions made.
func (b *Bridge) Attach(ctx context.Context, list []*cards.Card) int {
	logger := ctxlog.FromContext(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, card := range list {
		ctrl := card.Controller()
		if ctrl == nil {
			continue
		}
		cardID := card.ID().String()
		for _, ev := range ctrl.EventAnchors() {
			topic := b.Topic(cardID, ev.ID())
			eventID := ev.ID()
			unsub := ev.Subscribe(func(ctx context.Context, value any) error {
				return b.publish(ctx, topic, Message{Card: cardID, Event: eventID, Value: value})
			})
			b.unsubs = append(b.unsubs, unsub)
			n++
			logger.Debug("Event anchor bridged.", "card_id", cardID, "event", eventID, "topic", topic)
		}
	}
	return n
}

func (b *Bridge) publish(ctx context.Context, topic string, msg Message) error {
	msg.TS = b.now().UTC().Format(time.RFC3339Nano)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", topic, err)
	}
	if err := b.pub.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("publishing event %s: %w", topic, err)
	}
	return nil
}

// Close removes every subscription made by Attach.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}
