package anchor

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/nodegrid/internal/ctxlog"
)

// Subscriber receives the values an event anchor emits.
type Subscriber func(ctx context.Context, value any) error

type subscription struct {
	id uint64
	fn Subscriber
}

// EventController is an event anchor with a subscriber set.
type EventController struct {
	*Controller

	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// NewEventController wraps an event anchor.
func NewEventController(a *Anchor, opts ...ControllerOption) *EventController {
	a.Direction = Event
	return &EventController{Controller: NewController(a, opts...)}
}

// Subscribe adds fn and returns a func that removes it again. Calling the
// returned func more than once is harmless.
func (e *EventController) Subscribe(fn Subscriber) (unsubscribe func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit stores value and then calls every subscriber in subscription order.
// A subscriber that fails or panics is logged and skipped; the rest still
// run. Emit returns the number of subscribers that failed.
func (e *EventController) Emit(ctx context.Context, value any) int {
	e.SetValue(value)

	e.mu.Lock()
	subs := append([]subscription(nil), e.subs...)
	e.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	failed := 0
	for _, s := range subs {
		if err := callSubscriber(ctx, s.fn, value); err != nil {
			failed++
			logger.Error("Event subscriber failed.", "event", e.ID(), "error", err)
		}
	}
	return failed
}

func callSubscriber(ctx context.Context, fn Subscriber, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return fn(ctx, value)
}

// Cleanup detaches every subscriber.
func (e *EventController) Cleanup() {
	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
}

// Subscribers returns the number of attached subscribers.
func (e *EventController) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
