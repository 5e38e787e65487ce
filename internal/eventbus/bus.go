// Package eventbus distributes unit state changes to in-process subscribers.
//
// Bus implements automation.EventBus. Delivery is synchronous and in
// registration order; a slow subscriber delays the unit that published.
// Subscribers that need to do I/O off the hot path should hand events to
// their own goroutine (the WebSocket hub does this through its send queues).
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

var (
	// ErrDuplicateSubscriber is returned when subscribing a name twice.
	ErrDuplicateSubscriber = errors.New("eventbus: subscriber already registered")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("eventbus: handler cannot be nil")
)

// Handler receives published events.
type Handler func(ctx context.Context, ev automation.Event) error

// Logger is the logging interface used by the bus.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type subscriber struct {
	name    string
	handler Handler
}

// Bus is an in-process fan-out of unit events.
type Bus struct {
	subs   []subscriber
	mu     sync.RWMutex
	logger Logger
}

// New creates a bus with no subscribers.
func New() *Bus {
	return &Bus{}
}

// SetLogger sets a logger for handler errors and panics.
func (b *Bus) SetLogger(logger Logger) {
	b.mu.Lock()
	b.logger = logger
	b.mu.Unlock()
}

// Subscribe registers a named handler.
func (b *Bus) Subscribe(name string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		if s.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateSubscriber, name)
		}
	}
	b.subs = append(b.subs, subscriber{name: name, handler: h})
	return nil
}

// Unsubscribe removes the named handler. Reports whether it existed.
func (b *Bus) Unsubscribe(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.name == name {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribers returns subscriber names in delivery order.
func (b *Bus) Subscribers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.subs))
	for i, s := range b.subs {
		names[i] = s.name
	}
	return names
}

// Publish delivers ev to every subscriber. Handler errors and panics are
// logged and never stop delivery to later subscribers.
func (b *Bus) Publish(ctx context.Context, ev automation.Event) error {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	logger := b.logger
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(ctx, s, ev, logger)
	}
	return nil
}

func deliver(ctx context.Context, s subscriber, ev automation.Event, logger Logger) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("event handler panic recovered",
				"subscriber", s.name,
				"instance_id", ev.InstanceID,
				"panic", r,
			)
		}
	}()

	if err := s.handler(ctx, ev); err != nil && logger != nil {
		logger.Warn("event handler returned error",
			"subscriber", s.name,
			"instance_id", ev.InstanceID,
			"error", err,
		)
	}
}
