// Package eventbus carries run lifecycle events between the engine and its observers.
package eventbus

import (
	"context"

	"github.com/dukex/flowdeck/pkg/events"
)

// AnyEvent registers a handler for every event type without a handler of its own.
const AnyEvent events.EventType = "*"

type Event interface {
	GetType() events.EventType
}

// EventPublisher sends events keyed by run id. Events of one key are
// delivered in publish order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event, e.g. *events.NodeStarted.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
