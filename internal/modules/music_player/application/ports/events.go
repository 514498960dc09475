package ports

import (
	"context"
	"reflect"

	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// EventPublisher hands engine events to the bridge without blocking the engine.
// Events of one room are delivered in the order they were published.
type EventPublisher interface {
	Publish(event domain.Event) error
}

// EventSubscriber registers a handler for one concrete event type.
type EventSubscriber interface {
	Subscribe(eventType reflect.Type, handler func(context.Context, domain.Event)) error
}
