package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// ErrBusClosed is returned when publishing to or subscribing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

type eventHandler func(context.Context, domain.Event)

// mailbox holds the pending events of one room. At most one dispatcher goroutine
// drains it at a time, which keeps a room's events in publish order.
type mailbox struct {
	events  []domain.Event
	running bool
}

// ChannelEventBus delivers events to subscribers asynchronously.
// Events of the same room are handled one at a time in publish order, while
// different rooms are dispatched concurrently so a slow room never delays another.
type ChannelEventBus struct {
	mu        sync.Mutex
	handlers  map[reflect.Type][]eventHandler
	mailboxes map[snowflake.ID]*mailbox
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChannelEventBus creates a new ChannelEventBus.
func NewChannelEventBus() *ChannelEventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &ChannelEventBus{
		handlers:  make(map[reflect.Type][]eventHandler),
		mailboxes: make(map[snowflake.ID]*mailbox),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Publish queues the event for its room. It never blocks on handlers.
func (b *ChannelEventBus) Publish(event domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", reflect.TypeOf(event).Name())
		return ErrBusClosed
	}

	guildID := event.EventGuildID()
	box, ok := b.mailboxes[guildID]
	if !ok {
		box = &mailbox{}
		b.mailboxes[guildID] = box
	}
	box.events = append(box.events, event)

	if !box.running {
		box.running = true
		b.wg.Add(1)
		go b.dispatch(guildID, box)
	}

	slog.Debug("published event", "type", reflect.TypeOf(event).Name(), "guild", guildID)

	return nil
}

// dispatch drains a room's mailbox and exits once it is empty.
func (b *ChannelEventBus) dispatch(guildID snowflake.ID, box *mailbox) {
	defer b.wg.Done()

	for {
		b.mu.Lock()
		if len(box.events) == 0 {
			box.running = false
			delete(b.mailboxes, guildID)
			b.mu.Unlock()
			return
		}
		event := box.events[0]
		box.events[0] = nil
		box.events = box.events[1:]
		handlers := b.handlers[reflect.TypeOf(event)]
		b.mu.Unlock()

		for _, handler := range handlers {
			handler(b.ctx, event)
		}
	}
}

// Subscribe registers a handler for events of the given concrete type.
func (b *ChannelEventBus) Subscribe(
	eventType reflect.Type,
	handler func(context.Context, domain.Event),
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Close stops accepting events, cancels the handler context and waits for
// in-flight dispatchers to finish.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
