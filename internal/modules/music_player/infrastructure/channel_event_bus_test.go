package infrastructure

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

func TestChannelEventBus_DeliversToSubscribers(t *testing.T) {
	bus := NewChannelEventBus()
	defer bus.Close()

	received := make(chan domain.TrackStartedEvent, 1)
	err := bus.Subscribe(
		reflect.TypeFor[domain.TrackStartedEvent](),
		func(_ context.Context, e domain.Event) {
			received <- e.(domain.TrackStartedEvent)
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := bus.Publish(domain.TrackStartedEvent{GuildID: snowflake.ID(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case e := <-received:
		if e.GuildID != snowflake.ID(1) {
			t.Errorf("expected guild 1, got %d", e.GuildID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestChannelEventBus_IgnoresOtherTypes(t *testing.T) {
	bus := NewChannelEventBus()

	var mu sync.Mutex
	var calls int
	bus.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(context.Context, domain.Event) {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	)

	bus.Publish(domain.TrackStartedEvent{GuildID: snowflake.ID(1)})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestChannelEventBus_PreservesOrderPerRoom(t *testing.T) {
	bus := NewChannelEventBus()

	var mu sync.Mutex
	order := make(map[snowflake.ID][]domain.TrackEndReason)
	bus.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(_ context.Context, e domain.Event) {
			ended := e.(domain.TrackEndedEvent)
			// Slow handlers must not reorder a room's events.
			time.Sleep(time.Millisecond)
			mu.Lock()
			order[ended.GuildID] = append(order[ended.GuildID], ended.Reason)
			mu.Unlock()
		},
	)

	reasons := []domain.TrackEndReason{
		domain.TrackEndFinished,
		domain.TrackEndSkipped,
		domain.TrackEndLoadFailed,
		domain.TrackEndFinished,
	}
	for _, guildID := range []snowflake.ID{1, 2} {
		for _, r := range reasons {
			bus.Publish(domain.TrackEndedEvent{GuildID: guildID, Reason: r})
		}
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	for _, guildID := range []snowflake.ID{1, 2} {
		if !slices.Equal(order[guildID], reasons) {
			t.Errorf("guild %d: expected %v, got %v", guildID, reasons, order[guildID])
		}
	}
}

func TestChannelEventBus_SlowRoomDoesNotBlockOthers(t *testing.T) {
	bus := NewChannelEventBus()
	release := make(chan struct{})
	done := make(chan snowflake.ID, 1)

	bus.Subscribe(
		reflect.TypeFor[domain.TrackStartedEvent](),
		func(_ context.Context, e domain.Event) {
			if e.EventGuildID() == snowflake.ID(1) {
				<-release
				return
			}
			done <- e.EventGuildID()
		},
	)

	bus.Publish(domain.TrackStartedEvent{GuildID: snowflake.ID(1)})
	bus.Publish(domain.TrackStartedEvent{GuildID: snowflake.ID(2)})

	select {
	case id := <-done:
		if id != snowflake.ID(2) {
			t.Errorf("expected guild 2, got %d", id)
		}
	case <-time.After(time.Second):
		t.Error("room 2 was blocked by room 1")
	}

	close(release)
	bus.Close()
}

func TestChannelEventBus_Closed(t *testing.T) {
	bus := NewChannelEventBus()
	bus.Close()
	bus.Close()

	if err := bus.Publish(domain.TrackStartedEvent{}); !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
	err := bus.Subscribe(reflect.TypeFor[domain.TrackStartedEvent](), func(context.Context, domain.Event) {})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
}
