package application

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// PlaybackEventHandler turns voice engine events into queue state transitions.
// It subscribes to TrackStarted, TrackEnded and TrackErrored events; events of an
// engine session the room is no longer bound to are ignored.
type PlaybackEventHandler struct {
	queues     domain.QueueStore
	engine     ports.VoiceEngine
	status     *usecases.StatusPresenter
	closer     *usecases.RoomCloser
	subscriber ports.EventSubscriber
	timeout    time.Duration
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	queues domain.QueueStore,
	engine ports.VoiceEngine,
	status *usecases.StatusPresenter,
	closer *usecases.RoomCloser,
	subscriber ports.EventSubscriber,
	timeout time.Duration,
) *PlaybackEventHandler {
	if timeout <= 0 {
		timeout = usecases.DefaultEngineTimeout
	}
	return &PlaybackEventHandler{
		queues:     queues,
		engine:     engine,
		status:     status,
		closer:     closer,
		subscriber: subscriber,
		timeout:    timeout,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackStartedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackStarted(ctx, e.(domain.TrackStartedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackEnded(ctx, e.(domain.TrackEndedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackErroredEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackErrored(ctx, e.(domain.TrackErroredEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("playback event handlers properly registered")

	return nil
}

// handleTrackStarted re-renders the status message of the room.
func (h *PlaybackEventHandler) handleTrackStarted(ctx context.Context, event domain.TrackStartedEvent) {
	err := h.queues.With(ctx, event.GuildID, func(state *domain.QueueState) error {
		if !state.BoundTo(event.Session) {
			slog.Debug("ignoring track start of a previous session", "event", event)
			return nil
		}

		h.status.Refresh(ctx, state)
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNoQueue) {
		slog.Warn("failed to handle track start", "event", event, "error", err)
	}
}

func (h *PlaybackEventHandler) handleTrackErrored(_ context.Context, event domain.TrackErroredEvent) {
	slog.Warn(
		"track failed to play",
		"guild", event.GuildID,
		"source", event.SourceID,
		"message", event.Message,
	)
}

// handleTrackEnded moves the room to the track the engine plays next, or closes
// it after the last track. An end that a transport command already accounted for
// only refreshes the status.
func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	err := h.queues.With(ctx, event.GuildID, func(state *domain.QueueState) error {
		if !state.BoundTo(event.Session) {
			slog.Debug("ignoring track end of a previous session", "event", event)
			return nil
		}

		if state.ConsumeSkip() {
			slog.Debug("track end already accounted for", "event", event)
			h.status.Refresh(ctx, state)
			return nil
		}

		if state.Queue.IsEmpty() || state.Queue.IsAtLast() {
			slog.Debug("last track ended, closing room", "event", event)
			h.closer.Close(ctx, state)
			return nil
		}

		wasPaused := state.IsPaused()
		state.AdvanceTrack()

		slog.Debug(
			"track ended, advancing queue",
			"event", event,
			"index", state.Queue.CurrentIndex(),
		)

		if wasPaused {
			h.resume(ctx, state)
		}

		h.status.Refresh(ctx, state)
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNoQueue) {
		slog.Warn("failed to handle track end", "event", event, "error", err)
	}
}

// resume keeps the engine in step with the paused flag cleared by an advance.
func (h *PlaybackEventHandler) resume(ctx context.Context, state *domain.QueueState) {
	handle, ok := h.engine.Handle(state.GuildID())
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	if err := handle.Resume(ctx); err != nil {
		slog.Warn("failed to resume playback", "guild", state.GuildID(), "error", err)
	}
}
