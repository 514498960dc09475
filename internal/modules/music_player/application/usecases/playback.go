package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// PlaybackService handles the transport commands of a room.
type PlaybackService struct {
	queues  domain.QueueStore
	engine  ports.VoiceEngine
	status  *StatusPresenter
	preload time.Duration
	timeout time.Duration
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	queues domain.QueueStore,
	engine ports.VoiceEngine,
	status *StatusPresenter,
	preload time.Duration,
	timeout time.Duration,
) *PlaybackService {
	if preload <= 0 {
		preload = DefaultPreload
	}
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &PlaybackService{
		queues:  queues,
		engine:  engine,
		status:  status,
		preload: preload,
		timeout: timeout,
	}
}

// withPlaying runs fn with the room lock held, a live handle and at least one track.
func (p *PlaybackService) withPlaying(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(ctx context.Context, state *domain.QueueState, handle ports.PlayHandle) error,
) error {
	err := p.queues.With(ctx, guildID, func(state *domain.QueueState) error {
		if !state.IsActive() {
			return ErrNotPlaying
		}
		handle, ok := p.engine.Handle(guildID)
		if !ok {
			return ErrNotConnected
		}

		engineCtx, cancel := bounded(ctx, p.timeout)
		defer cancel()

		return fn(engineCtx, state, handle)
	})
	if errors.Is(err, domain.ErrNoQueue) {
		return ErrNotPlaying
	}
	return err
}

// Pause pauses playback. Pausing an already paused room is allowed.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	return p.setPaused(ctx, input.GuildID, func(*domain.QueueState) bool { return true })
}

// Resume resumes playback. Resuming a playing room is allowed.
func (p *PlaybackService) Resume(ctx context.Context, input PauseInput) error {
	return p.setPaused(ctx, input.GuildID, func(*domain.QueueState) bool { return false })
}

// TogglePause pauses a playing room and resumes a paused one.
func (p *PlaybackService) TogglePause(ctx context.Context, input PauseInput) error {
	return p.setPaused(ctx, input.GuildID, func(s *domain.QueueState) bool { return !s.IsPaused() })
}

// setPaused updates the flag first and then tells the engine. An engine failure
// keeps the new flag, still refreshes the status and is returned.
func (p *PlaybackService) setPaused(
	ctx context.Context,
	guildID snowflake.ID,
	next func(*domain.QueueState) bool,
) error {
	return p.withPlaying(ctx, guildID, func(
		ctx context.Context,
		state *domain.QueueState,
		handle ports.PlayHandle,
	) error {
		paused := next(state)
		state.SetPaused(paused)

		var err error
		if paused {
			err = handle.Pause(ctx)
		} else {
			err = handle.Resume(ctx)
		}

		p.status.Refresh(ctx, state)

		if err != nil {
			return fmt.Errorf("failed to update playback: %w", err)
		}
		return nil
	})
}

// Skip ends the current track. The index is moved by the track end event, never here.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) error {
	return p.withPlaying(ctx, input.GuildID, func(
		ctx context.Context,
		_ *domain.QueueState,
		handle ports.PlayHandle,
	) error {
		if err := handle.Skip(ctx); err != nil {
			return fmt.Errorf("failed to skip track: %w", err)
		}
		return nil
	})
}

// Previous replays the previous track, or restarts the current one at the first
// track. Fresh sources for the previous and current tracks are appended to the
// engine queue and moved right behind the active one, the index steps back with
// the next end event marked as accounted for, and the active track is skipped.
func (p *PlaybackService) Previous(ctx context.Context, input PreviousInput) error {
	return p.withPlaying(ctx, input.GuildID, func(
		ctx context.Context,
		state *domain.QueueState,
		handle ports.PlayHandle,
	) error {
		sources, err := previousSources(state)
		if err != nil {
			return err
		}

		enqueued := 0
		for _, src := range sources {
			if err := handle.Enqueue(ctx, src, p.preload); err != nil {
				p.dropTail(ctx, handle, enqueued)
				return fmt.Errorf("failed to enqueue track: %w", err)
			}
			enqueued++
		}

		err = handle.Reorder(ctx, func(q *domain.PlayQueue[domain.Source]) {
			q.RotateTailToFront(len(sources))
		})
		if err != nil {
			p.dropTail(ctx, handle, enqueued)
			return fmt.Errorf("failed to reorder tracks: %w", err)
		}

		// Ends published before the skip are in flight; the skip adds its own.
		// End events are handled under this lock, so none of them can slip past.
		published := handle.Ended()
		if err := handle.Skip(ctx); err != nil {
			// The sources now sit right behind the active entry.
			p.dropAfterFront(ctx, handle, len(sources))
			return fmt.Errorf("failed to skip track: %w", err)
		}

		state.StepBack(published)
		p.status.Refresh(ctx, state)
		return nil
	})
}

// previousSources returns the sources to replay: previous and current, or just the
// current one at the first track.
func previousSources(state *domain.QueueState) ([]domain.Source, error) {
	current := state.Queue.Current()
	if current == nil {
		return nil, ErrNoCurrentTrack
	}
	currentSrc, err := domain.NewSource(*current)
	if err != nil {
		return nil, ErrNoCurrentSourceURL
	}

	previous := state.Queue.Previous()
	if previous == nil {
		return []domain.Source{currentSrc}, nil
	}
	previousSrc, err := domain.NewSource(*previous)
	if err != nil {
		return nil, ErrNoPreviousSourceURL
	}

	return []domain.Source{previousSrc, currentSrc}, nil
}

// dropTail removes the last n entries so a failed previous leaves the engine
// queue as it was.
func (p *PlaybackService) dropTail(ctx context.Context, handle ports.PlayHandle, n int) {
	if n == 0 {
		return
	}
	err := handle.Reorder(ctx, func(q *domain.PlayQueue[domain.Source]) {
		for range n {
			q.PopBack()
		}
	})
	if err != nil {
		slog.Warn("failed to roll back engine queue", "error", err)
	}
}

// dropAfterFront removes the n entries right behind the active one.
func (p *PlaybackService) dropAfterFront(ctx context.Context, handle ports.PlayHandle, n int) {
	err := handle.Reorder(ctx, func(q *domain.PlayQueue[domain.Source]) {
		for range n {
			q.Remove(1)
		}
	})
	if err != nil {
		slog.Warn("failed to roll back engine queue", "error", err)
	}
}

// ToggleLoop flips the loop toggle. It only changes what the status shows.
func (p *PlaybackService) ToggleLoop(ctx context.Context, input LoopInput) (*LoopOutput, error) {
	output := &LoopOutput{}

	err := p.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		if !state.IsActive() {
			return ErrNotPlaying
		}
		output.Repeat = state.ToggleRepeat()
		p.status.Refresh(ctx, state)
		return nil
	})
	if errors.Is(err, domain.ErrNoQueue) {
		return nil, ErrNotPlaying
	}
	if err != nil {
		return nil, err
	}

	return output, nil
}
