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

// DefaultPreload is how long before the end of a track the next one is prepared.
const DefaultPreload = 10 * time.Second

// QueueService adds tracks to rooms and maintains the channel around them.
type QueueService struct {
	queues  domain.QueueStore
	engine  ports.VoiceEngine
	chat    ports.ChatTransport
	voice   *VoiceChannelService
	loader  *TrackLoaderService
	status  *StatusPresenter
	preload time.Duration
	timeout time.Duration
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	queues domain.QueueStore,
	engine ports.VoiceEngine,
	chat ports.ChatTransport,
	voice *VoiceChannelService,
	loader *TrackLoaderService,
	status *StatusPresenter,
	preload time.Duration,
	timeout time.Duration,
) *QueueService {
	if preload <= 0 {
		preload = DefaultPreload
	}
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &QueueService{
		queues:  queues,
		engine:  engine,
		chat:    chat,
		voice:   voice,
		loader:  loader,
		status:  status,
		preload: preload,
		timeout: timeout,
	}
}

// Play joins the user's voice channel and appends the tracks the query stands for.
// Metadata is resolved outside the room lock; each track is then inserted in its
// own exclusive window, so one failing entry of a playlist does not stop the rest.
func (s *QueueService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrEmptyQuery
	}

	if _, err := s.voice.Join(ctx, JoinInput{
		GuildID:   input.GuildID,
		UserID:    input.UserID,
		ChannelID: input.ChannelID,
	}); err != nil {
		return nil, err
	}

	refs, err := s.loader.References(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.AddReferences(ctx, input.GuildID, refs)
}

// AddReferences resolves each reference and enqueues it in order. Failures of
// single entries are counted; an error is only returned when nothing was added.
func (s *QueueService) AddReferences(
	ctx context.Context,
	guildID snowflake.ID,
	refs []string,
) (*PlayOutput, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyPlaylist
	}

	output := &PlayOutput{}
	var lastErr error

	for _, ref := range refs {
		track, err := s.loader.Resolve(ctx, ref)
		if err == nil {
			err = s.Enqueue(ctx, EnqueueInput{GuildID: guildID, Track: track})
		}
		if err == nil {
			output.Added = append(output.Added, track)
			continue
		}

		// The room was torn down or the request abandoned; the remaining
		// entries have nowhere to go.
		if errors.Is(err, domain.ErrStopping) || ctx.Err() != nil {
			lastErr = err
			output.Failed++
			break
		}

		slog.Warn("failed to add track", "guild", guildID, "ref", ref, "error", err)
		output.Failed++
		lastErr = err
	}

	if len(output.Added) == 0 {
		if len(refs) == 1 {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, lastErr)
	}

	return output, nil
}

// Enqueue appends a resolved track to the room in one exclusive window: the
// engine is handed the source, the track is appended and the status message is
// sent (first track) or edited.
func (s *QueueService) Enqueue(ctx context.Context, input EnqueueInput) error {
	src, err := domain.NewSource(input.Track)
	if err != nil {
		return err
	}

	err = s.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		if state.IsStopping() {
			return domain.ErrStopping
		}

		handle, ok := s.engine.Handle(input.GuildID)
		if !ok {
			return ErrNotConnected
		}

		engineCtx, cancel := bounded(ctx, s.timeout)
		defer cancel()

		if err := handle.Enqueue(engineCtx, src, s.preload); err != nil {
			return fmt.Errorf("failed to enqueue track: %w", err)
		}

		if _, err := state.Insert(input.Track); err != nil {
			return err
		}

		s.status.Refresh(ctx, state)
		return nil
	})
	if errors.Is(err, domain.ErrNoQueue) {
		return ErrNotConnected
	}
	return err
}

// Clean deletes the bot's recent messages in the channel, keeping the live status
// message of the room.
func (s *QueueService) Clean(ctx context.Context, input CleanInput) (*CleanOutput, error) {
	output := &CleanOutput{}

	purge := func(keep *snowflake.ID) error {
		chatCtx, cancel := bounded(ctx, s.timeout)
		defer cancel()

		deleted, err := s.chat.PurgeBotMessages(chatCtx, input.ChannelID, keep)
		output.Deleted = deleted
		return err
	}

	err := s.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		var keep *snowflake.ID
		if msg := state.StatusMessage(); msg != nil && msg.ChannelID == input.ChannelID {
			keep = &msg.MessageID
		}
		return purge(keep)
	})
	if errors.Is(err, domain.ErrNoQueue) {
		err = purge(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clean messages: %w", err)
	}

	return output, nil
}
