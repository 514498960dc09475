package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// PlaylistService saves a room's queue under a name and plays it back later.
type PlaylistService struct {
	store  ports.PlaylistStore
	queues domain.QueueStore
	voice  *VoiceChannelService
	queue  *QueueService
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(
	store ports.PlaylistStore,
	queues domain.QueueStore,
	voice *VoiceChannelService,
	queue *QueueService,
) *PlaylistService {
	return &PlaylistService{
		store:  store,
		queues: queues,
		voice:  voice,
		queue:  queue,
	}
}

// Save stores the source URLs of every track in the room's queue, in order.
func (s *PlaylistService) Save(ctx context.Context, input SavePlaylistInput) (*SavePlaylistOutput, error) {
	name, err := domain.NewPlaylistName(input.Name)
	if err != nil {
		return nil, err
	}

	var refs []string
	err = s.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		for _, t := range state.Queue.List() {
			if t.SourceURL != "" {
				refs = append(refs, t.SourceURL)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNoQueue) {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, ErrNothingToSave
	}

	if err := s.store.Save(ctx, input.GuildID, name, refs); err != nil {
		return nil, fmt.Errorf("failed to save playlist: %w", err)
	}

	slog.Info("saved playlist", "guild", input.GuildID, "name", name, "tracks", len(refs))

	return &SavePlaylistOutput{Name: name, Tracks: len(refs)}, nil
}

// Load joins the user's voice channel and appends every track of a saved playlist.
func (s *PlaylistService) Load(ctx context.Context, input LoadPlaylistInput) (*PlayOutput, error) {
	name, err := domain.NewPlaylistName(input.Name)
	if err != nil {
		return nil, err
	}

	refs, err := s.store.Load(ctx, input.GuildID, name)
	if err != nil {
		return nil, err
	}

	if _, err := s.voice.Join(ctx, JoinInput{
		GuildID:   input.GuildID,
		UserID:    input.UserID,
		ChannelID: input.ChannelID,
	}); err != nil {
		return nil, err
	}

	return s.queue.AddReferences(ctx, input.GuildID, refs)
}

// List returns the names of the room's saved playlists.
func (s *PlaylistService) List(ctx context.Context, input ListPlaylistsInput) (*ListPlaylistsOutput, error) {
	names, err := s.store.List(ctx, input.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return &ListPlaylistsOutput{Names: names}, nil
}
