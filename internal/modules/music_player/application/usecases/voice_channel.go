package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// VoiceChannelService handles voice connections and the room lifecycle.
type VoiceChannelService struct {
	queues     domain.QueueStore
	engine     ports.VoiceEngine
	voiceState ports.VoiceStateProvider
	status     *StatusPresenter
	closer     *RoomCloser
	timeout    time.Duration
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	queues domain.QueueStore,
	engine ports.VoiceEngine,
	voiceState ports.VoiceStateProvider,
	status *StatusPresenter,
	closer *RoomCloser,
	timeout time.Duration,
) *VoiceChannelService {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &VoiceChannelService{
		queues:     queues,
		engine:     engine,
		voiceState: voiceState,
		status:     status,
		closer:     closer,
		timeout:    timeout,
	}
}

// Join makes sure the room is connected to the user's voice channel and accepting
// tracks. A room without an engine handle is connected first; queue state left
// over from a previous connection is discarded.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if voiceChannelID == 0 {
		return nil, ErrUserNotInVoice
	}

	output := &JoinOutput{VoiceChannelID: voiceChannelID}

	err = v.queues.WithOrCreate(ctx, input.GuildID, func(state *domain.QueueState) error {
		handle, ok := v.engine.Handle(input.GuildID)
		if ok && state.BoundTo(handle.ID()) {
			return nil
		}

		if !state.IsStopping() {
			slog.Warn(
				"found queue state while connecting, clearing previous state",
				"guild", input.GuildID,
				"tracks", state.Queue.Len(),
			)
			v.status.Delete(ctx, state.Reset())
		}

		if ok {
			stopCtx, cancel := bounded(ctx, v.timeout)
			defer cancel()

			if err := handle.Stop(stopCtx); err != nil {
				slog.Warn("failed to stop previous play queue", "guild", input.GuildID, "error", err)
			}
			state.Begin(input.ChannelID, handle.ID())
			return nil
		}

		connectCtx, cancel := bounded(ctx, v.timeout)
		defer cancel()

		handle, err := v.engine.Connect(connectCtx, input.GuildID, voiceChannelID)
		if err != nil {
			return fmt.Errorf("failed to join voice channel: %w", err)
		}

		state.Begin(input.ChannelID, handle.ID())
		output.Connected = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if output.Connected {
		slog.Info("joined voice channel", "guild", input.GuildID, "channel", voiceChannelID)
	}

	return output, nil
}

// Leave stops playback, deletes the status message and disconnects.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	err := v.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		if _, ok := v.engine.Handle(input.GuildID); !ok && state.IsStopping() {
			return ErrNotConnected
		}
		v.closer.Close(ctx, state)
		return nil
	})
	if errors.Is(err, domain.ErrNoQueue) {
		return ErrNotConnected
	}
	return err
}

// HandleBotVoiceStateChange closes the room when the bot was disconnected from
// voice by someone else.
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) {
	if input.NewChannelID != nil {
		return
	}

	err := v.queues.With(ctx, input.GuildID, func(state *domain.QueueState) error {
		if state.IsStopping() {
			return nil
		}
		slog.Info("bot was disconnected from voice, closing room", "guild", input.GuildID)
		v.closer.Close(ctx, state)
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNoQueue) {
		slog.Warn("failed to handle bot voice state change", "guild", input.GuildID, "error", err)
	}
}

// CloseAll tears down and forgets every room.
func (v *VoiceChannelService) CloseAll(ctx context.Context) {
	for _, guildID := range v.queues.GuildIDs() {
		err := v.queues.With(ctx, guildID, func(state *domain.QueueState) error {
			if !state.IsStopping() {
				v.closer.Close(ctx, state)
			}
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrNoQueue) {
			slog.Warn("failed to close room", "guild", guildID, "error", err)
		}
		v.queues.Remove(guildID)
	}
}
