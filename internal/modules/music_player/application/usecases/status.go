package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// Default bounds for external calls made while holding a room lock.
const (
	DefaultChatTimeout   = 5 * time.Second
	DefaultEngineTimeout = 15 * time.Second
)

// bounded derives a context for an external call made under a room lock.
// It is detached from the caller's cancellation because an operation that holds
// the lock must run to completion, and bounded by d so the lock is always released.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}

// StatusPresenter keeps the single status message of a room in sync with its state.
// Chat failures are logged and never roll back state.
type StatusPresenter struct {
	chat    ports.ChatTransport
	timeout time.Duration
}

// NewStatusPresenter creates a new StatusPresenter.
func NewStatusPresenter(chat ports.ChatTransport, timeout time.Duration) *StatusPresenter {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &StatusPresenter{
		chat:    chat,
		timeout: timeout,
	}
}

// Refresh renders the state and edits the status message, sending it first if the
// room has none yet. Must be called with the room lock held.
func (p *StatusPresenter) Refresh(ctx context.Context, state *domain.QueueState) {
	view, ok := domain.RenderStatus(state)
	if !ok {
		return
	}

	ctx, cancel := bounded(ctx, p.timeout)
	defer cancel()

	if msg := state.StatusMessage(); msg != nil {
		if err := p.chat.EditStatus(ctx, *msg, view); err != nil {
			slog.Warn(
				"failed to edit status message",
				"guild", state.GuildID(),
				"message", msg.MessageID,
				"error", err,
			)
		}
		return
	}

	messageID, err := p.chat.SendStatus(ctx, state.ChannelID(), view)
	if err != nil {
		slog.Warn(
			"failed to send status message",
			"guild", state.GuildID(),
			"channel", state.ChannelID(),
			"error", err,
		)
		return
	}
	state.SetStatusMessage(domain.NewStatusMessage(state.ChannelID(), messageID))
}

// Delete deletes a status message returned by QueueState.Reset.
func (p *StatusPresenter) Delete(ctx context.Context, msg *domain.StatusMessage) {
	if msg == nil {
		return
	}

	ctx, cancel := bounded(ctx, p.timeout)
	defer cancel()

	if err := p.chat.DeleteMessage(ctx, *msg); err != nil {
		slog.Warn(
			"failed to delete status message",
			"channel", msg.ChannelID,
			"message", msg.MessageID,
			"error", err,
		)
	}
}

// RoomCloser tears rooms down: it resets their state, deletes the status message
// and releases the engine.
type RoomCloser struct {
	engine  ports.VoiceEngine
	status  *StatusPresenter
	timeout time.Duration
}

// NewRoomCloser creates a new RoomCloser.
func NewRoomCloser(
	engine ports.VoiceEngine,
	status *StatusPresenter,
	timeout time.Duration,
) *RoomCloser {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &RoomCloser{
		engine:  engine,
		status:  status,
		timeout: timeout,
	}
}

// Close tears the room down. Must be called with the room lock held.
func (c *RoomCloser) Close(ctx context.Context, state *domain.QueueState) {
	c.status.Delete(ctx, state.Reset())

	ctx, cancel := bounded(ctx, c.timeout)
	defer cancel()

	if err := c.engine.Release(ctx, state.GuildID()); err != nil {
		slog.Warn("failed to release voice engine", "guild", state.GuildID(), "error", err)
	}

	slog.Info("closed room", "guild", state.GuildID())
}
