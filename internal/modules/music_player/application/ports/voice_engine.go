package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// VoiceEngine connects rooms to voice channels and hands out their play handles.
// Lifecycle events of every handle are published as domain events.
type VoiceEngine interface {
	// Connect joins the voice channel and returns a fresh handle for the room.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (PlayHandle, error)

	// Handle returns the live handle of the room, if any.
	Handle(guildID snowflake.ID) (PlayHandle, bool)

	// Release stops the room's handle and leaves the voice channel.
	Release(ctx context.Context, guildID snowflake.ID) error
}

// PlayHandle is the engine-side FIFO play queue of a connected room.
// Entry 0 is the active source; entries behind it play in order.
type PlayHandle interface {
	// ID identifies the engine session. Events carry it so stale ones can be told apart.
	ID() uuid.UUID

	// Enqueue appends a source, starting playback if the queue was idle.
	// The engine starts preparing the source preload before the preceding one ends.
	Enqueue(ctx context.Context, src domain.Source, preload time.Duration) error

	// Skip ends the active source and starts the next one.
	Skip(ctx context.Context) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	// Stop clears the queue without emitting end events and starts a new session.
	Stop(ctx context.Context) error

	// Reorder applies fn to the queue. Playback is restarted if the active entry changed.
	Reorder(ctx context.Context, fn func(q *domain.PlayQueue[domain.Source])) error

	// Len returns the number of queued sources, including the active one.
	Len() int

	// Ended returns how many track end events this session has published.
	Ended() uint64
}
