package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// QueueStore holds the QueueState of every room and serializes access per room.
// The map is only locked for lookup and insertion, so unrelated rooms never contend.
type QueueStore interface {
	// With runs fn with exclusive access to an existing room.
	// Returns ErrNoQueue if the room has no state.
	With(ctx context.Context, guildID snowflake.ID, fn func(*QueueState) error) error

	// WithOrCreate runs fn with exclusive access to the room, creating an empty
	// stopping state if none exists.
	WithOrCreate(ctx context.Context, guildID snowflake.ID, fn func(*QueueState) error) error

	// Remove deletes the room's state.
	Remove(guildID snowflake.ID)

	// GuildIDs returns the rooms that currently have state.
	GuildIDs() []snowflake.ID
}
