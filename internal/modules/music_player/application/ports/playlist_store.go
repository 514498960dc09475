package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// PlaylistStore persists named lists of track references per room.
type PlaylistStore interface {
	// Save replaces the named playlist with refs.
	Save(ctx context.Context, guildID snowflake.ID, name domain.PlaylistName, refs []string) error

	// Load returns the references of the named playlist.
	// Returns domain.ErrPlaylistNotFound if it does not exist.
	Load(ctx context.Context, guildID snowflake.ID, name domain.PlaylistName) ([]string, error)

	// List returns the names of the room's playlists in sorted order.
	List(ctx context.Context, guildID snowflake.ID) ([]domain.PlaylistName, error)
}
