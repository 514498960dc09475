package ports

import (
	"context"

	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// TrackResolver resolves user queries into track metadata.
// Calls may block for seconds and must never run under a room lock.
type TrackResolver interface {
	// Resolve returns the metadata of a URL or a prefixed search query.
	Resolve(ctx context.Context, query string) (domain.TrackMetadata, error)

	// ExpandPlaylist returns the entry URLs of a playlist from the 1-based start position.
	// Returns domain.ErrEmptyPlaylist when nothing is left.
	ExpandPlaylist(ctx context.Context, url string, start int) ([]string, error)
}
