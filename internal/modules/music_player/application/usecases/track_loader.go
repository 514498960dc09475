package usecases

import (
	"context"
	"fmt"

	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// TrackLoaderService resolves queries into tracks. It never touches room state,
// so its slow calls always run outside room locks.
type TrackLoaderService struct {
	resolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(resolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		resolver: resolver,
	}
}

// References returns the resolver references a query stands for: the entries of a
// playlist from its start position, or the query itself.
func (t *TrackLoaderService) References(
	ctx context.Context,
	query *domain.SearchQuery,
) ([]string, error) {
	if query.Kind != domain.QueryKindPlaylist {
		return []string{query.ResolverQuery()}, nil
	}

	refs, err := t.resolver.ExpandPlaylist(ctx, query.Query, query.PlaylistStart)
	if err != nil {
		return nil, fmt.Errorf("failed to expand playlist: %w", err)
	}
	if len(refs) == 0 {
		return nil, ErrEmptyPlaylist
	}
	return refs, nil
}

// Resolve returns the metadata of a single reference.
func (t *TrackLoaderService) Resolve(ctx context.Context, ref string) (TrackMetadata, error) {
	track, err := t.resolver.Resolve(ctx, ref)
	if err != nil {
		return TrackMetadata{}, err
	}
	if track.SourceURL == "" {
		return TrackMetadata{}, ErrNoResults
	}
	return track, nil
}
