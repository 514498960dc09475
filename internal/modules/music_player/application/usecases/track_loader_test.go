package usecases

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

func TestTrackLoaderService_References(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		playlist  []string
		expandErr error
		wantRefs  []string
		wantStart int
		wantErr   error
	}{
		{
			name:     "search",
			input:    "lofi beats",
			wantRefs: []string{domain.SearchPrefix + "lofi beats"},
		},
		{
			name:     "single url",
			input:    "https://example.com/watch?v=1",
			wantRefs: []string{"https://example.com/watch?v=1"},
		},
		{
			name:      "playlist defaults to the first entry",
			input:     "https://example.com/watch?v=1&list=PL",
			playlist:  []string{"u1", "u2"},
			wantRefs:  []string{"u1", "u2"},
			wantStart: 1,
		},
		{
			name:      "playlist start comes from the last index parameter",
			input:     "https://example.com/watch?list=PL&index=2&index=5",
			playlist:  []string{"u5"},
			wantRefs:  []string{"u5"},
			wantStart: 5,
		},
		{
			name:    "empty playlist",
			input:   "https://example.com/playlist?list=PL",
			wantErr: ErrEmptyPlaylist,
		},
		{
			name:      "expand failure",
			input:     "https://example.com/playlist?list=PL",
			expandErr: errBoom,
			wantErr:   errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newMockResolver()
			resolver.playlist = tt.playlist
			resolver.expandErr = tt.expandErr
			loader := NewTrackLoaderService(resolver)

			refs, err := loader.References(context.Background(), domain.NewSearchQuery(tt.input))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(refs, tt.wantRefs) {
				t.Errorf("expected %v, got %v", tt.wantRefs, refs)
			}
			if tt.wantStart != 0 && resolver.expandStart != tt.wantStart {
				t.Errorf("expected start %d, got %d", tt.wantStart, resolver.expandStart)
			}
		})
	}
}

func TestTrackLoaderService_Resolve(t *testing.T) {
	resolver := newMockResolver()
	resolver.add("ref", mockTrack("a"))
	resolver.tracks["empty"] = TrackMetadata{Title: "no source"}
	loader := NewTrackLoaderService(resolver)

	track, err := loader.Resolve(context.Background(), "ref")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.Title != "Track a" {
		t.Errorf("expected Track a, got %s", track.Title)
	}

	if _, err := loader.Resolve(context.Background(), "empty"); !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}
