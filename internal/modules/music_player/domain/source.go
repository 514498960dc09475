package domain

import "github.com/google/uuid"

// Source is a playable reference handed to the voice engine.
type Source struct {
	ID    uuid.UUID
	URL   string
	Title string
}

// NewSource builds a Source for the track. It fails when the track has no source URL.
func NewSource(track TrackMetadata) (Source, error) {
	if track.SourceURL == "" {
		return Source{}, ErrMissingSourceURL
	}
	return Source{
		ID:    uuid.New(),
		URL:   track.SourceURL,
		Title: track.Title,
	}, nil
}
