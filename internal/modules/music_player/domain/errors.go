package domain

import "errors"

var (
	// ErrStopping is returned when a track is inserted into a room that is torn down
	// or has not begun playback yet.
	ErrStopping = errors.New("playback is stopping")

	// ErrNoQueue is returned when a room has no queue state.
	ErrNoQueue = errors.New("no queue for this guild")

	// ErrMissingSourceURL is returned when a track has no source URL to play from.
	ErrMissingSourceURL = errors.New("track has no source URL")

	// ErrInvalidPlaylistName is returned when a playlist name cannot be stored.
	ErrInvalidPlaylistName = errors.New("invalid playlist name")

	// ErrPlaylistNotFound is returned when a stored playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrNoResults is returned when a query resolves to nothing.
	ErrNoResults = errors.New("no results found")

	// ErrEmptyPlaylist is returned when a playlist has no entries from the requested start.
	ErrEmptyPlaylist = errors.New("empty playlist")
)
