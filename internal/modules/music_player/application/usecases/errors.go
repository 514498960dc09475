package usecases

import (
	"errors"

	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// Errors returned by the music player use cases.
var (
	// ErrNoGuild is returned when a command is used outside of a server.
	ErrNoGuild = errors.New("this command can only be used in a server")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrEmptyQuery is returned when a play query is blank.
	ErrEmptyQuery = errors.New("the query is empty")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = domain.ErrNoResults

	// ErrEmptyPlaylist is returned when a playlist has nothing to play.
	ErrEmptyPlaylist = domain.ErrEmptyPlaylist

	// ErrLoadFailed is returned when no track of a request could be loaded.
	ErrLoadFailed = errors.New("failed to load track")

	// ErrNoCurrentTrack is returned when the queue has no track at its index.
	ErrNoCurrentTrack = errors.New("there is no current track")

	// ErrNoCurrentSourceURL is returned when the current track cannot be replayed.
	ErrNoCurrentSourceURL = errors.New("the current track has no source URL")

	// ErrNoPreviousSourceURL is returned when the previous track cannot be replayed.
	ErrNoPreviousSourceURL = errors.New("the previous track has no source URL")

	// ErrStopping is returned when a room is being torn down.
	ErrStopping = domain.ErrStopping

	// ErrInvalidPlaylistName is returned when a playlist name cannot be stored.
	ErrInvalidPlaylistName = domain.ErrInvalidPlaylistName

	// ErrPlaylistNotFound is returned when a stored playlist does not exist.
	ErrPlaylistNotFound = domain.ErrPlaylistNotFound

	// ErrNothingToSave is returned when saving a playlist from an empty queue.
	ErrNothingToSave = errors.New("the queue is empty, nothing to save")
)
