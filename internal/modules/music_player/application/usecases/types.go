package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// TrackMetadata is an alias for domain.TrackMetadata.
type TrackMetadata = domain.TrackMetadata

// PlaylistName is an alias for domain.PlaylistName.
type PlaylistName = domain.PlaylistName

// Control is an alias for domain.Control.
type Control = domain.Control

// Controls of the status message.
const (
	ControlPrevious = domain.ControlPrevious
	ControlStop     = domain.ControlStop
	ControlPause    = domain.ControlPause
	ControlNext     = domain.ControlNext
	ControlLoop     = domain.ControlLoop
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID // text channel that hosts the status message
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Connected      bool // true if a new voice connection was made
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID
	Query     string
}

// PlayOutput contains the result of the Play and Load use cases.
type PlayOutput struct {
	Added  []TrackMetadata
	Failed int
}

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID snowflake.ID
	Track   TrackMetadata
}

// CleanInput contains the input for the Clean use case.
type CleanInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// CleanOutput contains the result of the Clean use case.
type CleanOutput struct {
	Deleted int
}

// PauseInput contains the input for the Pause, Resume and TogglePause use cases.
type PauseInput struct {
	GuildID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
}

// PreviousInput contains the input for the Previous use case.
type PreviousInput struct {
	GuildID snowflake.ID
}

// LoopInput contains the input for the ToggleLoop use case.
type LoopInput struct {
	GuildID snowflake.ID
}

// LoopOutput contains the result of the ToggleLoop use case.
type LoopOutput struct {
	Repeat bool
}

// SavePlaylistInput contains the input for the SavePlaylist use case.
type SavePlaylistInput struct {
	GuildID snowflake.ID
	Name    string
}

// SavePlaylistOutput contains the result of the SavePlaylist use case.
type SavePlaylistOutput struct {
	Name   PlaylistName
	Tracks int
}

// LoadPlaylistInput contains the input for the LoadPlaylist use case.
type LoadPlaylistInput struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID
	Name      string
}

// ListPlaylistsInput contains the input for the ListPlaylists use case.
type ListPlaylistsInput struct {
	GuildID snowflake.ID
}

// ListPlaylistsOutput contains the result of the ListPlaylists use case.
type ListPlaylistsOutput struct {
	Names []PlaylistName
}
