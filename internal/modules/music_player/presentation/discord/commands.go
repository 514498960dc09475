package discord

import "github.com/bwmarrin/discordgo"

// maxPlaylistNameLength matches the longest name the playlist store accepts.
const maxPlaylistNameLength = 64

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a track or add it to the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "track",
					Description: "URL, playlist URL or search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Toggle pause",
		},
		{
			Name:        "stop",
			Description: "Stop playback and disconnect",
		},
		{
			Name:        "next",
			Description: "Jump to the next track",
		},
		{
			Name:        "prev",
			Description: "Play the previous track",
		},
		{
			Name:        "loop",
			Description: "Toggle loop",
		},
		{
			Name:        "clean",
			Description: "Remove the bot's previous messages from this channel",
		},
		{
			Name:        "save",
			Description: "Save the current queue to replay later with /load",
			Options:     []*discordgo.ApplicationCommandOption{playlistNameOption()},
		},
		{
			Name:        "load",
			Description: "Load a saved playlist",
			Options:     []*discordgo.ApplicationCommandOption{playlistNameOption()},
		},
		{
			Name:        "list",
			Description: "List the saved playlists",
		},
	}
}

func playlistNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Name of the playlist (letters, digits, - and _)",
		Required:    true,
		MinLength:   intPtr(1),
		MaxLength:   maxPlaylistNameLength,
	}
}

func intPtr(i int) *int {
	return &i
}
