package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/usecases"
)

// voiceEventTimeout bounds the teardown triggered by a gateway event.
const voiceEventTimeout = 30 * time.Second

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel *usecases.VoiceChannelService
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceChannel *usecases.VoiceChannelService,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
	}
}

// HandleVoiceStateUpdate closes the room when the bot was disconnected from voice.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	input, ok := h.botVoiceStateChange(event)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceEventTimeout)
	defer cancel()

	h.voiceChannel.HandleBotVoiceStateChange(ctx, input)
}

// botVoiceStateChange converts an update of the bot's own voice state.
func (h *EventHandlers) botVoiceStateChange(
	event *discordgo.VoiceStateUpdate,
) (usecases.BotVoiceStateChangeInput, bool) {
	if event.VoiceState == nil || event.UserID != h.botID.String() {
		return usecases.BotVoiceStateChangeInput{}, false
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return usecases.BotVoiceStateChangeInput{}, false
	}

	input := usecases.BotVoiceStateChangeInput{GuildID: guildID}
	if event.ChannelID != "" {
		channelID, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return usecases.BotVoiceStateChangeInput{}, false
		}
		input.NewChannelID = &channelID
	}

	return input, true
}
