package infrastructure

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
)

// VoiceStateProvider reads voice states from the discordgo state cache, which is
// kept current by the GuildVoiceStates intent.
type VoiceStateProvider struct {
	state *discordgo.State
}

var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{state: session.State}
}

// GetUserVoiceChannel returns the voice channel the user is connected to in the guild.
// Returns 0 if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	vs, err := v.state.VoiceState(guildID.String(), userID.String())
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read voice state: %w", err)
	}

	return voiceChannelOf(vs)
}

func voiceChannelOf(vs *discordgo.VoiceState) (snowflake.ID, error) {
	if vs == nil || vs.ChannelID == "" {
		return 0, nil
	}
	return snowflake.Parse(vs.ChannelID)
}
