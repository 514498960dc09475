package infrastructure

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

func TestVoiceStateProvider_GetUserVoiceChannel(t *testing.T) {
	state := discordgo.NewState()
	if err := state.GuildAdd(&discordgo.Guild{
		ID: "1",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "1", UserID: "2", ChannelID: "4"},
		},
	}); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
	provider := &VoiceStateProvider{state: state}

	tests := []struct {
		name    string
		guildID snowflake.ID
		userID  snowflake.ID
		want    snowflake.ID
	}{
		{name: "connected user", guildID: 1, userID: 2, want: 4},
		{name: "user not in voice", guildID: 1, userID: 3, want: 0},
		{name: "unknown guild", guildID: 9, userID: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := provider.GetUserVoiceChannel(tt.guildID, tt.userID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
