package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/bot"
	"github.com/sglre6355/beat/internal/modules/music_player/application/usecases"
)

// commandTimeout bounds the work behind one interaction. Discord keeps an
// interaction token valid for 15 minutes.
const commandTimeout = 14 * time.Minute

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x3498DB
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	playlist     *usecases.PlaylistService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	playlist *usecases.PlaylistService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		playlist:     playlist,
	}
}

// interactionContext holds the IDs every command needs.
type interactionContext struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID snowflake.ID
}

func newInteractionContext(i *discordgo.InteractionCreate) (interactionContext, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionContext{}, usecases.ErrNoGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid guild ID: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid user ID: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid channel ID: %w", err)
	}

	return interactionContext{GuildID: guildID, UserID: userID, ChannelID: channelID}, nil
}

// deferred acknowledges the command with an ephemeral loading state, runs fn and
// then removes the response, or replaces it with an error or a notice.
// fn returns the notice to keep, or "" to delete the response.
func deferred(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	fn func(ctx context.Context, ic interactionContext) (string, error),
) error {
	if err := r.Defer(true); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	ic, err := newInteractionContext(i)
	if err != nil {
		return r.Edit(errorEmbed(err))
	}

	notice, err := fn(ctx, ic)
	if err != nil {
		return r.Edit(errorEmbed(err))
	}
	if notice != "" {
		return r.Edit(&discordgo.MessageEmbed{
			Description: notice,
			Color:       colorSuccess,
		})
	}
	return r.Delete()
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	query := stringOption(i, "track")

	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		output, err := h.queue.Play(ctx, usecases.PlayInput{
			GuildID:   ic.GuildID,
			UserID:    ic.UserID,
			ChannelID: ic.ChannelID,
			Query:     query,
		})
		if err != nil {
			return "", err
		}
		return partialNotice(output), nil
	})
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		return "", h.playback.TogglePause(ctx, usecases.PauseInput{GuildID: ic.GuildID})
	})
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		return "", h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: ic.GuildID})
	})
}

// HandleNext handles the /next command.
func (h *CommandHandlers) HandleNext(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		return "", h.playback.Skip(ctx, usecases.SkipInput{GuildID: ic.GuildID})
	})
}

// HandlePrev handles the /prev command.
func (h *CommandHandlers) HandlePrev(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		return "", h.playback.Previous(ctx, usecases.PreviousInput{GuildID: ic.GuildID})
	})
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		_, err := h.playback.ToggleLoop(ctx, usecases.LoopInput{GuildID: ic.GuildID})
		return "", err
	})
}

// HandleClean handles the /clean command.
func (h *CommandHandlers) HandleClean(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		output, err := h.queue.Clean(ctx, usecases.CleanInput{
			GuildID:   ic.GuildID,
			ChannelID: ic.ChannelID,
		})
		if err != nil {
			return "", err
		}
		slog.Debug("cleaned channel", "guild", ic.GuildID, "deleted", output.Deleted)
		return "", nil
	})
}

// HandleSave handles the /save command.
func (h *CommandHandlers) HandleSave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	name := stringOption(i, "name")

	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		output, err := h.playlist.Save(ctx, usecases.SavePlaylistInput{
			GuildID: ic.GuildID,
			Name:    name,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved **%d tracks** as **%s**.", output.Tracks, output.Name), nil
	})
}

// HandleLoad handles the /load command.
func (h *CommandHandlers) HandleLoad(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	name := stringOption(i, "name")

	return deferred(i, r, func(ctx context.Context, ic interactionContext) (string, error) {
		output, err := h.playlist.Load(ctx, usecases.LoadPlaylistInput{
			GuildID:   ic.GuildID,
			UserID:    ic.UserID,
			ChannelID: ic.ChannelID,
			Name:      name,
		})
		if err != nil {
			return "", err
		}
		return partialNotice(output), nil
	})
}

// HandleList handles the /list command. The list is posted publicly.
func (h *CommandHandlers) HandleList(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := newInteractionContext(i)
	if err != nil {
		return respondError(r, err)
	}

	output, err := h.playlist.List(context.Background(), usecases.ListPlaylistsInput{
		GuildID: ic.GuildID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{playlistsEmbed(output.Names)},
		},
	})
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// partialNotice tells the user about entries of a request that could not be added.
func partialNotice(output *usecases.PlayOutput) string {
	if output == nil || output.Failed == 0 {
		return ""
	}
	return fmt.Sprintf(
		"Added **%d tracks**, **%d** could not be loaded.",
		len(output.Added),
		output.Failed,
	)
}

func playlistsEmbed(names []usecases.PlaylistName) *discordgo.MessageEmbed {
	var body strings.Builder
	if len(names) == 0 {
		body.WriteString("_None_")
	}
	for _, name := range names {
		fmt.Fprintf(&body, "\n- %s", name)
	}

	return &discordgo.MessageEmbed{
		Title:       "**Available playlists**",
		Description: body.String(),
		Color:       colorInfo,
	}
}

// userErrors are shown to the user as they are. Anything else is logged and
// replaced by a generic message.
var userErrors = []error{
	usecases.ErrNoGuild,
	usecases.ErrNotConnected,
	usecases.ErrUserNotInVoice,
	usecases.ErrNotPlaying,
	usecases.ErrEmptyQuery,
	usecases.ErrNoResults,
	usecases.ErrEmptyPlaylist,
	usecases.ErrLoadFailed,
	usecases.ErrNoCurrentTrack,
	usecases.ErrNoCurrentSourceURL,
	usecases.ErrNoPreviousSourceURL,
	usecases.ErrNothingToSave,
	usecases.ErrStopping,
	usecases.ErrInvalidPlaylistName,
	usecases.ErrPlaylistNotFound,
}

func errorMessage(err error) string {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return capitalize(target.Error()) + "."
		}
	}
	slog.Error("failed to handle command", "error", err)
	return "Something went wrong, please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func errorEmbed(err error) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: errorMessage(err),
		Color:       colorError,
	}
}

func respondError(r bot.Responder, err error) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(err)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
