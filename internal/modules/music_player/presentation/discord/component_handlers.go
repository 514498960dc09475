package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/beat/internal/bot"
	"github.com/sglre6355/beat/internal/modules/music_player/application/usecases"
)

// ComponentHandlers handles the buttons of the status message.
type ComponentHandlers struct {
	commands *CommandHandlers
}

// NewComponentHandlers creates new ComponentHandlers.
func NewComponentHandlers(commands *CommandHandlers) *ComponentHandlers {
	return &ComponentHandlers{commands: commands}
}

// Handlers returns the handlers keyed by button custom ID.
func (h *ComponentHandlers) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		string(usecases.ControlPrevious): h.HandlePrevious,
		string(usecases.ControlStop):     h.HandleStop,
		string(usecases.ControlPause):    h.HandlePause,
		string(usecases.ControlNext):     h.HandleNext,
		string(usecases.ControlLoop):     h.HandleLoop,
	}
}

// acknowledged acknowledges the button press without changing the message, runs fn
// and reports an error as an ephemeral follow-up. The status message itself is
// updated by the use case.
func acknowledged(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	fn func(ctx context.Context, ic interactionContext) error,
) error {
	err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	ic, err := newInteractionContext(i)
	if err == nil {
		err = fn(ctx, ic)
	}
	if err != nil {
		return r.FollowUp(errorEmbed(err))
	}
	return nil
}

// HandlePrevious handles the previous button.
func (h *ComponentHandlers) HandlePrevious(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return acknowledged(i, r, func(ctx context.Context, ic interactionContext) error {
		return h.commands.playback.Previous(ctx, usecases.PreviousInput{GuildID: ic.GuildID})
	})
}

// HandleStop handles the stop button.
func (h *ComponentHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return acknowledged(i, r, func(ctx context.Context, ic interactionContext) error {
		return h.commands.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: ic.GuildID})
	})
}

// HandlePause handles the pause/resume button.
func (h *ComponentHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return acknowledged(i, r, func(ctx context.Context, ic interactionContext) error {
		return h.commands.playback.TogglePause(ctx, usecases.PauseInput{GuildID: ic.GuildID})
	})
}

// HandleNext handles the next button.
func (h *ComponentHandlers) HandleNext(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return acknowledged(i, r, func(ctx context.Context, ic interactionContext) error {
		return h.commands.playback.Skip(ctx, usecases.SkipInput{GuildID: ic.GuildID})
	})
}

// HandleLoop handles the loop button.
func (h *ComponentHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return acknowledged(i, r, func(ctx context.Context, ic interactionContext) error {
		_, err := h.commands.playback.ToggleLoop(ctx, usecases.LoopInput{GuildID: ic.GuildID})
		return err
	})
}
