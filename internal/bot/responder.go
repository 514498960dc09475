package bot

import "github.com/bwmarrin/discordgo"

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction, showing a loading state until the
	// response is edited or deleted.
	Defer(ephemeral bool) error

	// Edit replaces the deferred response with an embed.
	Edit(embed *discordgo.MessageEmbed) error

	// Delete removes the deferred response.
	Delete() error

	// FollowUp sends an ephemeral message after the interaction was acknowledged.
	FollowUp(embed *discordgo.MessageEmbed) error
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

func (r *DiscordResponder) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func (r *DiscordResponder) Edit(embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	return err
}

func (r *DiscordResponder) Delete() error {
	return r.session.InteractionResponseDelete(r.interaction)
}

func (r *DiscordResponder) FollowUp(embed *discordgo.MessageEmbed) error {
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Deferred     bool
	Ephemeral    bool
	Edited       *discordgo.MessageEmbed
	Deleted      bool
	FollowUps    []*discordgo.MessageEmbed
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records the deferral for testing.
func (m *MockResponder) Defer(ephemeral bool) error {
	m.Deferred = true
	m.Ephemeral = ephemeral
	return m.Err
}

// Edit records the edited embed for testing.
func (m *MockResponder) Edit(embed *discordgo.MessageEmbed) error {
	m.Edited = embed
	return m.Err
}

// Delete records the deletion for testing.
func (m *MockResponder) Delete() error {
	m.Deleted = true
	return m.Err
}

// FollowUp records the follow-up for testing.
func (m *MockResponder) FollowUp(embed *discordgo.MessageEmbed) error {
	m.FollowUps = append(m.FollowUps, embed)
	return m.Err
}
