package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// purgeScanLimit is how many recent messages a purge looks at. Discord caps both
// the history page and a bulk delete at 100.
const purgeScanLimit = 100

// bulkDeleteMaxAge is the age past which Discord refuses a message in a bulk
// delete, less a minute for clock skew.
const bulkDeleteMaxAge = 14*24*time.Hour - time.Minute

// DefaultStatusEditInterval is the minimum spacing of edits to one status message.
const DefaultStatusEditInterval = time.Second

// DiscordChat sends status messages to Discord channels.
// Edits of one message are throttled so a burst of track changes does not run
// into Discord's per-channel rate limit.
type DiscordChat struct {
	session      *discordgo.Session
	editInterval time.Duration

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
}

var _ ports.ChatTransport = (*DiscordChat)(nil)

// NewDiscordChat creates a new DiscordChat.
func NewDiscordChat(session *discordgo.Session, editInterval time.Duration) *DiscordChat {
	if editInterval <= 0 {
		editInterval = DefaultStatusEditInterval
	}
	return &DiscordChat{
		session:      session,
		editInterval: editInterval,
		limiters:     make(map[snowflake.ID]*rate.Limiter),
	}
}

// SendStatus posts the status embed with its control row and returns the message ID.
func (c *DiscordChat) SendStatus(
	ctx context.Context,
	channelID snowflake.ID,
	view domain.StatusView,
) (snowflake.ID, error) {
	msg, err := c.session.ChannelMessageSendComplex(
		channelID.String(),
		&discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{statusEmbed(view)},
			Components: statusComponents(view),
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to send status message: %w", err)
	}

	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// EditStatus replaces the embed and controls of a status message.
func (c *DiscordChat) EditStatus(
	ctx context.Context,
	msg domain.StatusMessage,
	view domain.StatusView,
) error {
	if err := c.limiter(msg.MessageID).Wait(ctx); err != nil {
		return fmt.Errorf("status edit throttled: %w", err)
	}

	embeds := []*discordgo.MessageEmbed{statusEmbed(view)}
	components := statusComponents(view)

	_, err := c.session.ChannelMessageEditComplex(
		&discordgo.MessageEdit{
			ID:         msg.MessageID.String(),
			Channel:    msg.ChannelID.String(),
			Embeds:     &embeds,
			Components: &components,
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to edit status message: %w", err)
	}
	return nil
}

// DeleteMessage deletes a message from the channel.
func (c *DiscordChat) DeleteMessage(ctx context.Context, msg domain.StatusMessage) error {
	c.mu.Lock()
	delete(c.limiters, msg.MessageID)
	c.mu.Unlock()

	return c.session.ChannelMessageDelete(
		msg.ChannelID.String(),
		msg.MessageID.String(),
		discordgo.WithContext(ctx),
	)
}

// PurgeBotMessages deletes the bot's messages among the latest ones in the channel.
func (c *DiscordChat) PurgeBotMessages(
	ctx context.Context,
	channelID snowflake.ID,
	keep *snowflake.ID,
) (int, error) {
	messages, err := c.session.ChannelMessages(
		channelID.String(), purgeScanLimit, "", "", "",
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	recent, old := purgeable(messages, c.session.State.User.ID, keep, time.Now())

	// Bulk deletion needs at least two messages.
	if len(recent) == 1 {
		old = append(old, recent...)
		recent = nil
	}

	deleted := 0
	if len(recent) > 0 {
		err := c.session.ChannelMessagesBulkDelete(channelID.String(), recent, discordgo.WithContext(ctx))
		if err != nil {
			return 0, fmt.Errorf("failed to delete messages: %w", err)
		}
		deleted += len(recent)
	}
	for _, id := range old {
		if err := c.session.ChannelMessageDelete(channelID.String(), id, discordgo.WithContext(ctx)); err != nil {
			return deleted, fmt.Errorf("failed to delete message: %w", err)
		}
		deleted++
	}

	return deleted, nil
}

func (c *DiscordChat) limiter(messageID snowflake.ID) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[messageID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.editInterval), 2)
		c.limiters[messageID] = limiter
	}
	return limiter
}

// purgeable returns the IDs of the bot's messages, leaving out keep, split into
// those young enough for a bulk delete and older ones.
func purgeable(
	messages []*discordgo.Message,
	botID string,
	keep *snowflake.ID,
	now time.Time,
) (recent, old []string) {
	for _, m := range messages {
		if m.Author == nil || m.Author.ID != botID {
			continue
		}
		if keep != nil && m.ID == keep.String() {
			continue
		}
		if now.Sub(m.Timestamp) < bulkDeleteMaxAge {
			recent = append(recent, m.ID)
		} else {
			old = append(old, m.ID)
		}
	}
	return recent, old
}

func statusEmbed(view domain.StatusView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: view.Header,
		},
		Title:       view.Title,
		URL:         view.URL,
		Description: strings.Join(view.Body, "\n"),
		Footer: &discordgo.MessageEmbedFooter{
			Text: view.Footer,
		},
	}

	if view.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: view.ThumbnailURL,
		}
	}

	return embed
}

func statusComponents(view domain.StatusView) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(view.Controls))
	for _, control := range view.Controls {
		buttons = append(buttons, discordgo.Button{
			Emoji:    &discordgo.ComponentEmoji{Name: control.Emoji},
			Style:    buttonStyle(control.Style),
			CustomID: string(control.Control),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

func buttonStyle(style domain.ControlStyle) discordgo.ButtonStyle {
	switch style {
	case domain.ControlStylePrimary:
		return discordgo.PrimaryButton
	case domain.ControlStyleSuccess:
		return discordgo.SuccessButton
	case domain.ControlStyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}
