package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// ChatTransport sends the status message of a room to the chat platform.
type ChatTransport interface {
	// SendStatus posts a new status message and returns its ID.
	SendStatus(ctx context.Context, channelID snowflake.ID, view domain.StatusView) (snowflake.ID, error)

	// EditStatus replaces the content of an existing status message.
	EditStatus(ctx context.Context, msg domain.StatusMessage, view domain.StatusView) error

	// DeleteMessage deletes a status message.
	DeleteMessage(ctx context.Context, msg domain.StatusMessage) error

	// PurgeBotMessages deletes the bot's recent messages in the channel except keep.
	// Returns the number of deleted messages.
	PurgeBotMessages(ctx context.Context, channelID snowflake.ID, keep *snowflake.ID) (int, error)
}
