package domain

import "github.com/disgoorg/snowflake/v2"

// StatusMessage identifies the live status message of a room.
// Both values are needed for editing and deletion since the message stays in the
// channel it was first sent to.
type StatusMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

func NewStatusMessage(channelID snowflake.ID, messageID snowflake.ID) StatusMessage {
	return StatusMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}
