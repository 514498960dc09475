package domain

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Event is a playback lifecycle notification emitted by the voice engine.
type Event interface {
	EventGuildID() snowflake.ID
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to its end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the engine could not load the track.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndSkipped means the track was popped by a skip command.
	TrackEndSkipped TrackEndReason = "skipped"
	// TrackEndStuck means the engine stopped receiving frames for the track.
	TrackEndStuck TrackEndReason = "stuck"
)

// TrackStartedEvent is published when the engine starts playing a source.
type TrackStartedEvent struct {
	GuildID  snowflake.ID
	Session  uuid.UUID
	SourceID uuid.UUID
}

// TrackEndedEvent is published when a source leaves the engine's play queue.
type TrackEndedEvent struct {
	GuildID  snowflake.ID
	Session  uuid.UUID
	SourceID uuid.UUID
	Reason   TrackEndReason
}

// TrackErroredEvent is published when a source fails during loading or playback.
// The engine follows it with a TrackEndedEvent for the same source.
type TrackErroredEvent struct {
	GuildID  snowflake.ID
	Session  uuid.UUID
	SourceID uuid.UUID
	Message  string
}

func (e TrackStartedEvent) EventGuildID() snowflake.ID { return e.GuildID }
func (e TrackEndedEvent) EventGuildID() snowflake.ID   { return e.GuildID }
func (e TrackErroredEvent) EventGuildID() snowflake.ID { return e.GuildID }
