package domain

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// QueueState is the playback state of a single room (guild).
// It must only be accessed while holding the room's lock in a QueueStore.
type QueueState struct {
	guildID       snowflake.ID
	channelID     snowflake.ID   // text channel hosting the status message
	session       uuid.UUID      // engine handle this state is bound to
	statusMessage *StatusMessage // at most one per room
	Queue         Queue
	paused        bool
	repeat        bool
	stopping      bool // set while torn down or not yet begun; rejects inserts
	pendingSkips  int    // track ends that must not advance the index
	observedEnds  uint64 // track ends of the current session seen so far
}

// NewQueueState creates an empty state for the guild. It starts out stopping
// until Begin is called.
func NewQueueState(guildID snowflake.ID) *QueueState {
	return &QueueState{
		guildID:  guildID,
		Queue:    NewQueue(),
		stopping: true,
	}
}

// GuildID returns the room this state belongs to.
func (s *QueueState) GuildID() snowflake.ID {
	return s.guildID
}

// ChannelID returns the text channel the status message lives in.
func (s *QueueState) ChannelID() snowflake.ID {
	return s.channelID
}

// Session returns the engine session the state is bound to.
func (s *QueueState) Session() uuid.UUID {
	return s.session
}

// BoundTo reports whether events from the given engine session apply to this state.
func (s *QueueState) BoundTo(session uuid.UUID) bool {
	return !s.stopping && s.session == session
}

// Begin binds the state to an engine session and accepts insertions again.
func (s *QueueState) Begin(channelID snowflake.ID, session uuid.UUID) {
	s.channelID = channelID
	s.session = session
	s.pendingSkips = 0
	s.observedEnds = 0
	s.stopping = false
}

// IsStopping returns true while the room is torn down.
func (s *QueueState) IsStopping() bool {
	return s.stopping
}

// IsActive returns true when the room has begun and holds at least one track.
func (s *QueueState) IsActive() bool {
	return !s.stopping && !s.Queue.IsEmpty()
}

// Insert appends a track. It reports whether it is the first track of the room.
func (s *QueueState) Insert(track TrackMetadata) (first bool, err error) {
	if s.stopping {
		return false, ErrStopping
	}
	first = s.Queue.IsEmpty()
	s.Queue.Append(track)
	return first, nil
}

// Reset empties the state and marks it stopping. It returns the status message
// that was live, if any, so the caller can delete it.
func (s *QueueState) Reset() *StatusMessage {
	msg := s.statusMessage
	s.statusMessage = nil
	s.Queue.Clear()
	s.session = uuid.Nil
	s.paused = false
	s.repeat = false
	s.pendingSkips = 0
	s.observedEnds = 0
	s.stopping = true
	return msg
}

// IsPaused returns true if playback is paused.
func (s *QueueState) IsPaused() bool {
	return s.paused
}

// SetPaused sets the paused flag.
func (s *QueueState) SetPaused(paused bool) {
	s.paused = paused
}

// TogglePaused flips the paused flag and returns the new value.
func (s *QueueState) TogglePaused() bool {
	s.paused = !s.paused
	return s.paused
}

// IsRepeat returns true if the loop toggle is on.
func (s *QueueState) IsRepeat() bool {
	return s.repeat
}

// ToggleRepeat flips the loop toggle and returns the new value.
func (s *QueueState) ToggleRepeat() bool {
	s.repeat = !s.repeat
	return s.repeat
}

// DidSkip returns true if the next track end must not advance the index.
func (s *QueueState) DidSkip() bool {
	return s.pendingSkips > 0
}

// StepBack moves the index to the previous track (staying at 0 on the first one)
// and marks the end of the track being skipped as already accounted for.
// published is the number of track ends the engine session had emitted before
// the skip; ends emitted but not yet observed belong to tracks the step back
// replaces, so they are accounted for as well.
func (s *QueueState) StepBack(published uint64) {
	s.Queue.Retreat()
	inFlight := 0
	if published > s.observedEnds {
		inFlight = int(published - s.observedEnds)
	}
	s.pendingSkips = inFlight + 1
}

// ConsumeSkip records a track end and reports whether it was already accounted
// for by a manual transport command.
func (s *QueueState) ConsumeSkip() bool {
	s.observedEnds++
	if s.pendingSkips == 0 {
		return false
	}
	s.pendingSkips--
	return true
}

// AdvanceTrack moves to the next track and clears pause.
// Returns false if the current track is the last one.
func (s *QueueState) AdvanceTrack() bool {
	if !s.Queue.Advance() {
		return false
	}
	s.paused = false
	return true
}

// StatusMessage returns the live status message, or nil if none was sent.
func (s *QueueState) StatusMessage() *StatusMessage {
	return s.statusMessage
}

// SetStatusMessage records the live status message.
func (s *QueueState) SetStatusMessage(msg StatusMessage) {
	s.statusMessage = &msg
}
