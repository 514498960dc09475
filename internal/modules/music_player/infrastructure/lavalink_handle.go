package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// ErrHandleReleased is returned by a play handle whose room left voice.
var ErrHandleReleased = errors.New("play handle released")

// backgroundLoadTimeout bounds track loads that no caller waits on.
const backgroundLoadTimeout = 15 * time.Second

// trackPlayer is the part of a Lavalink player a handle drives.
type trackPlayer interface {
	Update(ctx context.Context, opts ...lavalink.PlayerUpdateOpt) error
}

// trackLoader loads the playable track behind a source URL.
type trackLoader func(ctx context.Context, url string) (lavalink.Track, error)

type loadedTrack struct {
	encoded string
	length  time.Duration
}

// lavalinkHandle is the FIFO play queue of one room on top of a Lavalink player.
// The front entry is loaded into the player; when it leaves the queue, by finishing,
// failing or being skipped, a TrackEndedEvent is published and the next entry starts.
type lavalinkHandle struct {
	guildID   snowflake.ID
	player    trackPlayer
	load      trackLoader
	publisher ports.EventPublisher

	mu       sync.Mutex
	session  uuid.UUID
	queue    domain.PlayQueue[domain.Source]
	loaded   map[uuid.UUID]loadedTrack
	active   uuid.UUID // source in the player, uuid.Nil when idle
	ended    uint64
	released bool

	preload      time.Duration
	preloadTimer *time.Timer
	preloadDue   bool // the active track is within preload of its end
}

var _ ports.PlayHandle = (*lavalinkHandle)(nil)

func newLavalinkHandle(
	guildID snowflake.ID,
	player trackPlayer,
	load trackLoader,
	publisher ports.EventPublisher,
) *lavalinkHandle {
	return &lavalinkHandle{
		guildID:   guildID,
		player:    player,
		load:      load,
		publisher: publisher,
		session:   uuid.New(),
		loaded:    make(map[uuid.UUID]loadedTrack),
	}
}

func (h *lavalinkHandle) ID() uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func (h *lavalinkHandle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue.Len()
}

func (h *lavalinkHandle) Ended() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ended
}

// Enqueue appends src and starts it right away if nothing is playing.
// A source that cannot be loaded is reported through events, not as an error.
func (h *lavalinkHandle) Enqueue(ctx context.Context, src domain.Source, preload time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrHandleReleased
	}
	if preload > 0 {
		h.preload = preload
	}

	h.queue.PushBack(src)

	switch {
	case h.queue.Len() == 1:
		h.startFront(ctx)
	case h.queue.Len() == 2 && h.preloadDue:
		h.preloadNext()
	}
	return nil
}

func (h *lavalinkHandle) Skip(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrHandleReleased
	}
	if h.queue.IsEmpty() {
		return nil
	}

	h.popFront(domain.TrackEndSkipped)

	if h.queue.IsEmpty() {
		return h.idle(ctx)
	}
	h.startFront(ctx)
	return nil
}

func (h *lavalinkHandle) Pause(ctx context.Context) error {
	return h.setPaused(ctx, true)
}

func (h *lavalinkHandle) Resume(ctx context.Context) error {
	return h.setPaused(ctx, false)
}

func (h *lavalinkHandle) setPaused(ctx context.Context, paused bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrHandleReleased
	}
	if err := h.player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		return fmt.Errorf("failed to update pause state: %w", err)
	}
	return nil
}

// Stop drops every entry without publishing end events and starts a new session,
// so events already published for the old entries are recognizably stale.
func (h *lavalinkHandle) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrHandleReleased
	}

	h.queue.Clear()
	clear(h.loaded)
	h.ended = 0
	h.session = uuid.New()

	return h.idle(ctx)
}

func (h *lavalinkHandle) Reorder(ctx context.Context, fn func(q *domain.PlayQueue[domain.Source])) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrHandleReleased
	}

	fn(&h.queue)

	entries := h.queue.Entries()
	for id := range h.loaded {
		if !slices.ContainsFunc(entries, func(s domain.Source) bool { return s.ID == id }) {
			delete(h.loaded, id)
		}
	}

	front, ok := h.queue.Front()
	switch {
	case !ok && h.active != uuid.Nil:
		return h.idle(ctx)
	case ok && front.ID != h.active:
		h.startFront(ctx)
	case h.preloadDue:
		h.preloadNext()
	}
	return nil
}

// release stops the handle for good. The player itself is destroyed by the engine.
func (h *lavalinkHandle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.released = true
	h.queue.Clear()
	clear(h.loaded)
	h.active = uuid.Nil
	h.stopPreload()
}

// onTrackStart is called by the engine when Lavalink started a track.
func (h *lavalinkHandle) onTrackStart(encoded string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isActive(encoded) {
		return
	}
	h.publish(domain.TrackStartedEvent{
		GuildID:  h.guildID,
		Session:  h.session,
		SourceID: h.active,
	})
}

// onTrackEnd is called by the engine when the player track finished or failed to
// load on its own. Ends caused by replacing or stopping the track are not reported.
func (h *lavalinkHandle) onTrackEnd(encoded string, reason domain.TrackEndReason) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isActive(encoded) {
		return
	}
	h.popFront(reason)

	ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
	defer cancel()

	if h.queue.IsEmpty() {
		h.active = uuid.Nil
		h.stopPreload()
		return
	}
	h.startFront(ctx)
}

// onTrackStuck is called by the engine when the player track stopped producing
// audio. Lavalink keeps a stuck track in the player, so the handle reports it and
// skips to the next entry.
func (h *lavalinkHandle) onTrackStuck(encoded string, threshold time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isActive(encoded) {
		return
	}
	h.publish(domain.TrackErroredEvent{
		GuildID:  h.guildID,
		Session:  h.session,
		SourceID: h.active,
		Message:  fmt.Sprintf("track stuck for %s", threshold),
	})
	h.popFront(domain.TrackEndStuck)

	ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
	defer cancel()

	if h.queue.IsEmpty() {
		if err := h.idle(ctx); err != nil {
			slog.Warn("failed to clear stuck track", "guild", h.guildID, "error", err)
		}
		return
	}
	h.startFront(ctx)
}

// onTrackException is called by the engine when the player track failed.
// Lavalink follows it with a load_failed end.
func (h *lavalinkHandle) onTrackException(encoded, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isActive(encoded) {
		return
	}
	h.publish(domain.TrackErroredEvent{
		GuildID:  h.guildID,
		Session:  h.session,
		SourceID: h.active,
		Message:  message,
	})
}

// isActive reports whether encoded is the track the handle put into the player.
// h.mu must be held.
func (h *lavalinkHandle) isActive(encoded string) bool {
	if h.released || h.active == uuid.Nil {
		return false
	}
	track, ok := h.loaded[h.active]
	return ok && track.encoded == encoded
}

// startFront plays the front entry. Entries that fail to load are reported and
// dropped until one starts or the queue runs empty. h.mu must be held.
func (h *lavalinkHandle) startFront(ctx context.Context) {
	h.stopPreload()

	for {
		src, ok := h.queue.Front()
		if !ok {
			h.active = uuid.Nil
			return
		}

		err := h.play(ctx, src)
		if err == nil {
			return
		}

		slog.Warn("failed to start source", "guild", h.guildID, "url", src.URL, "error", err)
		h.publish(domain.TrackErroredEvent{
			GuildID:  h.guildID,
			Session:  h.session,
			SourceID: src.ID,
			Message:  err.Error(),
		})
		h.active = uuid.Nil
		h.popFront(domain.TrackEndLoadFailed)
	}
}

func (h *lavalinkHandle) play(ctx context.Context, src domain.Source) error {
	track, err := h.track(ctx, src)
	if err != nil {
		return err
	}

	// Use WithEncodedTrack to avoid userData:null issue
	if err := h.player.Update(ctx, lavalink.WithEncodedTrack(track.encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	h.active = src.ID
	h.schedulePreload(track.length)
	return nil
}

// idle empties the player. h.mu must be held.
func (h *lavalinkHandle) idle(ctx context.Context) error {
	h.active = uuid.Nil
	h.stopPreload()

	if err := h.player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

func (h *lavalinkHandle) track(ctx context.Context, src domain.Source) (loadedTrack, error) {
	if track, ok := h.loaded[src.ID]; ok {
		return track, nil
	}

	t, err := h.load(ctx, src.URL)
	if err != nil {
		return loadedTrack{}, err
	}

	track := newLoadedTrack(t)
	h.loaded[src.ID] = track
	return track, nil
}

func newLoadedTrack(t lavalink.Track) loadedTrack {
	return loadedTrack{
		encoded: t.Encoded,
		length:  time.Duration(t.Info.Length) * time.Millisecond,
	}
}

// popFront drops the front entry and publishes its end. h.mu must be held.
func (h *lavalinkHandle) popFront(reason domain.TrackEndReason) {
	src, ok := h.queue.PopFront()
	if !ok {
		return
	}
	delete(h.loaded, src.ID)
	h.ended++

	h.publish(domain.TrackEndedEvent{
		GuildID:  h.guildID,
		Session:  h.session,
		SourceID: src.ID,
		Reason:   reason,
	})
}

func (h *lavalinkHandle) publish(event domain.Event) {
	if err := h.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish playback event", "event", event, "error", err)
	}
}

// schedulePreload arms loading of the next entry preload before the active track
// ends. Streams have no length and never preload. h.mu must be held.
func (h *lavalinkHandle) schedulePreload(length time.Duration) {
	h.stopPreload()
	if length <= 0 {
		return
	}

	session := h.session
	delay := max(length-h.preload, 0)
	h.preloadTimer = time.AfterFunc(delay, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.released || h.session != session {
			return
		}
		h.preloadDue = true
		h.preloadNext()
	})
}

// stopPreload h.mu must be held.
func (h *lavalinkHandle) stopPreload() {
	if h.preloadTimer != nil {
		h.preloadTimer.Stop()
		h.preloadTimer = nil
	}
	h.preloadDue = false
}

// preloadNext loads the entry behind the active one in the background.
// h.mu must be held.
func (h *lavalinkHandle) preloadNext() {
	next, ok := h.queue.At(1)
	if !ok {
		return
	}
	if _, ok := h.loaded[next.ID]; ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
		defer cancel()

		t, err := h.load(ctx, next.URL)
		if err != nil {
			// Retried when the entry starts.
			slog.Debug("failed to preload source", "guild", h.guildID, "url", next.URL, "error", err)
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		if h.released || !slices.ContainsFunc(h.queue.Entries(), func(s domain.Source) bool {
			return s.ID == next.ID
		}) {
			return
		}
		h.loaded[next.ID] = newLoadedTrack(t)
		slog.Debug("preloaded source", "guild", h.guildID, "url", next.URL)
	}()
}
