package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// LavalinkEngine is the voice engine backed by a Lavalink node through DisGoLink.
// Each connected room gets a play handle; player events are routed to it and
// published as domain events.
type LavalinkEngine struct {
	link      disgolink.Client
	gateway   *voiceGateway
	publisher ports.EventPublisher

	mu      sync.RWMutex
	handles map[snowflake.ID]*lavalinkHandle
}

var _ ports.VoiceEngine = (*LavalinkEngine)(nil)

// NewLavalinkEngine creates a new LavalinkEngine and connects to the Lavalink node.
func NewLavalinkEngine(
	session *discordgo.Session,
	publisher ports.EventPublisher,
	config LavalinkConfig,
) (*LavalinkEngine, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	engine := &LavalinkEngine{
		gateway:   newVoiceGateway(session, botID),
		publisher: publisher,
		handles:   make(map[snowflake.ID]*lavalinkHandle),
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(engine.onTrackStart),
		disgolink.WithListenerFunc(engine.onTrackEnd),
		disgolink.WithListenerFunc(engine.onTrackException),
		disgolink.WithListenerFunc(engine.onTrackStuck),
	)
	engine.link = link
	engine.gateway.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return engine, nil
}

// Connect joins the voice channel and gives the room a fresh play handle.
func (e *LavalinkEngine) Connect(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (ports.PlayHandle, error) {
	if err := e.gateway.join(ctx, guildID, channelID); err != nil {
		return nil, err
	}

	handle := newLavalinkHandle(guildID, e.link.Player(guildID), e.loadTrack, e.publisher)

	e.mu.Lock()
	old := e.handles[guildID]
	e.handles[guildID] = handle
	e.mu.Unlock()

	if old != nil {
		old.release()
	}

	return handle, nil
}

// Handle returns the live play handle of the room.
func (e *LavalinkEngine) Handle(guildID snowflake.ID) (ports.PlayHandle, bool) {
	handle := e.handle(guildID)
	if handle == nil {
		return nil, false
	}
	return handle, true
}

func (e *LavalinkEngine) handle(guildID snowflake.ID) *lavalinkHandle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handles[guildID]
}

// Release drops the room's handle, destroys its player and leaves voice.
func (e *LavalinkEngine) Release(ctx context.Context, guildID snowflake.ID) error {
	e.mu.Lock()
	handle := e.handles[guildID]
	delete(e.handles, guildID)
	e.mu.Unlock()

	if handle != nil {
		handle.release()
	}

	if player := e.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	return e.gateway.leave(guildID)
}

// Close disconnects from Lavalink.
func (e *LavalinkEngine) Close() {
	e.link.Close()
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (e *LavalinkEngine) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	e.gateway.onVoiceServerUpdate(event)
}

// OnVoiceStateUpdate handles Discord voice state updates.
// This must be called from the Discord event handler.
func (e *LavalinkEngine) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	e.gateway.onVoiceStateUpdate(event)
}

// loadTrack asks the best node for the playable track behind url.
func (e *LavalinkEngine) loadTrack(ctx context.Context, url string) (lavalink.Track, error) {
	node := e.link.BestNode()
	if node == nil {
		return lavalink.Track{}, errors.New("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, url)
	if err != nil {
		return lavalink.Track{}, fmt.Errorf("failed to load track: %w", err)
	}

	return firstTrack(result)
}

func firstTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], nil
		}
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			return data.Tracks[0], nil
		}
	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("failed to load track: %s", data.Message)
	}
	return lavalink.Track{}, domain.ErrNoResults
}

func (e *LavalinkEngine) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)

	if handle := e.handle(player.GuildID()); handle != nil {
		handle.onTrackStart(event.Track.Encoded)
	}
}

func (e *LavalinkEngine) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	reason, ok := convertEndReason(event.Reason)
	if !ok {
		return
	}
	if handle := e.handle(player.GuildID()); handle != nil {
		handle.onTrackEnd(event.Track.Encoded, reason)
	}
}

func (e *LavalinkEngine) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)

	if handle := e.handle(player.GuildID()); handle != nil {
		handle.onTrackException(event.Track.Encoded, event.Exception.Message)
	}
}

func (e *LavalinkEngine) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	if handle := e.handle(player.GuildID()); handle != nil {
		handle.onTrackStuck(event.Track.Encoded, time.Duration(event.Threshold)*time.Millisecond)
	}
}

// convertEndReason maps the ends the player reaches on its own. Replaced, stopped
// and cleaned up tracks were ended by a handle, which already reported them.
func convertEndReason(reason lavalink.TrackEndReason) (domain.TrackEndReason, bool) {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished, true
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed, true
	default:
		return "", false
	}
}
