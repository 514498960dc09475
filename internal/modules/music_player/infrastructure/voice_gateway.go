package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/snowflake/v2"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// joinWaiter is closed once a join has seen both its voice state and voice server updates.
type joinWaiter struct {
	mu        sync.Mutex
	gotState  bool
	gotServer bool
	ready     chan struct{}
}

func (w *joinWaiter) mark(state bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if state {
		w.gotState = true
	} else {
		w.gotServer = true
	}

	if w.gotState && w.gotServer {
		select {
		case <-w.ready:
		default:
			close(w.ready)
		}
	}
}

// voiceUpdates collects the two halves of a voice handshake.
// Lavalink rejects a partial voice state, so nothing is forwarded until both
// halves arrived, in whatever order Discord sent them.
type voiceUpdates struct {
	mu sync.Mutex

	gotState  bool
	channelID *snowflake.ID
	sessionID string

	gotServer bool
	token     string
	endpoint  string
}

func (u *voiceUpdates) putState(channelID *snowflake.ID, sessionID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.gotState = true
	u.channelID = channelID
	u.sessionID = sessionID
	return u.gotServer
}

func (u *voiceUpdates) putServer(token, endpoint string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.gotServer = true
	u.token = token
	u.endpoint = endpoint
	return u.gotState
}

// take returns the collected handshake and empties the buffer.
func (u *voiceUpdates) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	channelID, sessionID, token, endpoint = u.channelID, u.sessionID, u.token, u.endpoint
	*u = voiceUpdates{}
	return
}

// voiceGateway joins and leaves voice channels through the Discord gateway and
// relays the resulting handshake to Lavalink.
type voiceGateway struct {
	session *discordgo.Session
	link    disgolink.Client
	botID   snowflake.ID

	waitersMu sync.Mutex
	waiters   map[snowflake.ID]*joinWaiter

	updatesMu sync.Mutex
	updates   map[snowflake.ID]*voiceUpdates
}

func newVoiceGateway(session *discordgo.Session, botID snowflake.ID) *voiceGateway {
	return &voiceGateway{
		session: session,
		botID:   botID,
		waiters: make(map[snowflake.ID]*joinWaiter),
		updates: make(map[snowflake.ID]*voiceUpdates),
	}
}

// join connects to a voice channel and waits until Lavalink got the full handshake.
func (g *voiceGateway) join(ctx context.Context, guildID, channelID snowflake.ID) error {
	waiter := &joinWaiter{ready: make(chan struct{})}

	g.waitersMu.Lock()
	g.waiters[guildID] = waiter
	g.waitersMu.Unlock()

	defer func() {
		g.waitersMu.Lock()
		delete(g.waiters, guildID)
		g.waitersMu.Unlock()
	}()

	err := g.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-waiter.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// leave disconnects from the voice channel of the guild.
func (g *voiceGateway) leave(guildID snowflake.ID) error {
	err := g.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

func (g *voiceGateway) onVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := g.buffer(guildID)
	if buffer.putServer(event.Token, event.Endpoint) {
		g.forward(guildID, buffer)
	}

	g.notify(guildID, false)
}

func (g *voiceGateway) onVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != g.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// A disconnect has no server half.
	if channelID == nil {
		g.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		g.updatesMu.Lock()
		delete(g.updates, guildID)
		g.updatesMu.Unlock()
		return
	}

	buffer := g.buffer(guildID)
	if buffer.putState(channelID, event.SessionID) {
		g.forward(guildID, buffer)
	}

	g.notify(guildID, true)
}

func (g *voiceGateway) buffer(guildID snowflake.ID) *voiceUpdates {
	g.updatesMu.Lock()
	defer g.updatesMu.Unlock()

	buffer, ok := g.updates[guildID]
	if !ok {
		buffer = &voiceUpdates{}
		g.updates[guildID] = buffer
	}
	return buffer
}

func (g *voiceGateway) notify(guildID snowflake.ID, state bool) {
	g.waitersMu.Lock()
	waiter := g.waiters[guildID]
	g.waitersMu.Unlock()

	if waiter != nil {
		waiter.mark(state)
	}
}

func (g *voiceGateway) forward(guildID snowflake.ID, buffer *voiceUpdates) {
	channelID, sessionID, token, endpoint := buffer.take()

	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", channelID,
		"hasSessionID", sessionID != "",
	)

	g.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	g.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}
