package music_player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/bot"
	"github.com/sglre6355/beat/internal/modules/music_player/application"
	"github.com/sglre6355/beat/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/beat/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/beat/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config            *Config
	commandHandlers   *discord.CommandHandlers
	componentHandlers *discord.ComponentHandlers
	eventHandlers     *discord.EventHandlers
	engine            *infrastructure.LavalinkEngine
	voiceChannel      *usecases.VoiceChannelService

	// Event-driven components
	eventBus        *infrastructure.ChannelEventBus
	playbackHandler *application.PlaybackEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":  m.commandHandlers.HandlePlay,
		"pause": m.commandHandlers.HandlePause,
		"stop":  m.commandHandlers.HandleStop,
		"next":  m.commandHandlers.HandleNext,
		"prev":  m.commandHandlers.HandlePrev,
		"loop":  m.commandHandlers.HandleLoop,
		"clean": m.commandHandlers.HandleClean,
		"save":  m.commandHandlers.HandleSave,
		"load":  m.commandHandlers.HandleLoad,
		"list":  m.commandHandlers.HandleList,
	}
}

// ComponentHandlers returns the status message button handlers for this module.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return m.componentHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires an open Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}

	// Create event bus (needed by the engine for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus()

	engine, err := infrastructure.NewLavalinkEngine(
		deps.Session,
		m.eventBus,
		infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
	)
	if err != nil {
		m.eventBus.Close()
		return err
	}
	m.engine = engine

	// Create infrastructure
	queues := infrastructure.NewMemoryQueueStore()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	chat := infrastructure.NewDiscordChat(deps.Session, m.config.StatusEditInterval)
	resolver := infrastructure.NewYtdlpResolver(m.config.YtDlpArgs)
	playlists := infrastructure.NewFilePlaylistStore(m.config.PlaylistDir)

	// Create services
	status := usecases.NewStatusPresenter(chat, m.config.ChatTimeout)
	closer := usecases.NewRoomCloser(engine, status, m.config.EngineTimeout)
	trackLoader := usecases.NewTrackLoaderService(resolver)
	m.voiceChannel = usecases.NewVoiceChannelService(
		queues,
		engine,
		voiceState,
		status,
		closer,
		m.config.EngineTimeout,
	)
	playback := usecases.NewPlaybackService(
		queues,
		engine,
		status,
		m.config.Preload,
		m.config.EngineTimeout,
	)
	queue := usecases.NewQueueService(
		queues,
		engine,
		chat,
		m.voiceChannel,
		trackLoader,
		status,
		m.config.Preload,
		m.config.EngineTimeout,
	)
	playlist := usecases.NewPlaylistService(playlists, queues, m.voiceChannel, queue)

	// Create application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(
		queues,
		engine,
		status,
		closer,
		m.eventBus,
		m.config.EngineTimeout,
	)
	if err := m.playbackHandler.Start(); err != nil {
		return err
	}

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(m.voiceChannel, playback, queue, playlist)
	m.componentHandlers = discord.NewComponentHandlers(m.commandHandlers)
	m.eventHandlers = discord.NewEventHandlers(botID, m.voiceChannel)

	slog.Info("music_player module initialized",
		"lavalink", m.config.LavalinkAddress,
		"playlist_dir", m.config.PlaylistDir,
	)

	return nil
}

// Shutdown closes every room and cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.voiceChannel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.EngineTimeout)
		m.voiceChannel.CloseAll(ctx)
		cancel()
	}

	// Close event bus
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.engine != nil {
		m.engine.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.engine != nil {
		m.engine.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.engine != nil {
		m.engine.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
