package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	// YtDlpArgs are extra arguments for every yt-dlp call, e.g. "--cookies cookies.txt".
	YtDlpArgs   string `env:"YT_DLP_ARGS"`
	PlaylistDir string `env:"PLAYLIST_DIR" envDefault:"./playlists"`

	Preload            time.Duration `env:"PRELOAD" envDefault:"10s"`
	StatusEditInterval time.Duration `env:"STATUS_EDIT_INTERVAL" envDefault:"1s"`
	ChatTimeout        time.Duration `env:"CHAT_TIMEOUT" envDefault:"5s"`
	EngineTimeout      time.Duration `env:"ENGINE_TIMEOUT" envDefault:"15s"`
}
