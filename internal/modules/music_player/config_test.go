package music_player

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "localhost:2333")
	t.Setenv("LAVALINK_PASSWORD", "youshallnotpass")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := m.config
	if cfg.LavalinkSecure {
		t.Error("expected insecure connection by default")
	}
	if cfg.PlaylistDir != "./playlists" {
		t.Errorf("expected default playlist dir, got %q", cfg.PlaylistDir)
	}
	if cfg.Preload != 10*time.Second {
		t.Errorf("expected 10s preload, got %v", cfg.Preload)
	}
	if cfg.StatusEditInterval != time.Second {
		t.Errorf("expected 1s edit interval, got %v", cfg.StatusEditInterval)
	}
	if cfg.ChatTimeout != 5*time.Second || cfg.EngineTimeout != 15*time.Second {
		t.Errorf("unexpected timeouts: chat %v, engine %v", cfg.ChatTimeout, cfg.EngineTimeout)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "lavalink:443")
	t.Setenv("LAVALINK_PASSWORD", "secret")
	t.Setenv("LAVALINK_SECURE", "true")
	t.Setenv("YT_DLP_ARGS", "--cookies cookies.txt")
	t.Setenv("PRELOAD", "30s")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.config.LavalinkSecure {
		t.Error("expected secure connection")
	}
	if m.config.YtDlpArgs != "--cookies cookies.txt" {
		t.Errorf("unexpected yt-dlp args %q", m.config.YtDlpArgs)
	}
	if m.config.Preload != 30*time.Second {
		t.Errorf("expected 30s preload, got %v", m.config.Preload)
	}
}

func TestLoadConfig_MissingLavalink(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "")
	t.Setenv("LAVALINK_PASSWORD", "")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err == nil {
		t.Error("expected error for missing Lavalink configuration")
	}
}
