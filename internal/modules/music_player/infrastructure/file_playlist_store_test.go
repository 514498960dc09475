package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

func TestFilePlaylistStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePlaylistStore(dir)
	ctx := context.Background()
	guildID := snowflake.ID(42)

	refs := []string{
		"https://www.youtube.com/watch?v=1",
		"https://www.youtube.com/watch?v=2",
	}
	if err := store.Save(ctx, guildID, "mix", refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "42", "mix.playlist"))
	if err != nil {
		t.Fatalf("expected playlist file: %v", err)
	}
	if string(data) != refs[0]+"\n"+refs[1] {
		t.Errorf("unexpected file content %q", data)
	}

	got, err := store.Load(ctx, guildID, "mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, refs) {
		t.Errorf("expected %v, got %v", refs, got)
	}

	// Saving again replaces the playlist.
	if err := store.Save(ctx, guildID, "mix", refs[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = store.Load(ctx, guildID, "mix")
	if !slices.Equal(got, refs[:1]) {
		t.Errorf("expected %v, got %v", refs[:1], got)
	}
}

func TestFilePlaylistStore_LoadMissing(t *testing.T) {
	store := NewFilePlaylistStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Load(ctx, 1, "nope")
	if !errors.Is(err, domain.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}

	store.Save(ctx, 1, "other", []string{"https://example.com"})
	_, err = store.Load(ctx, 1, "nope")
	if !errors.Is(err, domain.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestFilePlaylistStore_LoadSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePlaylistStore(dir)

	guildDir := filepath.Join(dir, "7")
	if err := os.MkdirAll(guildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "https://a\r\n\nhttps://b\n"
	if err := os.WriteFile(filepath.Join(guildDir, "old.playlist"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(context.Background(), 7, "old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"https://a", "https://b"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFilePlaylistStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewFilePlaylistStore(dir)
	ctx := context.Background()

	names, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no playlists, got %v", names)
	}

	for _, name := range []domain.PlaylistName{"zeta", "alpha", "mid"} {
		if err := store.Save(ctx, 1, name, []string{"https://example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	store.Save(ctx, 2, "elsewhere", []string{"https://example.com"})
	os.WriteFile(filepath.Join(dir, "1", "notes.txt"), []byte("x"), 0o644)

	names, err = store.List(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.PlaylistName{"alpha", "mid", "zeta"}
	if !slices.Equal(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}
