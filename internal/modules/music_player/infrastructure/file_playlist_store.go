package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofrs/flock"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

const (
	playlistExt       = ".playlist"
	playlistLockFile  = ".lock"
	lockRetryInterval = 50 * time.Millisecond
)

// FilePlaylistStore keeps playlists as newline-separated URL files under
// <dir>/<guild>/<name>.playlist. Access to a guild directory is serialized with a
// lock file, so several processes may share the directory.
type FilePlaylistStore struct {
	dir string
}

var _ ports.PlaylistStore = (*FilePlaylistStore)(nil)

// NewFilePlaylistStore creates a new FilePlaylistStore rooted at dir.
func NewFilePlaylistStore(dir string) *FilePlaylistStore {
	return &FilePlaylistStore{dir: dir}
}

// Save writes the playlist, replacing one of the same name.
func (s *FilePlaylistStore) Save(
	ctx context.Context,
	guildID snowflake.ID,
	name domain.PlaylistName,
	refs []string,
) error {
	guildDir := s.guildDir(guildID)
	if err := os.MkdirAll(guildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create playlist directory: %w", err)
	}

	lock := flock.New(filepath.Join(guildDir, playlistLockFile))
	if _, err := lock.TryLockContext(ctx, lockRetryInterval); err != nil {
		return fmt.Errorf("failed to lock playlists: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(guildDir, "*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(refs, "\n")); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path(guildID, name))
}

// Load reads the playlist's URLs in order.
func (s *FilePlaylistStore) Load(
	ctx context.Context,
	guildID snowflake.ID,
	name domain.PlaylistName,
) ([]string, error) {
	unlock, err := s.readLock(ctx, guildID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path(guildID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaylistNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var refs []string
	for line := range strings.Lines(string(data)) {
		if ref := strings.TrimSpace(line); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// List returns the guild's playlist names in alphabetical order.
func (s *FilePlaylistStore) List(ctx context.Context, guildID snowflake.ID) ([]domain.PlaylistName, error) {
	unlock, err := s.readLock(ctx, guildID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(s.guildDir(guildID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []domain.PlaylistName
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), playlistExt)
		if !ok || entry.IsDir() {
			continue
		}
		name, err := domain.NewPlaylistName(base)
		if err != nil {
			// Not written by this store.
			continue
		}
		names = append(names, name)
	}

	slices.Sort(names)
	return names, nil
}

// readLock takes the shared lock of the guild directory. A guild without a
// directory has nothing to lock.
func (s *FilePlaylistStore) readLock(ctx context.Context, guildID snowflake.ID) (func(), error) {
	guildDir := s.guildDir(guildID)
	if _, err := os.Stat(guildDir); errors.Is(err, fs.ErrNotExist) {
		return func() {}, nil
	}

	lock := flock.New(filepath.Join(guildDir, playlistLockFile))
	if _, err := lock.TryRLockContext(ctx, lockRetryInterval); err != nil {
		return nil, fmt.Errorf("failed to lock playlists: %w", err)
	}
	return func() { _ = lock.Unlock() }, nil
}

func (s *FilePlaylistStore) guildDir(guildID snowflake.ID) string {
	return filepath.Join(s.dir, guildID.String())
}

func (s *FilePlaylistStore) path(guildID snowflake.ID, name domain.PlaylistName) string {
	return filepath.Join(s.guildDir(guildID), name.String()+playlistExt)
}
