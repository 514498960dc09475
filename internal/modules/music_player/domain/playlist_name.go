package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxPlaylistNameLength = 64

// PlaylistName is a validated name of a stored playlist.
type PlaylistName string

// NewPlaylistName validates a user supplied playlist name. Names are stored as
// file names, so only letters, digits, '-' and '_' are accepted.
func NewPlaylistName(raw string) (PlaylistName, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxPlaylistNameLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistName, raw)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistName, raw)
		}
	}
	return PlaylistName(name), nil
}

func (n PlaylistName) String() string {
	return string(n)
}
