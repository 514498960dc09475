package infrastructure

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    domain.TrackMetadata
		wantErr error
	}{
		{
			name:   "video",
			stdout: "https://www.youtube.com/watch?v=abc\tSong\tArtist\t213.0\thttps://i.ytimg.com/abc.jpg\n",
			want: domain.TrackMetadata{
				SourceURL:    "https://www.youtube.com/watch?v=abc",
				Title:        "Song",
				Artist:       "Artist",
				Duration:     213 * time.Second,
				ThumbnailURL: "https://i.ytimg.com/abc.jpg",
			},
		},
		{
			name:   "live stream without duration",
			stdout: "https://www.youtube.com/watch?v=live\tRadio\tNA\tNA\tNA",
			want: domain.TrackMetadata{
				SourceURL: "https://www.youtube.com/watch?v=live",
				Title:     "Radio",
			},
		},
		{
			name:   "first complete line wins",
			stdout: "garbage\nhttps://a\tA\tB\t1\tNA\nhttps://b\tC\tD\t2\tNA",
			want: domain.TrackMetadata{
				SourceURL: "https://a",
				Title:     "A",
				Artist:    "B",
				Duration:  time.Second,
			},
		},
		{
			name:    "no output",
			stdout:  "",
			wantErr: domain.ErrNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMetadata(tt.stdout)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseEntries(t *testing.T) {
	stdout := "https://www.youtube.com/watch?v=1\n\nNA\n https://www.youtube.com/watch?v=2 \n"

	got := parseEntries(stdout)
	want := []string{
		"https://www.youtube.com/watch?v=1",
		"https://www.youtube.com/watch?v=2",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if refs := parseEntries(""); len(refs) != 0 {
		t.Errorf("expected no entries, got %v", refs)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "42", want: 42 * time.Second},
		{in: "1.5", want: 1500 * time.Millisecond},
		{in: "NA", want: 0},
		{in: "-3", want: 0},
	}

	for _, tt := range tests {
		if got := parseSeconds(tt.in); got != tt.want {
			t.Errorf("parseSeconds(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestYtdlpResolverArgs(t *testing.T) {
	r := NewYtdlpResolver("--cookies cookies.txt  -4")

	got := r.args("ytsearch1:song")
	want := []string{"--cookies", "cookies.txt", "-4", "ytsearch1:song"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
