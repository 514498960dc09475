package infrastructure

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// metadataTemplate prints the fields of a resolved track, one track per line.
const metadataTemplate = "%(webpage_url)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(thumbnail)s"

// missingField is what yt-dlp prints for a field the extractor did not fill.
const missingField = "NA"

// YtdlpResolver resolves queries and playlists with the yt-dlp binary.
type YtdlpResolver struct {
	extraArgs []string
}

var _ ports.TrackResolver = (*YtdlpResolver)(nil)

// NewYtdlpResolver creates a new YtdlpResolver. extraArgs are passed to every
// yt-dlp invocation, e.g. "--cookies cookies.txt".
func NewYtdlpResolver(extraArgs string) *YtdlpResolver {
	return &YtdlpResolver{extraArgs: strings.Fields(extraArgs)}
}

func (r *YtdlpResolver) command() *ytdlp.Command {
	return ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig().
		ForceIPv4()
}

// Resolve fetches the metadata of the track behind query, which is either a URL or
// a search term carrying a search prefix.
func (r *YtdlpResolver) Resolve(ctx context.Context, query string) (domain.TrackMetadata, error) {
	res, err := r.command().
		NoPlaylist().
		SkipDownload().
		Print(metadataTemplate).
		Run(ctx, r.args(query)...)
	if err != nil {
		return domain.TrackMetadata{}, fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	return parseMetadata(res.Stdout)
}

// ExpandPlaylist lists the entry URLs of the playlist from the 1-based start position.
func (r *YtdlpResolver) ExpandPlaylist(ctx context.Context, url string, start int) ([]string, error) {
	res, err := r.command().
		FlatPlaylist().
		Print("%(url)s").
		PlaylistItems(fmt.Sprintf("%d:", max(start, 1))).
		Run(ctx, r.args(url)...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand playlist %q: %w", url, err)
	}

	refs := parseEntries(res.Stdout)
	if len(refs) == 0 {
		return nil, domain.ErrEmptyPlaylist
	}
	return refs, nil
}

func (r *YtdlpResolver) args(target string) []string {
	args := make([]string, 0, len(r.extraArgs)+1)
	args = append(args, r.extraArgs...)
	return append(args, target)
}

// parseMetadata reads the first line printed with metadataTemplate.
func parseMetadata(stdout string) (domain.TrackMetadata, error) {
	for line := range strings.SplitSeq(strings.TrimSpace(stdout), "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}

		return domain.TrackMetadata{
			SourceURL:    field(fields[0]),
			Title:        field(fields[1]),
			Artist:       field(fields[2]),
			Duration:     parseSeconds(fields[3]),
			ThumbnailURL: field(fields[4]),
		}, nil
	}
	return domain.TrackMetadata{}, domain.ErrNoResults
}

func parseEntries(stdout string) []string {
	var refs []string
	for line := range strings.SplitSeq(strings.TrimSpace(stdout), "\n") {
		if ref := field(strings.TrimSpace(line)); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

func field(s string) string {
	if s == missingField {
		return ""
	}
	return s
}

// parseSeconds parses yt-dlp's duration, which may be fractional. Live streams
// have none and get zero.
func parseSeconds(s string) time.Duration {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
