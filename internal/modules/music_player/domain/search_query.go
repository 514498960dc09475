package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchPrefix is the resolver prefix that turns a free-text query into a
// first-result search.
const SearchPrefix = "ytsearch1:"

// QueryKind tells how a play query must be resolved.
type QueryKind int

const (
	// QueryKindSearch is free text, resolved to the first search result.
	QueryKindSearch QueryKind = iota
	// QueryKindURL is a direct link to a single track.
	QueryKindURL
	// QueryKindPlaylist is a link carrying a list= parameter.
	QueryKindPlaylist
)

// SearchQuery represents a play query from user input.
type SearchQuery struct {
	Query string    // The search term or URL
	Kind  QueryKind // How the query must be resolved
	// PlaylistStart is the 1-based position to start a playlist from.
	// It comes from the index= parameter and defaults to 1.
	PlaylistStart int
}

// NewSearchQuery classifies user input.
// Input that is not a URL is a search, a URL with a list= parameter is a playlist,
// anything else is a single track URL.
func NewSearchQuery(input string) *SearchQuery {
	input = strings.TrimSpace(input)

	if !isURL(input) {
		return &SearchQuery{Query: input, Kind: QueryKindSearch}
	}

	if strings.Contains(input, "list=") {
		return &SearchQuery{
			Query:         input,
			Kind:          QueryKindPlaylist,
			PlaylistStart: playlistStart(input),
		}
	}

	return &SearchQuery{Query: input, Kind: QueryKindURL}
}

// ResolverQuery returns the query string formatted for the resolver.
func (q *SearchQuery) ResolverQuery() string {
	if q.Kind == QueryKindSearch {
		return SearchPrefix + q.Query
	}
	return q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// playlistStart returns the last index= value of the URL, or 1 when it is
// missing or not a positive number.
func playlistStart(raw string) int {
	parsed, err := url.Parse(raw)
	if err != nil {
		return 1
	}
	values := parsed.Query()["index"]
	if len(values) == 0 {
		return 1
	}
	n, err := strconv.Atoi(values[len(values)-1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
