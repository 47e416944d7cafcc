package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/garry/playlistcheck/config"
	"github.com/garry/playlistcheck/match"
)

// PageLimit is the number of playlist items requested per page
const PageLimit = 100

// ErrInvalidPlaylistID is returned when a playlist reference cannot be parsed
var ErrInvalidPlaylistID = errors.New("invalid playlist ID")

// Client wraps the Spotify API client
type Client struct {
	client *spotify.Client
}

// PlaylistInfo represents basic information about a playlist
type PlaylistInfo struct {
	ID         string
	Name       string
	Owner      string
	TrackCount int
}

// NewClient creates a new Spotify client authenticated according to cfg
func NewClient(ctx context.Context, cfg config.SpotifyConfig) (*Client, error) {
	httpClient, err := authenticate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClientWithHTTP(httpClient), nil
}

// NewClientWithHTTP wraps an already authenticated HTTP client
func NewClientWithHTTP(httpClient *http.Client, opts ...spotify.ClientOption) *Client {
	return &Client{client: spotify.New(httpClient, opts...)}
}

// GetPlaylistInfo returns basic information about a playlist
func (c *Client) GetPlaylistInfo(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	playlist, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("playlist not found or not accessible: %w", err)
	}

	return &PlaylistInfo{
		ID:         string(playlist.ID),
		Name:       playlist.Name,
		Owner:      playlist.Owner.DisplayName,
		TrackCount: int(playlist.Tracks.Total),
	}, nil
}

// GetPlaylistTracks fetches all tracks from a Spotify playlist, following pagination
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]match.RemoteTrack, error) {
	page, err := c.client.GetPlaylistTracks(ctx, spotify.ID(playlistID), spotify.Limit(PageLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist tracks (page 1): %w", err)
	}

	var tracks []match.RemoteTrack
	for pageNumber := 1; ; pageNumber++ {
		for _, item := range page.Tracks {
			// Removed tracks come back as null and decode to an empty track
			if item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, convertTrack(item.Track))
		}

		err := c.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist tracks (page %d): %w", pageNumber+1, err)
		}
	}

	return tracks, nil
}

// convertTrack converts a Spotify track to a RemoteTrack, crediting the first listed artist
func convertTrack(track spotify.FullTrack) match.RemoteTrack {
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	return match.RemoteTrack{
		Title:      track.Name,
		Artist:     artist,
		Album:      track.Album.Name,
		ExternalID: string(track.ID),
		ISRC:       track.ExternalIDs["isrc"],
	}
}

// ParsePlaylistID extracts a playlist ID from a bare ID, an open.spotify.com URL
// or a spotify:playlist: URI
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidPlaylistID)
	}

	var id string
	switch {
	case strings.HasPrefix(input, "spotify:"):
		parts := strings.Split(input, ":")
		if len(parts) != 3 || parts[1] != "playlist" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistID, input)
		}
		id = parts[2]
	case strings.Contains(input, "/"):
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPlaylistID, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i < len(segments)-1; i++ {
			if segments[i] == "playlist" {
				id = segments[i+1]
				break
			}
		}
	default:
		id = input
	}

	if !isBase62(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistID, input)
	}
	return id, nil
}

// isBase62 reports whether s is a non-empty run of [0-9A-Za-z]
func isBase62(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
