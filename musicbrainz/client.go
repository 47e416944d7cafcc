package musicbrainz

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/garry/playlistcheck/match"
)

// Defaults for the MusicBrainz web service
const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2/"
	DefaultUserAgent = "playlistcheck/1.0 (https://github.com/garry/playlistcheck)"
	RecordingURL     = "https://musicbrainz.org/recording/"
)

// ErrNotFound is returned when no recording matches a lookup
var ErrNotFound = errors.New("no recording found")

// Client wraps the MusicBrainz API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// Recording represents a MusicBrainz recording
type Recording struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title"`
}

// SearchResponse represents the response from the recording search API
type SearchResponse struct {
	RecordingList struct {
		Recordings []Recording `xml:"recording"`
	} `xml:"recording-list"`
}

// ISRCResponse represents the response from the ISRC API
type ISRCResponse struct {
	ISRC struct {
		RecordingList struct {
			Recordings []Recording `xml:"recording"`
		} `xml:"recording-list"`
	} `xml:"isrc"`
}

// NewClient creates a new MusicBrainz client.
// Requests are limited to one per second as the service asks of anonymous clients.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL, rate.Every(time.Second))
}

// NewClientWithBaseURL creates a client against another server, e.g. a mirror
func NewClientWithBaseURL(baseURL string, limit rate.Limit) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// GetMusicBrainzIDByISRC searches for a recording by ISRC and returns its ID
func (c *Client) GetMusicBrainzIDByISRC(ctx context.Context, isrc string) (string, error) {
	if isrc == "" {
		return "", fmt.Errorf("ISRC cannot be empty")
	}

	params := url.Values{}
	params.Add("fmt", "xml")

	var isrcResp ISRCResponse
	if err := c.get(ctx, "isrc/"+url.PathEscape(isrc)+"?"+params.Encode(), &isrcResp); err != nil {
		return "", err
	}

	if len(isrcResp.ISRC.RecordingList.Recordings) == 0 {
		return "", fmt.Errorf("%w for ISRC: %s", ErrNotFound, isrc)
	}

	return isrcResp.ISRC.RecordingList.Recordings[0].ID, nil
}

// GetMusicBrainzIDByArtistAndTitle searches for a recording by artist and title
func (c *Client) GetMusicBrainzIDByArtistAndTitle(ctx context.Context, artist, title string) (string, error) {
	if artist == "" || title == "" {
		return "", fmt.Errorf("artist and title cannot be empty")
	}

	query := fmt.Sprintf("artist:\"%s\" AND recording:\"%s\"",
		strings.ReplaceAll(artist, "\"", "\\\""),
		strings.ReplaceAll(title, "\"", "\\\""))

	params := url.Values{}
	params.Add("query", query)
	params.Add("limit", "1")
	params.Add("fmt", "xml")

	var searchResp SearchResponse
	if err := c.get(ctx, "recording/?"+params.Encode(), &searchResp); err != nil {
		return "", err
	}

	if len(searchResp.RecordingList.Recordings) == 0 {
		return "", fmt.Errorf("%w for artist: %s, title: %s", ErrNotFound, artist, title)
	}

	return searchResp.RecordingList.Recordings[0].ID, nil
}

// LookupRecordingID tries the ISRC first and falls back to an artist/title search
func (c *Client) LookupRecordingID(ctx context.Context, track match.RemoteTrack) (string, error) {
	if track.ISRC != "" {
		id, err := c.GetMusicBrainzIDByISRC(ctx, track.ISRC)
		if err == nil && id != "" {
			return id, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return c.GetMusicBrainzIDByArtistAndTitle(ctx, track.Artist, track.Title)
}

// Annotate returns a copy of tracks with MusicBrainz IDs filled in where found.
// Lookup failures are logged and leave the ID empty; only cancellation stops early.
func (c *Client) Annotate(ctx context.Context, tracks []match.RemoteTrack) ([]match.RemoteTrack, error) {
	annotated := make([]match.RemoteTrack, len(tracks))
	copy(annotated, tracks)

	for i := range annotated {
		id, err := c.LookupRecordingID(ctx, annotated[i])
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("MusicBrainz lookup aborted: %w", ctx.Err())
			}
			log.Printf("⚠️  MusicBrainz lookup failed for %s: %v", annotated[i].DisplayName(), err)
			continue
		}
		annotated[i].MusicBrainzID = id
	}

	return annotated, nil
}

// get performs a rate-limited GET against the web service and decodes the XML body into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers for MusicBrainz API
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("MusicBrainz API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode XML response: %w", err)
	}

	return nil
}
