// Package lastfm reads a user's most recent scrobble for the splash.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://ws.audioscrobbler.com/2.0/"
	defaultHTTPTimeout = 3 * time.Second
)

// Track is a single scrobble.
type Track struct {
	Artist     string
	Title      string
	Album      string
	NowPlaying bool
}

// Client wraps the Last.fm user.getrecenttracks API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the Last.fm client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base (tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = base
		}
	}
}

// New constructs a Last.fm client.
func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type recentTracksResponse struct {
	RecentTracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Text string `json:"#text"`
			} `json:"artist"`
			Album struct {
				Text string `json:"#text"`
			} `json:"album"`
			Attr struct {
				NowPlaying string `json:"nowplaying"`
			} `json:"@attr"`
		} `json:"track"`
	} `json:"recenttracks"`
}

// RecentTrack returns the user's latest scrobble. A user with no
// scrobbles yields an error.
func (c *Client) RecentTrack(ctx context.Context, user string) (Track, error) {
	var empty Track
	user = strings.TrimSpace(user)
	if user == "" {
		return empty, errors.New("lastfm: user required")
	}
	if c.apiKey == "" {
		return empty, errors.New("lastfm: api key required")
	}

	params := url.Values{}
	params.Set("method", "user.getrecenttracks")
	params.Set("user", user)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return empty, fmt.Errorf("lastfm: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("lastfm: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("lastfm: unexpected status %d", resp.StatusCode)
	}

	var decoded recentTracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return empty, fmt.Errorf("lastfm: decode response: %w", err)
	}
	tracks := decoded.RecentTracks.Track
	if len(tracks) == 0 {
		return empty, errors.New("lastfm: no recent tracks")
	}
	first := tracks[0]
	return Track{
		Artist:     strings.TrimSpace(first.Artist.Text),
		Title:      strings.TrimSpace(first.Name),
		Album:      strings.TrimSpace(first.Album.Text),
		NowPlaying: first.Attr.NowPlaying == "true",
	}, nil
}
