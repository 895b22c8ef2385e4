package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent   = "pimo-relay/1.0"
	defaultHTTPTimeout = 5 * time.Second
	maxFeedBody        = 4 << 20
)

// Conditional carries the validators saved from a previous poll.
// Empty fields are omitted from the request.
type Conditional struct {
	ETag         string
	LastModified string
}

// FetchResult is the outcome of a single conditional GET.
type FetchResult struct {
	NotModified  bool
	Status       int
	Body         []byte
	ETag         string
	LastModified string
}

// Fetcher performs conditional feed downloads.
type Fetcher struct {
	userAgent  string
	httpClient *http.Client
}

// FetcherOption customizes the fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(agent string) FetcherOption {
	return func(f *Fetcher) {
		agent = strings.TrimSpace(agent)
		if agent != "" {
			f.userAgent = agent
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.httpClient.Timeout = timeout
		}
	}
}

// NewFetcher constructs a feed fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	fetcher := &Fetcher{
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// Fetch downloads a feed, replaying the saved validators. A 304
// answer returns NotModified without a body; any status outside
// 2xx/304 is an error.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, cond Conditional) (FetchResult, error) {
	var empty FetchResult

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return empty, fmt.Errorf("fetch %s: build request: %w", feedURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("fetch %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	result := FetchResult{
		Status:       resp.StatusCode,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}

	if resp.StatusCode == http.StatusNotModified {
		result.NotModified = true
		return result, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return empty, fmt.Errorf("fetch %s: unexpected status %d", feedURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return empty, fmt.Errorf("fetch %s: read body: %w", feedURL, err)
	}
	result.Body = body
	return result, nil
}
