package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pimo/internal/feeds"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxErrorBody          = 512
)

// Poster delivers a single feed item to the destination channel.
type Poster interface {
	Post(ctx context.Context, item feeds.Item) error
}

// DiscordWebhook posts items as plain-content webhook messages.
type DiscordWebhook struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

// WebhookOption customizes the webhook poster.
type WebhookOption func(*DiscordWebhook)

// WithWebhookClient overrides the default HTTP client.
func WithWebhookClient(client *http.Client) WebhookOption {
	return func(w *DiscordWebhook) {
		if client != nil {
			w.httpClient = client
		}
	}
}

// WithWebhookUserAgent overrides the default User-Agent header.
func WithWebhookUserAgent(agent string) WebhookOption {
	return func(w *DiscordWebhook) {
		agent = strings.TrimSpace(agent)
		if agent != "" {
			w.userAgent = agent
		}
	}
}

// NewDiscordWebhook constructs a poster for the given webhook URL.
func NewDiscordWebhook(url string, opts ...WebhookOption) (*DiscordWebhook, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook url required")
	}
	webhook := &DiscordWebhook{
		url:        url,
		userAgent:  "pimo-relay/1.0",
		httpClient: &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(webhook)
	}
	return webhook, nil
}

// Post sends one item. Discord accepts a JSON object with a content
// field; anything outside 2xx is an error with a body excerpt.
func (w *DiscordWebhook) Post(ctx context.Context, item feeds.Item) error {
	payload, err := json.Marshal(map[string]string{"content": formatContent(item)})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("post webhook: status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return nil
}

func formatContent(item feeds.Item) string {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "(untitled)"
	}
	if item.Link == "" {
		return title
	}
	return fmt.Sprintf("**%s**\n%s", title, item.Link)
}
