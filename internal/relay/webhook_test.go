package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pimo/internal/feeds"
	"pimo/internal/relay"
)

func TestDiscordWebhookPostsContent(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	webhook, err := relay.NewDiscordWebhook(server.URL)
	if err != nil {
		t.Fatalf("NewDiscordWebhook failed: %v", err)
	}
	item := feeds.Item{Title: "Release 1.2", Link: "https://example.org/release"}
	if err := webhook.Post(context.Background(), item); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	content := payload["content"]
	if !strings.Contains(content, "Release 1.2") || !strings.Contains(content, "https://example.org/release") {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestDiscordWebhookSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	webhook, err := relay.NewDiscordWebhook(server.URL)
	if err != nil {
		t.Fatalf("NewDiscordWebhook failed: %v", err)
	}
	err = webhook.Post(context.Background(), feeds.Item{Title: "x"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected status and excerpt in error, got %v", err)
	}
}

func TestDiscordWebhookRequiresURL(t *testing.T) {
	if _, err := relay.NewDiscordWebhook("  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}
