package lastfm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pimo/internal/services/lastfm"
)

const recentTracksBody = `{
  "recenttracks": {
    "track": [
      {
        "name": "Selected Track",
        "artist": {"#text": "Some Artist"},
        "album": {"#text": "Some Album"},
        "@attr": {"nowplaying": "true"}
      },
      {
        "name": "Older Track",
        "artist": {"#text": "Some Artist"},
        "album": {"#text": "Some Album"}
      }
    ]
  }
}`

func TestRecentTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("method") != "user.getrecenttracks" || query.Get("user") != "listener" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if query.Get("limit") != "1" {
			t.Errorf("expected limit=1, got %q", query.Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(recentTracksBody))
	}))
	defer server.Close()

	client := lastfm.New("key", lastfm.WithBaseURL(server.URL))
	track, err := client.RecentTrack(context.Background(), "listener")
	if err != nil {
		t.Fatalf("RecentTrack failed: %v", err)
	}
	if track.Title != "Selected Track" || track.Artist != "Some Artist" {
		t.Fatalf("unexpected track %+v", track)
	}
	if !track.NowPlaying {
		t.Fatal("expected nowplaying flag")
	}
}

func TestRecentTrackEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recenttracks": {"track": []}}`))
	}))
	defer server.Close()

	client := lastfm.New("key", lastfm.WithBaseURL(server.URL))
	if _, err := client.RecentTrack(context.Background(), "listener"); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestRecentTrackRequiresCredentials(t *testing.T) {
	client := lastfm.New("")
	if _, err := client.RecentTrack(context.Background(), "listener"); err == nil {
		t.Fatal("expected error without api key")
	}
	client = lastfm.New("key")
	if _, err := client.RecentTrack(context.Background(), ""); err == nil {
		t.Fatal("expected error without user")
	}
}
