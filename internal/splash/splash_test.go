package splash

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pimo/internal/config"
	"pimo/internal/services/lastfm"
	"pimo/internal/services/weather"
)

type stubWeather struct {
	lat, lon   float64
	conditions weather.Conditions
	locateErr  error
	currentErr error
	gotLat     float64
	gotLon     float64
	delay      time.Duration
}

func (s *stubWeather) Locate(context.Context) (float64, float64, error) {
	return s.lat, s.lon, s.locateErr
}

func (s *stubWeather) Current(ctx context.Context, lat, lon float64) (weather.Conditions, error) {
	s.gotLat, s.gotLon = lat, lon
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return weather.Conditions{}, ctx.Err()
		}
	}
	return s.conditions, s.currentErr
}

type stubMusic struct {
	track lastfm.Track
	err   error
}

func (s *stubMusic) RecentTrack(context.Context, string) (lastfm.Track, error) {
	return s.track, s.err
}

func fixedHost(string) HostInfo {
	return HostInfo{
		Hostname: "pi-lounge",
		Kernel:   "6.6.20-v8+",
		Uptime:   26*time.Hour + 30*time.Minute,
		Load1:    0.42,
		DiskFree: 10 << 30,
		DiskSize: 32 << 30,
	}
}

func TestRenderFullSplash(t *testing.T) {
	var out strings.Builder
	provider := &stubWeather{conditions: weather.Conditions{Label: "Overcast", TemperatureC: 14.5, WindKMH: 20}}
	music := &stubMusic{track: lastfm.Track{Artist: "Artist", Title: "Song", NowPlaying: true}}

	cfg := config.Splash{Latitude: 51.5, Longitude: -0.13, LastFMUser: "listener", BudgetSeconds: 3}
	s := New(cfg, &out,
		WithWeather(provider),
		WithMusic(music),
		withHostGatherer(fixedHost),
	)
	if err := s.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"pi-lounge (6.6.20-v8+)", "1d 2h", "load 0.42", "10.0 GiB free of 32.0 GiB", "Overcast, 14.5°C", "now playing", "Artist — Song"} {
		if !strings.Contains(text, want) {
			t.Errorf("splash missing %q:\n%s", want, text)
		}
	}
	if provider.gotLat != 51.5 {
		t.Fatalf("expected configured coordinates, got %v", provider.gotLat)
	}
}

func TestRenderUsesGeolocationFallback(t *testing.T) {
	var out strings.Builder
	provider := &stubWeather{lat: 40.7, lon: -74.0, conditions: weather.Conditions{Label: "Clear Sky"}}

	cfg := config.Splash{BudgetSeconds: 3}
	s := New(cfg, &out, WithWeather(provider), withHostGatherer(fixedHost))
	if err := s.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if provider.gotLat != 40.7 || provider.gotLon != -74.0 {
		t.Fatalf("expected located coordinates, got %v,%v", provider.gotLat, provider.gotLon)
	}
}

func TestRenderDropsFailedLines(t *testing.T) {
	var out strings.Builder
	provider := &stubWeather{currentErr: errors.New("upstream down")}
	music := &stubMusic{err: errors.New("no scrobbles")}

	cfg := config.Splash{Latitude: 1, Longitude: 1, LastFMUser: "listener", BudgetSeconds: 3}
	s := New(cfg, &out, WithWeather(provider), WithMusic(music), withHostGatherer(fixedHost))
	if err := s.Render(context.Background()); err != nil {
		t.Fatalf("Render must not fail: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "pi-lounge") {
		t.Fatalf("host line must survive:\n%s", text)
	}
	if strings.Contains(text, "weather") || strings.Contains(text, "played") {
		t.Fatalf("failed lines must be dropped:\n%s", text)
	}
}

func TestRenderHonorsBudget(t *testing.T) {
	var out strings.Builder
	provider := &stubWeather{
		conditions: weather.Conditions{Label: "Clear Sky"},
		delay:      5 * time.Second,
	}
	cfg := config.Splash{Latitude: 1, Longitude: 1, BudgetSeconds: 1}
	s := New(cfg, &out, WithWeather(provider), withHostGatherer(fixedHost))

	start := time.Now()
	if err := s.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("budget not enforced, took %v", elapsed)
	}
	if strings.Contains(out.String(), "Clear Sky") {
		t.Fatal("timed-out lookup must not appear")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatUptime(90 * time.Minute); got != "1h 30m" {
		t.Fatalf("formatUptime = %q", got)
	}
	if got := formatUptime(0); got != "unknown" {
		t.Fatalf("formatUptime zero = %q", got)
	}
	if got := formatBytes(512); got != "512 B" {
		t.Fatalf("formatBytes = %q", got)
	}
	if got := formatBytes(3 << 20); got != "3.0 MiB" {
		t.Fatalf("formatBytes = %q", got)
	}
}
