package splash

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"pimo/internal/config"
	"pimo/internal/services/lastfm"
	"pimo/internal/services/weather"
)

// WeatherProvider resolves coordinates and fetches conditions.
type WeatherProvider interface {
	Locate(ctx context.Context) (float64, float64, error)
	Current(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

// MusicProvider returns a user's latest scrobble.
type MusicProvider interface {
	RecentTrack(ctx context.Context, user string) (lastfm.Track, error)
}

// Splash assembles and prints the login greeting.
type Splash struct {
	cfg     config.Splash
	weather WeatherProvider
	music   MusicProvider
	out     io.Writer
	color   bool

	gatherHost func(diskPath string) HostInfo
}

// Option customizes the splash.
type Option func(*Splash)

// WithWeather sets the weather provider; nil disables the line.
func WithWeather(provider WeatherProvider) Option {
	return func(s *Splash) { s.weather = provider }
}

// WithMusic sets the music provider; nil disables the line.
func WithMusic(provider MusicProvider) Option {
	return func(s *Splash) { s.music = provider }
}

// WithColor toggles ANSI colors in the output.
func WithColor(enabled bool) Option {
	return func(s *Splash) { s.color = enabled }
}

func withHostGatherer(gather func(string) HostInfo) Option {
	return func(s *Splash) { s.gatherHost = gather }
}

// New constructs a splash writing to out.
func New(cfg config.Splash, out io.Writer, opts ...Option) *Splash {
	s := &Splash{
		cfg:        cfg,
		out:        out,
		gatherHost: gatherHost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render prints the greeting. It always returns nil: a login prompt
// must never be blocked by a failed lookup, so missing data simply
// drops its line.
func (s *Splash) Render(ctx context.Context) error {
	budget := time.Duration(s.cfg.BudgetSeconds) * time.Second
	if budget <= 0 {
		budget = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var (
		wg          sync.WaitGroup
		conditions  weather.Conditions
		haveWeather bool
		track       lastfm.Track
		haveTrack   bool
	)

	if s.weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cond, err := s.fetchWeather(ctx)
			if err == nil {
				conditions = cond
				haveWeather = true
			}
		}()
	}
	if s.music != nil && s.cfg.LastFMUser != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recent, err := s.music.RecentTrack(ctx, s.cfg.LastFMUser)
			if err == nil {
				track = recent
				haveTrack = true
			}
		}()
	}

	host := s.gatherHost(s.cfg.DiskPath)
	wg.Wait()

	lines := s.hostLines(host)
	if haveWeather {
		lines = append(lines, s.line("weather", fmt.Sprintf("%s, %.1f°C, wind %.0f km/h",
			conditions.Label, conditions.TemperatureC, conditions.WindKMH)))
	}
	if haveTrack {
		verb := "last played"
		if track.NowPlaying {
			verb = "now playing"
		}
		lines = append(lines, s.line(verb, fmt.Sprintf("%s — %s", track.Artist, track.Title)))
	}

	fmt.Fprintln(s.out, strings.Join(lines, "\n"))
	return nil
}

func (s *Splash) fetchWeather(ctx context.Context) (weather.Conditions, error) {
	lat, lon := s.cfg.Latitude, s.cfg.Longitude
	if lat == 0 && lon == 0 {
		var err error
		lat, lon, err = s.weather.Locate(ctx)
		if err != nil {
			return weather.Conditions{}, err
		}
	}
	return s.weather.Current(ctx, lat, lon)
}

func (s *Splash) hostLines(host HostInfo) []string {
	var lines []string
	if host.Hostname != "" {
		header := host.Hostname
		if s.color {
			header = text.Colors{text.FgCyan, text.Bold}.Sprint(header)
		}
		if host.Kernel != "" {
			header += " (" + host.Kernel + ")"
		}
		lines = append(lines, header)
	}
	lines = append(lines, s.line("uptime", fmt.Sprintf("%s, load %.2f", formatUptime(host.Uptime), host.Load1)))
	if host.DiskSize > 0 {
		lines = append(lines, s.line("disk", fmt.Sprintf("%s free of %s",
			formatBytes(host.DiskFree), formatBytes(host.DiskSize))))
	}
	return lines
}

func (s *Splash) line(label, value string) string {
	padded := fmt.Sprintf("%-12s", label)
	if s.color {
		padded = text.Colors{text.FgGreen}.Sprint(padded)
	}
	return "  " + padded + " " + value
}
