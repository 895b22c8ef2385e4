// Package weather resolves the machine's coordinates and fetches the
// current conditions from Open-Meteo. Coordinates missing from the
// config fall back to ipinfo.io geolocation.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultLocateURL   = "https://ipinfo.io/loc"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultHTTPTimeout = 3 * time.Second
)

// Conditions is the current weather at the resolved location.
type Conditions struct {
	TemperatureC float64
	WindKMH      float64
	Code         int
	Label        string
}

// Client talks to the geolocation and forecast endpoints.
type Client struct {
	locateURL   string
	forecastURL string
	httpClient  *http.Client
}

// Option customizes the weather client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoints overrides the geolocation and forecast URLs (tests).
func WithEndpoints(locateURL, forecastURL string) Option {
	return func(c *Client) {
		if locateURL != "" {
			c.locateURL = locateURL
		}
		if forecastURL != "" {
			c.forecastURL = forecastURL
		}
	}
}

// New constructs a weather client.
func New(opts ...Option) *Client {
	client := &Client{
		locateURL:   defaultLocateURL,
		forecastURL: defaultForecastURL,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Locate returns latitude and longitude from the IP geolocation
// service, which answers a bare "lat,lon" line.
func (c *Client) Locate(ctx context.Context) (float64, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.locateURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("locate: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("locate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("locate: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return 0, 0, fmt.Errorf("locate: read body: %w", err)
	}
	parts := strings.Split(strings.TrimSpace(string(body)), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("locate: malformed response %q", string(body))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("locate: parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("locate: parse longitude: %w", err)
	}
	return lat, lon, nil
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Current fetches the present conditions for the given coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	var empty Conditions
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", c.forecastURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, fmt.Errorf("forecast: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("forecast: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("forecast: unexpected status %d", resp.StatusCode)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return empty, fmt.Errorf("forecast: decode response: %w", err)
	}
	return Conditions{
		TemperatureC: decoded.CurrentWeather.Temperature,
		WindKMH:      decoded.CurrentWeather.WindSpeed,
		Code:         decoded.CurrentWeather.WeatherCode,
		Label:        CodeLabel(decoded.CurrentWeather.WeatherCode),
	}, nil
}

// WMO interpretation codes used by Open-Meteo.
var codeLabels = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "rain",
	65: "heavy rain",
	66: "freezing rain",
	67: "heavy freezing rain",
	71: "slight snowfall",
	73: "snowfall",
	75: "heavy snowfall",
	77: "snow grains",
	80: "rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// CodeLabel maps a WMO weather code to a display label. The caser is
// built per call; cases.Caser is not safe for concurrent use.
func CodeLabel(code int) string {
	label, ok := codeLabels[code]
	if !ok {
		return fmt.Sprintf("Code %d", code)
	}
	return cases.Title(language.English).String(label)
}
