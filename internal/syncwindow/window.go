package syncwindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window describes the sync-window state at a point in time.
type Window struct {
	Active    bool
	OpenedAt  time.Time
	ExpiresAt time.Time
}

// ActiveAt reports whether the window suppresses rotation at the given
// instant. A zero ExpiresAt on an active window is open-ended.
func (w Window) ActiveAt(now time.Time) bool {
	if !w.Active {
		return false
	}
	if w.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(w.ExpiresAt)
}

// Remaining returns how long the window has left at the given instant, zero
// when inactive or expired.
func (w Window) Remaining(now time.Time) time.Duration {
	if !w.ActiveAt(now) || w.ExpiresAt.IsZero() {
		return 0
	}
	return w.ExpiresAt.Sub(now)
}

// EventKind discriminates bus payloads.
type EventKind int

const (
	// EventStart opens a window for Event.Minutes (0 means use the
	// configured default).
	EventStart EventKind = iota
	// EventStop closes the window.
	EventStop
)

// Event is a parsed bus payload.
type Event struct {
	Kind    EventKind
	Minutes int
}

// ParsePayload parses the wire payloads "start", "start:<minutes>", and
// "stop". Whitespace is tolerated; anything else is an error.
func ParsePayload(payload string) (Event, error) {
	trimmed := strings.ToLower(strings.TrimSpace(payload))
	switch {
	case trimmed == "stop":
		return Event{Kind: EventStop}, nil
	case trimmed == "start":
		return Event{Kind: EventStart}, nil
	case strings.HasPrefix(trimmed, "start:"):
		raw := strings.TrimSpace(strings.TrimPrefix(trimmed, "start:"))
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Event{}, fmt.Errorf("sync payload %q: minutes must be a positive integer", payload)
		}
		return Event{Kind: EventStart, Minutes: minutes}, nil
	default:
		return Event{}, fmt.Errorf("sync payload %q: expected start[:<minutes>] or stop", payload)
	}
}
