package rotation

import (
	"time"

	"pimo/internal/store"
	"pimo/internal/syncwindow"
)

// Outcome is the planner's decision for one tick.
type Outcome struct {
	// Suppressed is set when an active sync window blocked this tick.
	Suppressed bool
	// Stop and Start name the units to act on; both empty when the tick is
	// a no-op (empty list or suppression).
	Stop  string
	Start string
	// Next is the cursor to persist. Unchanged from the input when the tick
	// is a no-op.
	Next store.Cursor
	// Changed reports whether Next must be persisted.
	Changed bool
}

// Plan computes one rotation step. The cursor may be out of range (the list
// shrank, or the state was reset from garbage); it is normalized with a
// Euclidean modulo before use rather than treated as an error.
func Plan(services []string, cursor store.Cursor, window syncwindow.Window, now time.Time) Outcome {
	if len(services) == 0 {
		return Outcome{Next: cursor}
	}
	if window.ActiveAt(now) {
		return Outcome{Suppressed: true, Next: cursor}
	}

	current := mod(cursor.Index, len(services))
	next := (current + 1) % len(services)

	return Outcome{
		Stop:    services[current],
		Start:   services[next],
		Next:    store.Cursor{Index: next, LastRotatedAt: now},
		Changed: true,
	}
}

// mod is the Euclidean remainder: always in [0, n) for n > 0.
func mod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
