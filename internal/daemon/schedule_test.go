package daemon_test

import (
	"testing"
	"time"

	"pimo/internal/config"
	"pimo/internal/daemon"
)

func TestRotationInterval(t *testing.T) {
	cases := []struct {
		name     string
		period   int
		minSlice int
		services int
		want     time.Duration
	}{
		{"even split", 120, 300, 4, 30 * time.Minute},
		{"floored by min slice", 20, 300, 10, 5 * time.Minute},
		{"single service gets full period", 120, 300, 1, 2 * time.Hour},
		{"empty list gets full period", 120, 300, 0, 2 * time.Hour},
		{"zero period falls back", 0, 300, 4, 30 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Rotation{PeriodMinutes: tc.period, MinSliceSecs: tc.minSlice}
			if got := daemon.RotationInterval(cfg, tc.services); got != tc.want {
				t.Fatalf("RotationInterval = %v, want %v", got, tc.want)
			}
		})
	}
}
