package daemon

import (
	"time"

	"pimo/internal/config"
)

// RotationInterval splits the rotation period evenly across the
// service list, floored at the configured minimum slice so a long
// list cannot thrash units. A list of one or zero services falls
// back to the full period.
func RotationInterval(cfg config.Rotation, serviceCount int) time.Duration {
	period := time.Duration(cfg.PeriodMinutes) * time.Minute
	if period <= 0 {
		period = 2 * time.Hour
	}
	if serviceCount <= 1 {
		return period
	}

	slice := period / time.Duration(serviceCount)
	floor := time.Duration(cfg.MinSliceSecs) * time.Second
	if floor > 0 && slice < floor {
		return floor
	}
	return slice
}
