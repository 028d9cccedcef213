package enum

import "time"

// DurationClass buckets markets by their fixed lifetime. The class decides
// which momentum window, entry threshold and stop-loss parameters apply.
type DurationClass uint8

const (
	_duration_beg DurationClass = iota
	Duration15Min
	Duration60Min
	DurationDaily
	_duration_end
)

func (d DurationClass) IsAvailable() bool {
	return d > _duration_beg && d < _duration_end
}

func (d DurationClass) Name() string {
	switch d {
	case Duration15Min:
		return "15-MIN"
	case Duration60Min:
		return "60-MIN"
	case DurationDaily:
		return "DAILY"
	default:
		return "UNKNOWN"
	}
}

// Lifetime is the fixed market lifetime for the class.
func (d DurationClass) Lifetime() time.Duration {
	switch d {
	case Duration15Min:
		return 15 * time.Minute
	case Duration60Min:
		return time.Hour
	case DurationDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// DangerZone is the trailing interval before expiry during which stop-loss
// evaluation is active. Daily markets are fallback targets only and carry no
// stop-loss window.
func (d DurationClass) DangerZone() time.Duration {
	switch d {
	case Duration15Min:
		return 3 * time.Minute
	case Duration60Min:
		return 15 * time.Minute
	default:
		return 0
	}
}

// MomentumWindow is the trailing window momentum is computed over for the
// class. Longer-lived markets react to slower momentum.
func (d DurationClass) MomentumWindow() time.Duration {
	switch d {
	case Duration15Min:
		return 3 * time.Minute
	case Duration60Min:
		return 10 * time.Minute
	default:
		return 0
	}
}
