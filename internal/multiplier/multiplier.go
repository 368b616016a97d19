// Package multiplier holds experience multiplier state: the global factor,
// per-player overrides and their expiry.
package multiplier

import (
	"errors"
	"math"
	"time"
)

// Unity is the no-op factor.
const Unity = 1.0

var (
	// ErrInvalidFactor is returned for NaN or infinite factors.
	ErrInvalidFactor = errors.New("multiplier must be a finite number")
	// ErrInvalidDuration is returned for negative durations.
	ErrInvalidDuration = errors.New("duration must not be negative")
)

// Multiplier is a factor with an optional expiry.
// Zero ExpiresAt means the multiplier never expires.
type Multiplier struct {
	Factor    float64
	ExpiresAt time.Time
}

// Permanent returns a multiplier without expiry.
func Permanent(factor float64) Multiplier {
	return Multiplier{Factor: factor}
}

// Expiring returns a multiplier that lapses duration after now.
// A zero duration yields a permanent multiplier.
func Expiring(factor float64, now time.Time, duration time.Duration) Multiplier {
	if duration <= 0 {
		return Permanent(factor)
	}
	return Multiplier{Factor: factor, ExpiresAt: now.Add(duration)}
}

// IsUnity reports whether applying m changes nothing.
func (m Multiplier) IsUnity() bool {
	return m.Factor == Unity
}

// HasExpiry reports whether m lapses at some point.
func (m Multiplier) HasExpiry() bool {
	return !m.ExpiresAt.IsZero()
}

// Expired reports whether now is strictly past the expiry.
func (m Multiplier) Expired(now time.Time) bool {
	return m.HasExpiry() && now.After(m.ExpiresAt)
}

// Remaining returns the time left before expiry, 0 for permanent or lapsed multipliers.
func (m Multiplier) Remaining(now time.Time) time.Duration {
	if !m.HasExpiry() {
		return 0
	}
	if d := m.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Apply scales an experience amount, rounding down.
func (m Multiplier) Apply(exp int) int {
	return Scale(exp, m.Factor)
}

// Scale returns floor(exp * factor), saturated to the int range.
func Scale(exp int, factor float64) int {
	p := math.Floor(float64(exp) * factor)
	switch {
	case math.IsNaN(p):
		return 0
	case p >= float64(math.MaxInt):
		return math.MaxInt
	case p <= float64(math.MinInt):
		return math.MinInt
	}
	return int(p)
}

func validate(factor float64, duration time.Duration) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return ErrInvalidFactor
	}
	if duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}
