// internal/ratelimit/limiter.go
package ratelimit

import "time"

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	// Allow records one hit for key. A non-positive limit always allows.
	Allow(key string, limit int, window time.Duration) Decision
	Close()
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Remaining returns how many hits are left in the current window.
func (d Decision) Remaining(limit int) int {
	if remaining := limit - d.Count; remaining > 0 {
		return remaining
	}
	return 0
}

func defaultWindow(window time.Duration) time.Duration {
	if window <= 0 {
		return time.Minute
	}
	return window
}
