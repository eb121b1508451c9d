package stream

import (
	// Go Internal Packages
	"time"
)

// Backoff computes reconnect delays: base doubled per attempt, capped at max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the delay before reconnect attempt number attempt
// (0-based): min(base * 2^attempt, max).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= b.Max || d <= 0 { // <= 0 guards duration overflow
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}
