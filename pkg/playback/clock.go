// Package playback schedules inbound audio chunks against a monotonic output
// clock so they play back-to-back with no gap and no overlap.
package playback

import "time"

// Clock reports elapsed time on the output timeline. The zero point is
// whenever the clock was created (session open).
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a monotonic output clock starting at zero.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
