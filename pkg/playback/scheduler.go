package playback

import (
	"sync"
	"time"
)

// Scheduler assigns each inbound chunk a start time on the output timeline.
// The cursor begins at session-open time and advances by each chunk's
// duration, so in-order chunks play gapless and non-overlapping regardless
// of network jitter.
type Scheduler struct {
	clock Clock

	mu     sync.Mutex
	cursor time.Duration
}

// NewScheduler creates a scheduler whose cursor starts at the clock's
// current time.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		cursor: clock.Now(),
	}
}

// Schedule assigns the next chunk of duration d a start time of
// max(now, cursor) and advances the cursor past it. The returned gap is the
// idle span between the previous cursor and the assigned start; it is
// non-zero only when playback underran the network.
func (s *Scheduler) Schedule(d time.Duration) (start, gap time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start = s.clock.Now()
	if s.cursor > start {
		start = s.cursor
	}
	gap = start - s.cursor
	if gap < 0 {
		gap = 0
	}
	s.cursor = start + d
	return start, gap
}

// Reset snaps the cursor back to the current clock time, discarding the
// remaining schedule. Used when the user interrupts the model's speech.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = s.clock.Now()
}

// Cursor returns the next scheduled start time.
func (s *Scheduler) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}
