package guard

import (
	"sync"
	"time"
)

// DefaultWindow is the minimum time between two accepted actions.
const DefaultWindow = time.Second

// ShouldProceed reports whether an action started at now may run given the last
// accepted action. A zero last means no action has been accepted yet.
func ShouldProceed(last, now time.Time, window time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= window
}

// Guard debounces a single control. It owns the last action timestamp.
type Guard struct {
	mu     sync.Mutex
	last   time.Time
	window time.Duration
	now    func() time.Time
}

// New returns a Guard. A non-positive window falls back to DefaultWindow and a nil
// clock to time.Now.
func New(window time.Duration, clock func() time.Time) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &Guard{window: window, now: clock}
}

// Try records the current time and returns true when the action may proceed.
// A denied attempt leaves the recorded timestamp untouched.
func (g *Guard) Try() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !ShouldProceed(g.last, now, g.window) {
		return false
	}
	g.last = now
	return true
}

func (g *Guard) lastAccepted() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
