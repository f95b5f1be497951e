package worker

import (
	"math/rand/v2"
	"time"
)

// Backoff spaces out retries of a failed invite-link dispatch: Base doubles per
// attempt up to Max, plus up to Jitter of random spread.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration
}

// DefaultBackoff retries after 2s, 4s, 8s and so on, capped at 5m.
var DefaultBackoff = Backoff{Base: 2 * time.Second, Max: 5 * time.Minute, Jitter: 250 * time.Millisecond}

func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := b.Max
	// past 30 doublings any sane Base is already over Max
	if attempt < 30 {
		if d := b.Base << attempt; d > 0 && d < b.Max {
			delay = d
		}
	}

	if b.Jitter > 0 {
		delay += rand.N(b.Jitter)
	}
	return delay
}
