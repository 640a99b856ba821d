package deltalog

import (
	"math/rand"
	"time"
)

const (
	// baseBackoff is the unit the exponential retry delay is scaled from.
	baseBackoff = 50 * time.Millisecond
	// maxBackoff caps the exponential growth of subsequent retries.
	maxBackoff = 5 * time.Second
)

// computeBackoff returns the delay before retrying a conflicting commit,
// using exponential backoff with jitter: min(base*2^attempt, maxDelay) plus
// a random jitter in [0, base). attempt is the index of the attempt about
// to run (1 = first retry).
func computeBackoff(attempt int, base, maxDelay time.Duration, rng *rand.Rand) time.Duration {
	delay := base * time.Duration(1<<uint(attempt))
	if delay > maxDelay || delay < 0 {
		delay = maxDelay
	}
	var jitter time.Duration
	if rng != nil {
		jitter = time.Duration(rng.Int63n(int64(base)))
	} else {
		jitter = time.Duration(rand.Int63n(int64(base))) // #nosec G404 -- jitter for retry timing, not security
	}
	return delay + jitter
}
