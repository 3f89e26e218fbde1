package sync

import (
	"math"
	"time"
)

// Backoff returns the delay before the next attempt after attempts
// consecutive transient failures: min(maxDelay, 2^attempts) seconds.
func Backoff(attempts int, maxDelay time.Duration) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	// 2^62 секунд переполняет time.Duration, поэтому сравниваем в float
	seconds := math.Pow(2, float64(attempts))
	if maxDelay > 0 && seconds >= maxDelay.Seconds() {
		return maxDelay
	}
	if seconds >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds) * time.Second
}
