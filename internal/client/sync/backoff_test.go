package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		maxDelay time.Duration
		want     time.Duration
	}{
		{attempts: 0, maxDelay: time.Minute, want: time.Second},
		{attempts: 1, maxDelay: time.Minute, want: 2 * time.Second},
		{attempts: 2, maxDelay: time.Minute, want: 4 * time.Second},
		{attempts: 5, maxDelay: time.Minute, want: 32 * time.Second},
		{attempts: 6, maxDelay: time.Minute, want: time.Minute},
		{attempts: 40, maxDelay: 5 * time.Minute, want: 5 * time.Minute},
		{attempts: 100, maxDelay: 0, want: time.Duration(1<<63 - 1)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.attempts, tt.maxDelay), "attempts=%d", tt.attempts)
	}
}

func TestBackoff_Monotonic(t *testing.T) {
	prev := time.Duration(0)
	for n := 0; n < 20; n++ {
		d := Backoff(n, 10*time.Minute)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, 10*time.Minute)
		prev = d
	}
}
