package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	req := require.New(t)
	rl := newRateLimiter(3, time.Hour)

	// Given a fresh bucket, the burst passes
	for i := 0; i < 3; i++ {
		req.True(rl.allow(), "token %d should be available", i)
	}

	// Then the next request is throttled
	req.False(rl.allow())
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	req := require.New(t)
	rl := newRateLimiter(2, 100*time.Millisecond)

	req.True(rl.allow())
	req.True(rl.allow())
	req.False(rl.allow())

	// When enough time passes for at least one token
	time.Sleep(80 * time.Millisecond)

	// Then a request passes again
	req.True(rl.allow())
}

func TestRateLimiter_DefendsAgainstZeroConfig(t *testing.T) {
	req := require.New(t)
	rl := newRateLimiter(0, 0)

	// A degenerate configuration still allows one request
	req.True(rl.allow())
}
