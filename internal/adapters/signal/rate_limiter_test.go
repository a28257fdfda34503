package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventRateLimiter_AllowsUpToLimit(t *testing.T) {
	req := require.New(t)
	rl := NewEventRateLimiter(3, time.Minute)

	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	// Other connections have their own windows
	req.True(rl.Allow("c2"))
}

func TestEventRateLimiter_WindowSlides(t *testing.T) {
	req := require.New(t)
	rl := NewEventRateLimiter(2, 30*time.Millisecond)

	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	time.Sleep(50 * time.Millisecond)
	req.True(rl.Allow("c1"))
}

func TestEventRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewEventRateLimiter(1, time.Minute)

	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	rl.Forget("c1")
	req.True(rl.Allow("c1"))
}
