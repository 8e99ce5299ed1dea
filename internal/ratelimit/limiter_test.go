package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightdeals/internal/ratelimit"
)

func TestLimiter_SharedPerUpstream(t *testing.T) {
	u := ratelimit.NewUpstreamLimiter(ratelimit.DefaultConfig())

	a := u.Limiter("google-flights2")
	b := u.Limiter("google-flights2")
	c := u.Limiter("flights-sky")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 20, a.Burst())
}

func TestLimiter_ZeroConfigUsesDefaults(t *testing.T) {
	u := ratelimit.NewUpstreamLimiter(ratelimit.Config{})
	assert.Equal(t, 20, u.Limiter("x").Burst())
}

func TestWait_WithinBurst(t *testing.T) {
	u := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		Limit: ratelimit.Limit{RequestsPerSecond: 1, BurstSize: 3},
	})

	for i := 0; i < 3; i++ {
		waited, err := u.Wait(context.Background(), "google-flights2")
		require.NoError(t, err)
		assert.Less(t, waited, 500*time.Millisecond)
	}
}

func TestWait_CancelledContext(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.Overrides = map[string]ratelimit.Limit{"slow": {RequestsPerSecond: 0.001, BurstSize: 1}}
	u := ratelimit.NewUpstreamLimiter(cfg)

	_, err := u.Wait(context.Background(), "slow")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = u.Wait(ctx, "slow")
	assert.Error(t, err)
}

func TestLimiter_Overrides(t *testing.T) {
	u := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		Limit: ratelimit.Limit{RequestsPerSecond: 10, BurstSize: 20},
		Overrides: map[string]ratelimit.Limit{
			"flights-sky": {RequestsPerSecond: 2, BurstSize: 4},
			"broken":      {RequestsPerSecond: 0, BurstSize: 4},
		},
	})

	assert.Equal(t, 4, u.Limiter("flights-sky").Burst())
	assert.Equal(t, 20, u.Limiter("google-flights2").Burst())
	assert.Equal(t, 20, u.Limiter("broken").Burst())
}
