package ratelimit

import (
	"testing"
	"time"

	"github.com/landriskai/landrisk/internal/clock"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinLimit(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(5, clk)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow("1.2.3.4").Allowed)
	}

	rejected := limiter.Allow("1.2.3.4")
	require.False(t, rejected.Allowed)
	require.GreaterOrEqual(t, rejected.RetryAfter, time.Second)
	require.LessOrEqual(t, rejected.RetryAfter, time.Minute)
}

func TestWindowResets(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(2, clk)

	require.True(t, limiter.Allow("k").Allowed)
	require.True(t, limiter.Allow("k").Allowed)
	require.False(t, limiter.Allow("k").Allowed)

	clk.Advance(time.Minute)

	require.True(t, limiter.Allow("k").Allowed)
}

func TestRetryAfterShrinksAsWindowAges(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(1, clk)

	require.True(t, limiter.Allow("k").Allowed)

	clk.Advance(45 * time.Second)
	rejected := limiter.Allow("k")
	require.False(t, rejected.Allowed)
	require.Equal(t, 15*time.Second, rejected.RetryAfter)
}

func TestRetryAfterNeverBelowOneSecond(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(1, clk)

	require.True(t, limiter.Allow("k").Allowed)

	clk.Advance(time.Minute - 200*time.Millisecond)
	rejected := limiter.Allow("k")
	require.False(t, rejected.Allowed)
	require.Equal(t, time.Second, rejected.RetryAfter)
}

func TestClientsAreIndependent(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(1, clk)

	require.True(t, limiter.Allow("a").Allowed)
	require.False(t, limiter.Allow("a").Allowed)
	require.True(t, limiter.Allow("b").Allowed)
}

func TestZeroLimitDisablesLimiting(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	limiter := New(0, clk)

	require.False(t, limiter.Enabled())
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("k").Allowed)
	}
}
