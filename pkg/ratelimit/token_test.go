package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTokenLimiter(t *testing.T) {
	t.Run("consumes and refills", func(t *testing.T) {
		l := NewTokenLimiterWithPeriod(2, 50*time.Millisecond)
		ctx := context.Background()

		require.NoError(t, l.Wait(ctx, 1))
		require.NoError(t, l.Wait(ctx, 1))
		assert.Equal(t, 0, l.GetRemaining())

		start := time.Now()
		require.NoError(t, l.Wait(ctx, 1))
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		l := NewTokenLimiterWithPeriod(1, time.Hour)
		require.NoError(t, l.Wait(context.Background(), 1))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, l.Wait(ctx, 1), context.DeadlineExceeded)
	})
}

func TestLimiterStore(t *testing.T) {
	s := NewLimiterStore(rate.Inf, 1)
	a := s.GetLimiter("BYBIT")
	b := s.GetLimiter("BYBIT")
	c := s.GetLimiter("ALPHA_VANTAGE")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
