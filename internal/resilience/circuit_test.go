package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker("test", 4, 0.5, time.Minute, zerolog.Nop())

	for i := 0; i < 4; i++ {
		require.True(t, b.Allow())
		b.Report(false)
	}
	require.False(t, b.Allow())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker("test", 2, 0.5, 10*time.Millisecond, zerolog.Nop())
	b.Report(false)
	b.Report(false)
	require.False(t, b.Allow())

	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow()) // half-open probe
	b.Report(true)
	require.True(t, b.Allow())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker("test", 2, 0.5, 10*time.Millisecond, zerolog.Nop())
	b.Report(false)
	b.Report(false)
	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow())
	b.Report(false)
	require.False(t, b.Allow())
}

func TestDo(t *testing.T) {
	b := NewBreaker("test", 4, 0.5, time.Minute, zerolog.Nop())
	boom := errors.New("downstream")

	require.NoError(t, b.Do(context.Background(), func(context.Context) error { return nil }))
	require.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return boom }), boom)
	require.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return boom }), boom)
	// the fourth report reaches minRequests at a 3/4 failure ratio and opens
	require.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return boom }), boom)
	require.ErrorIs(t, b.Do(context.Background(), func(context.Context) error { return nil }), ErrOpenCircuit)
}
