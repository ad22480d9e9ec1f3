package resilience

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoValSucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetryConfig(3), "op", func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.Equal(t, 1, calls)
}

func TestDoValRetriesTransient(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetryConfig(3), "op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ECONNRESET
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDoValStopsOnPermanentError(t *testing.T) {
	permanent := eris.New("bad request")
	calls := 0
	_, err := DoVal(context.Background(), fastRetryConfig(3), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetryConfig(2), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoValRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastRetryConfig(5), "op", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, syscall.ECONNREFUSED
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValCustomShouldRetry(t *testing.T) {
	special := eris.New("special")
	cfg := fastRetryConfig(3)
	cfg.ShouldRetry = func(err error) bool { return errors.Is(err, special) }

	calls := 0
	_, err := DoVal(context.Background(), cfg, "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, special
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(eris.New("request timeout exceeded")))
	assert.False(t, IsTimeout(eris.New("not found")))
	assert.False(t, IsTimeout(nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(eris.New("dial tcp: i/o timeout")))
	assert.True(t, IsTransient(eris.New("lookup api.example.com: no such host")))
	assert.False(t, IsTransient(eris.New("401 unauthorized")))
	assert.False(t, IsTransient(nil))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestComputeBackoffCapped(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		Multiplier:     10,
		JitterFraction: 0,
	})

	assert.Equal(t, time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(5, cfg))
}
