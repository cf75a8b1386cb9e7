package stylist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyStopsOnTerminalError(t *testing.T) {
	terminal := errors.New("bad request")
	calls := 0

	p := RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Millisecond),
		Retryable:   func(err error) bool { return false },
	}
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return terminal
	})

	require.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	retryable := errors.New("overloaded")
	calls := 0

	p := RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(time.Millisecond),
		Retryable:   func(err error) bool { return errors.Is(err, retryable) },
	}
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return retryable
	})

	require.ErrorIs(t, err, retryable)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	p := RetryPolicy{
		MaxAttempts: 5,
		Backoff:     LinearBackoff(time.Hour),
		Retryable:   func(error) bool { return true },
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("overloaded")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation must abandon in-flight retries")
}

func TestLinearBackoff(t *testing.T) {
	backoff := LinearBackoff(2 * time.Second)
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
}

func TestClientRetriesOnlyOnOverload(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"selectedItems\": []}"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)
	client.retry.Backoff = LinearBackoff(time.Millisecond)

	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "503 responses are retried")
	assert.Contains(t, text, "selectedItems")
}

func TestClientTerminalOnOtherStatuses(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)
	client.retry.Backoff = LinearBackoff(time.Millisecond)

	_, err = client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.False(t, IsOverloaded(err))
	assert.Equal(t, 1, calls, "non-503 failures are terminal")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "")
	require.Error(t, err)
}
