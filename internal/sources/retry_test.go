package sources

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type statusErr struct {
	status int
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

func (e *statusErr) HTTPStatus() int {
	return e.status
}

func fastPolicy() *RetryPolicy {
	p := NewRetryPolicy()
	p.InitialBackoff = time.Millisecond
	p.MaxBackoff = 5 * time.Millisecond
	return p
}

func TestShouldRetry(t *testing.T) {
	p := NewRetryPolicy()

	tests := []struct {
		name       string
		attempt    int
		statusCode int
		err        error
		want       bool
	}{
		{"retryable 503", 0, 503, nil, true},
		{"retryable 429", 1, 429, nil, true},
		{"retryable 408", 0, 408, nil, true},
		{"client error 404", 0, 404, nil, false},
		{"client error 401", 0, 401, nil, false},
		{"max attempts reached", 3, 503, nil, false},
		{"deadline exceeded", 0, 0, context.DeadlineExceeded, true},
		{"plain error", 0, 0, errors.New("parse failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldRetry(tt.attempt, tt.statusCode, tt.err))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	p := NewRetryPolicy()

	for attempt := 0; attempt < 5; attempt++ {
		backoff := p.CalculateBackoff(attempt)
		assert.Greater(t, backoff, time.Duration(0), "attempt %d", attempt)
		// Jitter can push the capped value up by at most 25%
		assert.LessOrEqual(t, backoff, time.Duration(float64(p.MaxBackoff)*1.25), "attempt %d", attempt)
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 503, statusOf(&statusErr{status: 503}))
	assert.Equal(t, 502, statusOf(fmt.Errorf("fetch failed: %w", &statusErr{status: 502})))
	assert.Equal(t, 0, statusOf(errors.New("plain")))
	assert.Equal(t, 0, statusOf(nil))
}

func TestExecute_SucceedsAfterRetry(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), arbor.NewLogger(), func() error {
		calls++
		if calls < 3 {
			return &statusErr{status: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_NonRetryableFailsFast(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), arbor.NewLogger(), func() error {
		calls++
		return &statusErr{status: 404}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), arbor.NewLogger(), func() error {
		calls++
		return &statusErr{status: 503}
	})

	require.Error(t, err)
	assert.Equal(t, p.MaxAttempts, calls)

	var se *statusErr
	assert.ErrorAs(t, err, &se)
}

func TestExecute_ContextCancelledDuringBackoff(t *testing.T) {
	p := fastPolicy()
	p.InitialBackoff = time.Minute
	p.MaxBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.Execute(ctx, arbor.NewLogger(), func() error {
		calls++
		cancel()
		return &statusErr{status: 503}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
