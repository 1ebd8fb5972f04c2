package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("backend unavailable")

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestPolicyDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantWaits int
		wantErr   error
	}{
		{name: "succeeds first time", failures: 0, wantCalls: 1, wantWaits: 0},
		{name: "recovers on third attempt", failures: 2, err: errFlaky, wantCalls: 3, wantWaits: 2},
		{name: "recovers on last attempt", failures: 4, err: errFlaky, wantCalls: 5, wantWaits: 4},
		{name: "exhausts attempts", failures: 10, err: errFlaky, wantCalls: 5, wantWaits: 4, wantErr: ErrExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSleeper{}
			p := Policy{MaxAttempts: 5, Delay: 3 * time.Second, Sleep: s.sleep}

			calls := 0
			err := p.Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Len(t, s.waits, tt.wantWaits)
			for _, w := range s.waits {
				assert.Equal(t, 3*time.Second, w)
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyDoNonRetryable(t *testing.T) {
	permanent := errors.New("permission denied")
	s := &recordingSleeper{}
	p := Policy{
		MaxAttempts: 5,
		Delay:       time.Second,
		Sleep:       s.sleep,
		Retryable:   func(err error) bool { return errors.Is(err, errFlaky) },
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})

	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, s.waits)
}

func TestPolicyDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, Delay: time.Hour}

	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errFlaky
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestPolicyDoReportsRetries(t *testing.T) {
	var attempts []int
	p := Policy{
		MaxAttempts: 3,
		Sleep:       func(context.Context, time.Duration) error { return nil },
		OnRetry:     func(attempt int, _ error) { attempts = append(attempts, attempt) },
	}

	err := p.Do(context.Background(), func(context.Context) error { return errFlaky })

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestPolicyDoTreatsZeroAttemptsAsOne(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
}
