package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) sleep(_ context.Context, wait time.Duration) error {
	f.waits = append(f.waits, wait)
	return nil
}

func newTestCaller(sleeper *fakeSleeper) *Caller {
	c := New()
	c.Sleeper = sleeper.sleep
	return c
}

type structuredErr struct {
	msg     string
	limited bool
}

func (e *structuredErr) Error() string     { return e.msg }
func (e *structuredErr) RateLimited() bool { return e.limited }

func TestCallRetriesRateLimitedFailures(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantWaits []time.Duration
	}{
		{
			name:      "one failure",
			failures:  1,
			wantWaits: []time.Duration{60 * time.Second},
		},
		{
			name:     "rate limit storm",
			failures: 3,
			wantWaits: []time.Duration{
				60 * time.Second,
				120 * time.Second,
				240 * time.Second,
			},
		},
		{
			name:     "five failures uses the whole budget",
			failures: 5,
			wantWaits: []time.Duration{
				60 * time.Second,
				120 * time.Second,
				240 * time.Second,
				480 * time.Second,
				960 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &fakeSleeper{}
			caller := newTestCaller(sleeper)

			calls := 0
			result, err := Call(context.Background(), caller, func() ([]string, error) {
				calls++
				if calls <= tt.failures {
					return nil, errors.New("User rate limit exceeded")
				}
				return []string{}, nil
			})

			require.NoError(t, err)
			assert.Equal(t, []string{}, result)
			assert.Equal(t, tt.failures+1, calls)
			assert.Equal(t, tt.wantWaits, sleeper.waits)
		})
	}
}

func TestCallDoesNotRetryNonRateErrors(t *testing.T) {
	sleeper := &fakeSleeper{}
	caller := newTestCaller(sleeper)

	calls := 0
	boom := errors.New("invalid access token")
	_, err := Call(context.Background(), caller, func() (int, error) {
		calls++
		return 0, boom
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.waits)
}

func TestCallExhaustsRetryBudget(t *testing.T) {
	sleeper := &fakeSleeper{}
	caller := newTestCaller(sleeper)

	calls := 0
	last := errors.New("(#17) User request limit reached, rate limited")
	_, err := Call(context.Background(), caller, func() (int, error) {
		calls++
		return 0, last
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 6, exhausted.Attempts)
	assert.Equal(t, last, exhausted.Err)
	assert.Equal(t, 6, calls)
	// Sleeps happen between attempts, never after the final failure.
	assert.Len(t, sleeper.waits, 5)
}

func TestCallStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	caller := New()
	caller.Sleeper = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	_, err := Call(ctx, caller, func() (int, error) {
		calls++
		return 0, errors.New("rate limit")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"substring match", errors.New("User rate limit exceeded"), true},
		{"case insensitive", errors.New("RATE limit"), true},
		{"structured positive", &structuredErr{msg: "too many calls", limited: true}, true},
		{"structured negative falls back to substring", &structuredErr{msg: "rate exceeded", limited: false}, true},
		{"structured negative without substring", &structuredErr{msg: "bad request", limited: false}, false},
		{"wrapped structured error", errors.Wrap(&structuredErr{msg: "quota", limited: true}, "meta"), true},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}
