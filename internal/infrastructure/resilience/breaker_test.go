package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func fail() (string, error)    { return "", errBackend }
func succeed() (string, error) { return "ok", nil }

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{Interval: time.Minute, Timeout: time.Minute},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			settings:      Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(3)},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name:          "success resets the failure streak",
			settings:      Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(3)},
			requests:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("remote", tt.settings)

			for _, success := range tt.requests {
				if success {
					_, _ = Execute(breaker, succeed)
				} else {
					_, _ = Execute(breaker, fail)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("remote", Settings{Interval: time.Minute, Timeout: time.Minute})

	got, err := Execute(breaker, succeed)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(0), counts.TotalFailures)

	_, err = Execute(breaker, fail)
	assert.ErrorIs(t, err, errBackend)

	counts = breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerOpenFailsFast(t *testing.T) {
	breaker := New("remote", Settings{Interval: time.Minute, Timeout: time.Minute, ReadyToTrip: tripAfter(2)})

	for i := 0; i < 2; i++ {
		_, _ = Execute(breaker, fail)
	}
	require.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.Allow())

	called := false
	_, err := Execute(breaker, func() (string, error) {
		called = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := New("remote", Settings{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: tripAfter(2),
	})
	breaker.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, _ = Execute(breaker, fail)
	}
	require.Equal(t, StateOpen, breaker.State())

	now = now.Add(31 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	for i := 0; i < 2; i++ {
		_, err := Execute(breaker, succeed)
		require.NoError(t, err)
	}
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := New("remote", Settings{Timeout: time.Second, ReadyToTrip: tripAfter(1)})
	breaker.now = func() time.Time { return now }

	_, _ = Execute(breaker, fail)
	now = now.Add(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	_, _ = Execute(breaker, fail)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerIsSuccessful(t *testing.T) {
	errClient := errors.New("bad request")
	breaker := New("remote", Settings{
		ReadyToTrip:  tripAfter(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errClient) },
	})

	_, err := Execute(breaker, func() (string, error) { return "", errClient })
	assert.ErrorIs(t, err, errClient)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, uint32(1), breaker.Counts().TotalSuccesses)
}

func TestBreakerCallbacks(t *testing.T) {
	var transitions []string
	now := time.Unix(1_700_000_000, 0)

	breaker := New("remote", Settings{
		Timeout:     10 * time.Millisecond,
		ReadyToTrip: tripAfter(2),
		OnStateChange: func(name string, from State, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	breaker.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, _ = Execute(breaker, fail)
	}
	now = now.Add(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	assert.Equal(t, []string{"closed->open", "open->half-open"}, transitions)
}

func TestBreakerIgnoresResultFromOlderGeneration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	breaker := New("remote", Settings{Interval: time.Second, ReadyToTrip: tripAfter(1)})
	breaker.now = func() time.Time { return now }
	breaker.expiry = now.Add(time.Second)

	// the counts roll over while the call is in flight
	_, err := Execute(breaker, func() (string, error) {
		now = now.Add(2 * time.Second)
		return "", errBackend
	})
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, Counts{}, breaker.Counts())
}
