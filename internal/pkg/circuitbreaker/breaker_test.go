package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
)

var errDown = errors.New("down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	cfg := DefaultConfig("geocoder")
	cfg.FailureThreshold = 3
	cfg.Timeout = 10 * time.Second
	cb := New(cfg, logger.NewNopLogger())
	cb.now = clock.now
	cb.expiry = clock.t.Add(cfg.Interval)
	return cb
}

func fail(context.Context) error    { return errDown }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name     string
		probe    func(context.Context) error
		expected State
	}{
		{name: "probe succeeds", probe: succeed, expected: StateClosed},
		{name: "probe fails", probe: fail, expected: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
			cb := newTestBreaker(clock)
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				_ = cb.Execute(ctx, fail)
			}

			clock.t = clock.t.Add(11 * time.Second)
			_ = cb.Execute(ctx, tt.probe)

			assert.Equal(t, tt.expected, cb.State())
		})
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	cfg := DefaultConfig("geocoder")
	cfg.FailureThreshold = 1
	cfg.IsFailure = func(err error) bool { return errors.Is(err, errDown) }
	cb := New(cfg, logger.NewNopLogger())

	_ = cb.Execute(context.Background(), func(context.Context) error { return errors.New("bad input") })

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var transitions []State
	cfg := DefaultConfig("geocoder")
	cfg.FailureThreshold = 1
	cfg.OnStateChange = func(_ string, _, to State) { transitions = append(transitions, to) }
	cb := New(cfg, logger.NewNopLogger())

	_ = cb.Execute(context.Background(), fail)

	assert.Equal(t, []State{StateOpen}, transitions)
	assert.Equal(t, "OPEN", cb.State().String())
}
