package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/piresc/fleetwatch/internal/pkg/circuitbreaker"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/pkg/retry"
	"github.com/piresc/fleetwatch/services/location"
)

// ResilientGeocoder retries unavailable lookups with backoff and stops
// calling the provider while it keeps failing. NotFound and InvalidInput
// are answers, not failures, and are returned at once.
type ResilientGeocoder struct {
	next    location.Geocoder
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientGeocoder wraps next with the given retry policy and a breaker
func NewResilientGeocoder(next location.Geocoder, retryCfg retry.Config, breakerCfg circuitbreaker.Config, l *logger.ZapLogger) *ResilientGeocoder {
	retryCfg.IsRetryable = isUnavailable
	breakerCfg.IsFailure = isUnavailable
	return &ResilientGeocoder{
		next:    next,
		retrier: retry.New(retryCfg, l),
		breaker: circuitbreaker.New(breakerCfg, l),
	}
}

var _ location.Geocoder = (*ResilientGeocoder)(nil)

func isUnavailable(err error) bool {
	return errors.Is(err, location.ErrUnavailable)
}

// Forward resolves an address through the breaker and retry policy
func (g *ResilientGeocoder) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	var result models.GeocodeResult
	err := g.do(ctx, func(ctx context.Context) error {
		var err error
		result, err = g.next.Forward(ctx, address)
		return err
	})
	return result, err
}

// Reverse resolves coordinates through the breaker and retry policy
func (g *ResilientGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	var address string
	err := g.do(ctx, func(ctx context.Context) error {
		var err error
		address, err = g.next.Reverse(ctx, lat, lng)
		return err
	})
	return address, err
}

// BreakerState exposes the breaker state for health reporting
func (g *ResilientGeocoder) BreakerState() circuitbreaker.State {
	return g.breaker.State()
}

func (g *ResilientGeocoder) do(ctx context.Context, fn func(context.Context) error) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.retrier.Execute(ctx, fn)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, circuitbreaker.ErrOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", location.ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if !isUnavailable(err) {
			return fmt.Errorf("%w: %v", location.ErrUnavailable, err)
		}
	}
	return err
}
