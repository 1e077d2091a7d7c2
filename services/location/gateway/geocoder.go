package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "github.com/piresc/fleetwatch/internal/pkg/http"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/services/location"
)

// Google geocoding API status values
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusInvalidRequest = "INVALID_REQUEST"
)

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// GoogleGeocoder calls the Google geocoding JSON API
type GoogleGeocoder struct {
	client  *httpclient.Client
	apiKey  string
	timeout time.Duration
}

// NewGoogleGeocoder creates a geocoder for the given API endpoint. Every
// call is bounded by timeout on top of the caller's context.
func NewGoogleGeocoder(baseURL, apiKey string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{
		client: httpclient.NewClient(httpclient.Config{
			Name:    "geocoder",
			BaseURL: baseURL,
			Timeout: timeout,
		}),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

var _ location.Geocoder = (*GoogleGeocoder)(nil)

// Forward resolves an address to the provider's first match
func (g *GoogleGeocoder) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		metrics.GeocodeCalls.WithLabelValues("forward", "invalid").Inc()
		return models.GeocodeResult{}, fmt.Errorf("%w: empty address", location.ErrInvalidInput)
	}

	resp, err := g.call(ctx, "forward", url.Values{"address": {address}})
	if err != nil {
		return models.GeocodeResult{}, err
	}

	first := resp.Results[0]
	return models.GeocodeResult{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
		Address:   first.FormattedAddress,
	}, nil
}

// Reverse resolves coordinates to the provider's best address
func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	if !(models.Coordinates{Latitude: lat, Longitude: lng}).Valid() {
		metrics.GeocodeCalls.WithLabelValues("reverse", "invalid").Inc()
		return "", fmt.Errorf("%w: coordinates out of range (%f, %f)", location.ErrInvalidInput, lat, lng)
	}

	latlng := fmt.Sprintf("%.7f,%.7f", lat, lng)
	resp, err := g.call(ctx, "reverse", url.Values{"latlng": {latlng}})
	if err != nil {
		return "", err
	}
	return resp.Results[0].FormattedAddress, nil
}

// call performs one provider request and normalizes every failure into the
// location error taxonomy. A successful response has at least one result.
func (g *GoogleGeocoder) call(ctx context.Context, op string, query url.Values) (*geocodeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	query.Set("key", g.apiKey)

	var resp geocodeResponse
	if err := g.client.GetJSON(ctx, query, &resp); err != nil {
		metrics.GeocodeCalls.WithLabelValues(op, "unavailable").Inc()
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: provider returned HTTP %d", location.ErrUnavailable, statusErr.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", location.ErrUnavailable, err)
	}

	switch resp.Status {
	case statusOK:
		if len(resp.Results) == 0 {
			metrics.GeocodeCalls.WithLabelValues(op, "not_found").Inc()
			return nil, location.ErrNotFound
		}
		metrics.GeocodeCalls.WithLabelValues(op, "ok").Inc()
		return &resp, nil
	case statusZeroResults:
		metrics.GeocodeCalls.WithLabelValues(op, "not_found").Inc()
		return nil, location.ErrNotFound
	case statusInvalidRequest:
		metrics.GeocodeCalls.WithLabelValues(op, "invalid").Inc()
		return nil, fmt.Errorf("%w: %s", location.ErrInvalidInput, resp.ErrorMessage)
	default:
		// OVER_QUERY_LIMIT, REQUEST_DENIED, UNKNOWN_ERROR and anything new
		metrics.GeocodeCalls.WithLabelValues(op, "unavailable").Inc()
		logger.WarnCtx(ctx, "Geocoding provider refused request",
			logger.String("op", op),
			logger.String("status", resp.Status),
			logger.String("error_message", resp.ErrorMessage))
		return nil, fmt.Errorf("%w: provider status %s", location.ErrUnavailable, resp.Status)
	}
}

// DisabledGeocoder is used when no provider is configured. Every lookup is
// unavailable, so address-only reports fail and coordinate reports are
// stored without a label.
type DisabledGeocoder struct{}

var _ location.Geocoder = DisabledGeocoder{}

// Forward always fails with ErrUnavailable
func (DisabledGeocoder) Forward(context.Context, string) (models.GeocodeResult, error) {
	return models.GeocodeResult{}, fmt.Errorf("%w: geocoding is not configured", location.ErrUnavailable)
}

// Reverse always fails with ErrUnavailable
func (DisabledGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return "", fmt.Errorf("%w: geocoding is not configured", location.ErrUnavailable)
}

