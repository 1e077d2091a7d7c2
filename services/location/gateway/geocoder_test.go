package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/piresc/fleetwatch/services/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// fakeProvider mimics the Google geocoding JSON API for a handful of places
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != testAPIKey {
			writeJSON(w, map[string]interface{}{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []interface{}{}})
			return
		}

		switch {
		case q.Get("address") == "Victoria Island, Lagos":
			writeJSON(w, okResponse("Victoria Island, Lagos, Nigeria", 6.4281, 3.4219))
		case q.Get("latlng") == "6.4281000,3.4219000":
			writeJSON(w, okResponse("Adeola Odeku St, Victoria Island, Lagos 106104, Lagos, Nigeria", 6.4281, 3.4219))
		case q.Get("latlng") == "0.0000000,-30.0000000":
			writeJSON(w, map[string]interface{}{"status": "ZERO_RESULTS", "results": []interface{}{}})
		case q.Get("address") == "over quota":
			writeJSON(w, map[string]interface{}{"status": "OVER_QUERY_LIMIT", "results": []interface{}{}})
		case q.Get("address") == "malformed":
			writeJSON(w, map[string]interface{}{"status": "INVALID_REQUEST", "error_message": "bad", "results": []interface{}{}})
		case q.Get("address") == "crash":
			w.WriteHeader(http.StatusInternalServerError)
		case q.Get("address") == "slow":
			time.Sleep(200 * time.Millisecond)
			writeJSON(w, okResponse("Slow Street", 1, 1))
		default:
			writeJSON(w, map[string]interface{}{"status": "ZERO_RESULTS", "results": []interface{}{}})
		}
	}))
}

func okResponse(address string, lat, lng float64) map[string]interface{} {
	return map[string]interface{}{
		"status": "OK",
		"results": []interface{}{
			map[string]interface{}{
				"formatted_address": address,
				"geometry": map[string]interface{}{
					"location": map[string]float64{"lat": lat, "lng": lng},
				},
			},
		},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGoogleGeocoder_RoundTrip(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()
	g := NewGoogleGeocoder(srv.URL, testAPIKey, time.Second)
	ctx := context.Background()

	result, err := g.Forward(ctx, "Victoria Island, Lagos")
	require.NoError(t, err)
	assert.InDelta(t, 6.4281, result.Latitude, 1e-9)
	assert.InDelta(t, 3.4219, result.Longitude, 1e-9)
	assert.Equal(t, "Victoria Island, Lagos, Nigeria", result.Address)

	address, err := g.Reverse(ctx, result.Latitude, result.Longitude)
	require.NoError(t, err)
	assert.Contains(t, address, "Victoria Island")
}

func TestGoogleGeocoder_Forward_Errors(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()

	tests := []struct {
		name     string
		apiKey   string
		address  string
		timeout  time.Duration
		expected error
	}{
		{name: "empty address", address: "  ", expected: location.ErrInvalidInput},
		{name: "no match", address: "Atlantis", expected: location.ErrNotFound},
		{name: "over quota", address: "over quota", expected: location.ErrUnavailable},
		{name: "denied", apiKey: "wrong", address: "Victoria Island, Lagos", expected: location.ErrUnavailable},
		{name: "invalid request", address: "malformed", expected: location.ErrInvalidInput},
		{name: "server error", address: "crash", expected: location.ErrUnavailable},
		{name: "timeout", address: "slow", timeout: 20 * time.Millisecond, expected: location.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.apiKey
			if key == "" {
				key = testAPIKey
			}
			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			g := NewGoogleGeocoder(srv.URL, key, timeout)

			_, err := g.Forward(context.Background(), tt.address)

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestGoogleGeocoder_Reverse_Errors(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()
	g := NewGoogleGeocoder(srv.URL, testAPIKey, time.Second)

	_, err := g.Reverse(context.Background(), 0, -30)
	assert.ErrorIs(t, err, location.ErrNotFound)

	_, err = g.Reverse(context.Background(), 91, 0)
	assert.ErrorIs(t, err, location.ErrInvalidInput)
}

func TestGoogleGeocoder_NetworkFailure(t *testing.T) {
	srv := fakeProvider(t)
	url := srv.URL
	srv.Close()

	g := NewGoogleGeocoder(url, testAPIKey, time.Second)

	_, err := g.Forward(context.Background(), "Victoria Island, Lagos")
	assert.ErrorIs(t, err, location.ErrUnavailable)
}

func TestGoogleGeocoder_CallerDeadline(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	g := NewGoogleGeocoder(srv.URL, testAPIKey, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Forward(ctx, "anywhere")

	assert.ErrorIs(t, err, location.ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDisabledGeocoder(t *testing.T) {
	var g DisabledGeocoder

	_, err := g.Forward(context.Background(), "Victoria Island, Lagos")
	assert.ErrorIs(t, err, location.ErrUnavailable)

	_, err = g.Reverse(context.Background(), 6.4, 3.4)
	assert.ErrorIs(t, err, location.ErrUnavailable)
}
