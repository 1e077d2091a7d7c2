package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/database"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/utils"
	"github.com/piresc/fleetwatch/services/location"
)

// CachedGeocoder answers repeated lookups from Redis. Only successful
// answers are cached; a broken cache falls through to the provider.
type CachedGeocoder struct {
	next  location.Geocoder
	redis *database.RedisClient
	ttl   time.Duration
}

// NewCachedGeocoder wraps next with a Redis cache
func NewCachedGeocoder(next location.Geocoder, redis *database.RedisClient, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = constants.DefaultGeocodeCacheTTL
	}
	return &CachedGeocoder{next: next, redis: redis, ttl: ttl}
}

var _ location.Geocoder = (*CachedGeocoder)(nil)

func forwardCacheKey(address string) string {
	return fmt.Sprintf(constants.KeyGeocodeForward, utils.NormalizeAddress(address))
}

func reverseCacheKey(lat, lng float64) string {
	hash := utils.EncodeCoordinates(models.Coordinates{Latitude: lat, Longitude: lng}, constants.ReverseCachePrecision)
	return fmt.Sprintf(constants.KeyGeocodeReverse, hash)
}

// Forward returns a cached match or asks the wrapped geocoder
func (g *CachedGeocoder) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	if utils.NormalizeAddress(address) == "" {
		return g.next.Forward(ctx, address)
	}
	key := forwardCacheKey(address)

	if raw, ok := g.lookup(ctx, key); ok {
		var cached models.GeocodeResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			metrics.GeocodeCacheHits.WithLabelValues("forward").Inc()
			return cached, nil
		}
		logger.WarnCtx(ctx, "Discarding corrupt geocode cache entry", logger.String("key", key))
	}

	result, err := g.next.Forward(ctx, address)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		g.store(ctx, key, string(data))
	}
	return result, nil
}

// Reverse returns a cached address for the surrounding cell or asks the
// wrapped geocoder
func (g *CachedGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	if !(models.Coordinates{Latitude: lat, Longitude: lng}).Valid() {
		return g.next.Reverse(ctx, lat, lng)
	}
	key := reverseCacheKey(lat, lng)

	if cached, ok := g.lookup(ctx, key); ok {
		metrics.GeocodeCacheHits.WithLabelValues("reverse").Inc()
		return cached, nil
	}

	address, err := g.next.Reverse(ctx, lat, lng)
	if err != nil {
		return address, err
	}
	g.store(ctx, key, address)
	return address, nil
}

func (g *CachedGeocoder) lookup(ctx context.Context, key string) (string, bool) {
	value, found, err := g.redis.Get(ctx, key)
	if err != nil {
		logger.WarnCtx(ctx, "Geocode cache read failed", logger.String("key", key), logger.Err(err))
		return "", false
	}
	return value, found
}

func (g *CachedGeocoder) store(ctx context.Context, key, value string) {
	if err := g.redis.Set(ctx, key, value, g.ttl); err != nil {
		logger.WarnCtx(ctx, "Geocode cache write failed", logger.String("key", key), logger.Err(err))
	}
}
