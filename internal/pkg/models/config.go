package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Internal InternalConfig
	Limits   RateLimitConfig
	Liveness LivenessConfig
	Geocoder GeocoderConfig
	Fleet    FleetConfig
	Logger   LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// RedisConfig contains Redis connection configuration.
// An empty Host disables every Redis-backed component.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains the secret used to verify identity tokens
type JWTConfig struct {
	Secret string
}

// InternalConfig guards service-to-service routes. No keys disables them.
type InternalConfig struct {
	APIKeys []string
}

// RateLimitConfig bounds how often a single agent may report. Requires Redis.
type RateLimitConfig struct {
	Reports int // per Period, 0 disables the limiter
	Period  time.Duration
}

// LivenessConfig controls when a record is considered inactive
type LivenessConfig struct {
	StaleAfter    time.Duration // age after which a record is inactive
	SweepInterval time.Duration // must be smaller than StaleAfter
}

// GeocoderConfig contains geocoding provider configuration
type GeocoderConfig struct {
	APIKey          string
	BaseURL         string
	Timeout         time.Duration // per provider call
	MaxRetries      int
	ReverseOnReport bool // label coordinate reports with a reverse lookup
	CacheTTL        time.Duration
}

// FleetConfig contains fleet view options
type FleetConfig struct {
	ClusterPrecision uint // geohash length used to group records
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
