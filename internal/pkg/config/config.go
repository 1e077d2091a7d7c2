package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/spf13/viper"
)

// Defaults. StaleAfter is the deployment-wide liveness policy.
const (
	DefaultStaleAfter       = 5 * time.Minute
	DefaultSweepInterval    = 30 * time.Second
	DefaultGeocodeTimeout   = 5 * time.Second
	DefaultGeocoderBaseURL  = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultClusterPrecision = 5
)

// InitConfig loads the optional env file for local runs and reads the
// configuration from the environment
func InitConfig(configPath string) (*models.Config, error) {
	v := newViper()
	if v.GetString("APP_ENV") == "local" && configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}

	configs := loadConfig(v)
	if err := Validate(configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "location-service")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_VERSION", "development")

	v.SetDefault("SERVER_PORT", 9991)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("RATE_LIMIT_REPORTS", 0)
	v.SetDefault("RATE_LIMIT_PERIOD", time.Minute)

	v.SetDefault("LIVENESS_STALE_AFTER", DefaultStaleAfter)
	v.SetDefault("LIVENESS_SWEEP_INTERVAL", DefaultSweepInterval)

	v.SetDefault("GEOCODER_BASE_URL", DefaultGeocoderBaseURL)
	v.SetDefault("GEOCODER_TIMEOUT", DefaultGeocodeTimeout)
	v.SetDefault("GEOCODER_MAX_RETRIES", 2)
	v.SetDefault("GEOCODER_REVERSE_ON_REPORT", true)
	v.SetDefault("GEOCODER_CACHE_TTL", 24*time.Hour)

	v.SetDefault("FLEET_CLUSTER_PRECISION", DefaultClusterPrecision)

	v.SetDefault("LOG_LEVEL", "info")
	return v
}

func loadConfig(v *viper.Viper) *models.Config {
	configs := &models.Config{}

	configs.App.Name = v.GetString("APP_NAME")
	configs.App.Environment = v.GetString("APP_ENV")
	configs.App.Version = v.GetString("APP_VERSION")

	configs.Server.Port = v.GetInt("SERVER_PORT")
	configs.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	configs.Redis.Host = v.GetString("REDIS_HOST")
	configs.Redis.Port = v.GetInt("REDIS_PORT")
	configs.Redis.Password = v.GetString("REDIS_PASSWORD")
	configs.Redis.DB = v.GetInt("REDIS_DB")
	configs.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	configs.NATS.URL = v.GetString("NATS_URL")

	configs.JWT.Secret = v.GetString("JWT_SECRET")

	configs.Internal.APIKeys = splitList(v.GetString("INTERNAL_API_KEYS"))

	configs.Limits.Reports = v.GetInt("RATE_LIMIT_REPORTS")
	configs.Limits.Period = v.GetDuration("RATE_LIMIT_PERIOD")

	configs.Liveness.StaleAfter = v.GetDuration("LIVENESS_STALE_AFTER")
	configs.Liveness.SweepInterval = v.GetDuration("LIVENESS_SWEEP_INTERVAL")

	configs.Geocoder.APIKey = v.GetString("GEOCODER_API_KEY")
	configs.Geocoder.BaseURL = v.GetString("GEOCODER_BASE_URL")
	configs.Geocoder.Timeout = v.GetDuration("GEOCODER_TIMEOUT")
	configs.Geocoder.MaxRetries = v.GetInt("GEOCODER_MAX_RETRIES")
	configs.Geocoder.ReverseOnReport = v.GetBool("GEOCODER_REVERSE_ON_REPORT")
	configs.Geocoder.CacheTTL = v.GetDuration("GEOCODER_CACHE_TTL")

	configs.Fleet.ClusterPrecision = v.GetUint("FLEET_CLUSTER_PRECISION")

	configs.Logger.Level = v.GetString("LOG_LEVEL")
	configs.Logger.FilePath = v.GetString("LOG_FILE_PATH")

	return configs
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects configurations the liveness sweep cannot honour
func Validate(configs *models.Config) error {
	var errs []error

	if configs.Liveness.StaleAfter <= 0 {
		errs = append(errs, fmt.Errorf("LIVENESS_STALE_AFTER must be positive, got %s", configs.Liveness.StaleAfter))
	}
	if configs.Liveness.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("LIVENESS_SWEEP_INTERVAL must be positive, got %s", configs.Liveness.SweepInterval))
	}
	if configs.Liveness.SweepInterval >= configs.Liveness.StaleAfter {
		errs = append(errs, fmt.Errorf("LIVENESS_SWEEP_INTERVAL (%s) must be smaller than LIVENESS_STALE_AFTER (%s)",
			configs.Liveness.SweepInterval, configs.Liveness.StaleAfter))
	}
	if configs.Geocoder.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("GEOCODER_TIMEOUT must be positive, got %s", configs.Geocoder.Timeout))
	}
	if configs.Geocoder.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("GEOCODER_MAX_RETRIES must not be negative, got %d", configs.Geocoder.MaxRetries))
	}
	if configs.Limits.Reports < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REPORTS must not be negative, got %d", configs.Limits.Reports))
	}
	if configs.Limits.Reports > 0 && configs.Limits.Period <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PERIOD must be positive, got %s", configs.Limits.Period))
	}
	if configs.Fleet.ClusterPrecision < 1 || configs.Fleet.ClusterPrecision > 12 {
		errs = append(errs, fmt.Errorf("FLEET_CLUSTER_PRECISION must be between 1 and 12, got %d", configs.Fleet.ClusterPrecision))
	}

	return errors.Join(errs...)
}
