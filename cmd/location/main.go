package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/circuitbreaker"
	"github.com/piresc/fleetwatch/internal/pkg/config"
	"github.com/piresc/fleetwatch/internal/pkg/database"
	"github.com/piresc/fleetwatch/internal/pkg/health"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/middleware"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	natspkg "github.com/piresc/fleetwatch/internal/pkg/nats"
	"github.com/piresc/fleetwatch/internal/pkg/retry"
	"github.com/piresc/fleetwatch/internal/pkg/server"
	wspkg "github.com/piresc/fleetwatch/internal/pkg/websocket"
	"github.com/piresc/fleetwatch/services/location"
	"github.com/piresc/fleetwatch/services/location/aggregator"
	"github.com/piresc/fleetwatch/services/location/gateway"
	"github.com/piresc/fleetwatch/services/location/handler"
	"github.com/piresc/fleetwatch/services/location/liveness"
	"github.com/piresc/fleetwatch/services/location/repository"
	"github.com/piresc/fleetwatch/services/location/usecase"
)

func main() {
	configPath := flag.String("config", "config/location.env", "env file loaded when APP_ENV=local")
	flag.Parse()

	configs, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	appName := configs.App.Name

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	logger.SetGlobalLogger(zapLogger)
	defer zapLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := server.NewShutdownManager(zapLogger)
	healthService := health.NewHealthService()

	// Redis only backs the geocode cache and the rate limiter
	var redisClient *database.RedisClient
	if configs.Redis.Host != "" {
		redisClient, err = database.NewRedisClient(configs.Redis)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
		healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient), false)
	} else {
		zapLogger.Warn("REDIS_HOST not set, geocode cache and rate limiting are disabled")
	}

	var natsClient *natspkg.Client
	if configs.NATS.URL != "" {
		natsClient, err = natspkg.NewClient(configs.NATS.URL, appName)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
		shutdown.Register("nats", func(context.Context) error {
			natsClient.Close()
			return nil
		})
		healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient), true)
	}

	geocoder := newGeocoder(configs, redisClient, zapLogger, healthService)

	var locationGW location.LocationGW = gateway.NewNoopLocationGW()
	if natsClient != nil {
		locationGW = gateway.NewLocationGW(natsClient)
	}

	locationRepo := repository.NewLocationStore()
	evaluator := liveness.NewEvaluator(configs.Liveness.StaleAfter)
	locationUC := usecase.NewLocationUC(
		locationRepo,
		geocoder,
		locationGW,
		evaluator,
		aggregator.New(configs.Fleet.ClusterPrecision),
		usecase.Options{ReverseOnReport: configs.Geocoder.ReverseOnReport},
	)

	sweeper, err := liveness.NewSweeper(locationRepo, evaluator, configs.Liveness.SweepInterval)
	if err != nil {
		zapLogger.Fatal("Failed to create liveness sweeper", logger.Err(err))
	}

	manager := wspkg.NewManager()
	locationHandler := handler.NewHTTPHandler(locationUC, natsClient, redisClient, manager, configs)
	sweeper.OnPass(locationHandler.Dashboard().Broadcast)

	if err := locationHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}
	shutdown.Register("handlers", func(context.Context) error {
		locationHandler.Close()
		return nil
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(sweepCtx)
	}()
	shutdown.Register("sweeper", func(ctx context.Context) error {
		stopSweep()
		select {
		case <-sweepDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestContextMiddleware(appName))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)
	e.GET("/metrics", metrics.Handler())
	locationHandler.RegisterRoutes(e)

	zapLogger.Info("Starting location service",
		logger.String("app", appName),
		logger.String("env", configs.App.Environment),
		logger.Int("port", configs.Server.Port),
		logger.Duration("stale_after", configs.Liveness.StaleAfter),
		logger.Duration("sweep_interval", configs.Liveness.SweepInterval))

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port, configs.Server.ShutdownTimeout)
	runErr := srv.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(configs))
	defer cancel()
	if err := shutdown.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown finished with errors", logger.Err(err))
	}

	if runErr != nil {
		zapLogger.Error("Server stopped with error", logger.Err(runErr))
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

// newGeocoder builds cache -> breaker/retry -> provider, or a disabled
// geocoder when no API key is configured
func newGeocoder(configs *models.Config, redisClient *database.RedisClient, zapLogger *logger.ZapLogger, healthService *health.HealthService) location.Geocoder {
	if configs.Geocoder.APIKey == "" {
		zapLogger.Warn("GEOCODER_API_KEY not set, address reports will fail and coordinates stay unlabelled")
		return gateway.DisabledGeocoder{}
	}

	provider := gateway.NewGoogleGeocoder(configs.Geocoder.BaseURL, configs.Geocoder.APIKey, configs.Geocoder.Timeout)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = configs.Geocoder.MaxRetries
	resilient := gateway.NewResilientGeocoder(provider, retryCfg, circuitbreaker.DefaultConfig("geocoder"), zapLogger)
	healthService.AddChecker("geocoder", health.NewBreakerHealthChecker(resilient.BreakerState), false)

	if redisClient == nil {
		return resilient
	}
	return gateway.NewCachedGeocoder(resilient, redisClient, configs.Geocoder.CacheTTL)
}

func shutdownTimeout(configs *models.Config) time.Duration {
	if configs.Server.ShutdownTimeout > 0 {
		return configs.Server.ShutdownTimeout
	}
	return server.DefaultShutdownTimeout
}
