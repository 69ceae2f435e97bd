package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/piresc/ridertrack/internal/pkg/config"
	"github.com/piresc/ridertrack/internal/pkg/database"
	"github.com/piresc/ridertrack/internal/pkg/health"
	"github.com/piresc/ridertrack/internal/pkg/lock"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/metrics"
	"github.com/piresc/ridertrack/internal/pkg/models"
	appmiddleware "github.com/piresc/ridertrack/internal/pkg/middleware"
	"github.com/piresc/ridertrack/internal/pkg/nats"
	nr "github.com/piresc/ridertrack/internal/pkg/newrelic"
	"github.com/piresc/ridertrack/internal/pkg/retry"
	"github.com/piresc/ridertrack/internal/pkg/server"
	"github.com/piresc/ridertrack/services/tracking/gateway"
	"github.com/piresc/ridertrack/services/tracking/handler"
	"github.com/piresc/ridertrack/services/tracking/repository"
	"github.com/piresc/ridertrack/services/tracking/usecase"
)

func main() {
	configPath := flag.String("config", "config/tracking.env", "path to the env config file")
	flag.Parse()

	configs := config.InitConfig(*configPath)
	if err := config.Validate(configs); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	appName := configs.App.Name

	nrApp := nr.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetGlobalLogger(zapLogger)

	// Dependencies may come up after us in compose, retry the first dial
	startup := retry.New(retry.Config{
		MaxRetries: 5,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}, zapLogger)
	ctx := context.Background()

	var postgresClient *database.PostgresClient
	err = startup.Execute(ctx, func(ctx context.Context) error {
		var dialErr error
		postgresClient, dialErr = database.NewPostgresClient(configs.Database)
		return dialErr
	})
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	var redisClient *database.RedisClient
	err = startup.Execute(ctx, func(ctx context.Context) error {
		var dialErr error
		redisClient, dialErr = database.NewRedisClient(configs.Redis)
		return dialErr
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	// NATS is optional, scored events are only published when it is set
	var natsClient *nats.Client
	if configs.NATS.URL != "" {
		natsClient, err = nats.NewClient(configs.NATS.URL, appName)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
	}

	locker, err := lock.New(
		configs.Tracking.BindingLock,
		redisClient.GetClient(),
		models.Millis(configs.Tracking.LockTTLMs),
		models.Millis(configs.Tracking.LockWaitMs),
	)
	if err != nil {
		logger.Fatal("Failed to create binding lock", logger.Err(err))
	}

	trackingRepo := repository.NewCachedRepository(
		repository.NewPostgresRepository(postgresClient.GetDB()),
		repository.NewRedisCache(redisClient),
		time.Duration(configs.Tracking.LastEventTTLSec)*time.Second,
	)
	trackingGW := gateway.NewNATSGateway(natsClient)
	trackingMetrics := metrics.NewTrackingMetrics()
	trackingUC := usecase.NewTrackingUC(configs, trackingRepo, trackingGW, locker, trackingMetrics)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(configs.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(configs.Server.WriteTimeout) * time.Second

	e.Use(appmiddleware.RequestIDMiddleware())
	e.Use(appmiddleware.PanicRecoveryMiddleware(zapLogger))
	if nrApp != nil {
		e.Use(nr.Middleware(nrApp))
	}
	e.Use(logger.ZapEchoMiddleware(zapLogger))
	e.Use(middleware.BodyLimit("64K"))

	checks := []health.Check{
		{Name: "postgres", Ping: postgresClient.Ping},
		{Name: "redis", Ping: redisClient.Ping},
	}
	if natsClient != nil {
		checks = append(checks, health.Check{Name: "nats", Ping: func(context.Context) error {
			return natsClient.Healthy()
		}})
	}
	health.RegisterHealthEndpoints(e, appName, checks...)
	e.GET("/metrics", trackingMetrics.Handler())

	handler.NewHTTPHandler(trackingUC, configs, trackingMetrics).RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if configs.Server.ShutdownTimeout > 0 {
		srv.WithShutdownTimeout(time.Duration(configs.Server.ShutdownTimeout) * time.Second)
	}
	srv.OnShutdown(func(context.Context) error { return postgresClient.Close() })
	srv.OnShutdown(func(context.Context) error { return redisClient.Close() })
	if natsClient != nil {
		srv.OnShutdown(func(context.Context) error {
			natsClient.Close()
			return nil
		})
	}
	if nrApp != nil {
		srv.OnShutdown(func(context.Context) error {
			nrApp.Shutdown(10 * time.Second)
			return nil
		})
	}
	srv.OnShutdown(func(context.Context) error { return zapLogger.Close() })

	logger.Info("Starting service",
		logger.String("service", appName),
		logger.Int("port", configs.Server.Port),
		logger.String("binding_lock", configs.Tracking.BindingLock),
		logger.Bool("publishing", trackingGW.Enabled()))

	if err := srv.Start(); err != nil {
		logger.Fatal("Server stopped with error", logger.Err(err))
	}
}
