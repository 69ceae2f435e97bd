package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/piresc/ridertrack/internal/pkg/circuitbreaker"
	"github.com/piresc/ridertrack/internal/pkg/config"
	httpclient "github.com/piresc/ridertrack/internal/pkg/http"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/services/rider/gps"
	"github.com/piresc/ridertrack/services/rider/pinger"
	"github.com/piresc/ridertrack/services/rider/tracker"
)

func main() {
	configPath := flag.String("config", "config/rider-agent.yaml", "path to the agent config file")
	flag.Parse()

	cfg, err := config.LoadAgentConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.ZapConfig{
		Service: cfg.Name,
		Level:   cfg.LogLevel,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetGlobalLogger(zapLogger)
	defer zapLogger.Close()

	if cfg.Session.Token == "" {
		logger.Warn("No session token configured, fixes will not be sent")
	}

	platform := gps.NewNMEAPlatform(gps.SerialOpener(cfg.GPS.PortName, cfg.GPS.BaudRate), cfg.GPS.UEREMeters)
	locationTracker := tracker.New(platform, tracker.Config{
		AccuracyCeilingM:  cfg.Tracker.AccuracyCeilingM,
		InitialFixTimeout: models.Millis(cfg.Tracker.InitialFixTimeoutMs),
	})

	breakerCfg := circuitbreaker.DefaultConfig("tracking-api")
	breakerCfg.IsFailure = pinger.IsServerFailure
	sender := pinger.NewHTTPSender(
		httpclient.NewClient(cfg.Backend.BaseURL, models.Millis(cfg.Backend.TimeoutMs)),
		circuitbreaker.New(breakerCfg, zapLogger),
	)

	dispatcher := &pinger.GoDispatcher{}
	locationPinger := pinger.New(sender, pinger.StaticSession{
		Token:    cfg.Session.Token,
		DeviceID: cfg.Session.DeviceID,
	}, pinger.Config{
		MinInterval: models.Millis(cfg.Pinger.MinIntervalMs),
		Dispatcher:  dispatcher,
		OnResult: func(r pinger.Result) {
			if r.FraudScore > 0 {
				logger.Warn("Ping flagged",
					logger.Int("fraud_score", r.FraudScore),
					logger.Strings("fraud_signals", r.FraudSignals))
			}
		},
	})
	detach := locationPinger.Attach(locationTracker)

	locationTracker.Subscribe(func(s tracker.State) {
		logger.Debug("Tracker state changed", logger.String("state", s.Name()))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := locationTracker.Start(ctx); err != nil {
		logger.Fatal("Failed to start location tracking",
			logger.String("state", locationTracker.State().Name()),
			logger.Err(err))
	}

	<-ctx.Done()
	logger.Info("Stopping rider agent")

	locationTracker.Stop()
	detach()
	dispatcher.Wait()

	stats := locationPinger.Stats()
	logger.Info("Rider agent stopped",
		logger.Int64("pings_dispatched", stats.Dispatched),
		logger.Int64("pings_succeeded", stats.Succeeded),
		logger.Int64("pings_dropped", stats.Dropped))
}
