package newrelic

import (
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ridertrack/internal/pkg/logger"
	"github.com/piresc/ridertrack/internal/pkg/models"
)

// InitNewRelic returns the New Relic application, or nil when it is disabled,
// unconfigured, or fails to start
func InitNewRelic(configs *models.Config) *newrelic.Application {
	if !configs.NewRelic.Enabled || configs.NewRelic.LicenseKey == "" {
		logger.Info("New Relic is disabled or license key not provided")
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(configs.NewRelic.AppName),
		newrelic.ConfigLicense(configs.NewRelic.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(configs.NewRelic.LogsEnabled),
		newrelic.ConfigAppLogDecoratingEnabled(true),
	)
	if err != nil {
		logger.Warn("Failed to initialize New Relic, continuing without it", logger.Err(err))
		return nil
	}

	logger.Info("New Relic enabled", logger.String("app_name", configs.NewRelic.AppName))
	return nrApp
}
