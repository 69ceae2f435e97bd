package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg := loadConfigFromEnv()

	assert.Equal(t, 80.0, cfg.Fraud.AccuracyCeilingM)
	assert.Equal(t, int64(120000), cfg.Fraud.StalenessBudgetMs)
	assert.Equal(t, 55.0, cfg.Fraud.MaxPlausibleSpeedMps)
	assert.Equal(t, 0.40, cfg.Fraud.SpeedMismatchTolerance)
	assert.Equal(t, BindingLockLocal, cfg.Tracking.BindingLock)
	assert.Equal(t, uint(9), cfg.Tracking.GeohashPrecision)
	assert.Empty(t, cfg.NATS.URL)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("FRAUD_ACCURACY_CEILING_M", "50")
	t.Setenv("FRAUD_STALENESS_BUDGET_MS", "60000")
	t.Setenv("TRACKING_BINDING_LOCK", "redis")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg := loadConfigFromEnv()

	assert.Equal(t, 50.0, cfg.Fraud.AccuracyCeilingM)
	assert.Equal(t, int64(60000), cfg.Fraud.StalenessBudgetMs)
	assert.Equal(t, BindingLockRedis, cfg.Tracking.BindingLock)
	// invalid values fall back to the default
	assert.Equal(t, 9990, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *models.Config) {}},
		{name: "empty jwt secret", mutate: func(c *models.Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET"},
		{name: "unknown lock mode", mutate: func(c *models.Config) { c.Tracking.BindingLock = "zookeeper" }, wantErr: "TRACKING_BINDING_LOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfigFromEnv()
			cfg.JWT.Secret = "secret"
			tt.mutate(cfg)

			err := Validate(cfg)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_BOOL", "false")
	t.Setenv("CFG_TEST_FLOAT", "1.5")
	t.Setenv("CFG_TEST_BAD_FLOAT", "x")

	assert.False(t, GetEnvAsBool("CFG_TEST_BOOL", true))
	assert.Equal(t, 1.5, GetEnvAsFloat("CFG_TEST_FLOAT", 0))
	assert.Equal(t, 2.0, GetEnvAsFloat("CFG_TEST_BAD_FLOAT", 2.0))
	assert.Equal(t, "fallback", GetEnv("CFG_TEST_UNSET", "fallback"))
}

func TestLoadAgentConfig(t *testing.T) {
	t.Run("reads yaml and applies defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "agent.yaml")
		content := `
backend:
  base_url: https://tracking.example.com
session:
  token: abc
  device_id: dev-1
gps:
  port_name: /dev/ttyACM0
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadAgentConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "https://tracking.example.com", cfg.Backend.BaseURL)
		assert.Equal(t, "abc", cfg.Session.Token)
		assert.Equal(t, "dev-1", cfg.Session.DeviceID)
		assert.Equal(t, "/dev/ttyACM0", cfg.GPS.PortName)
		assert.Equal(t, uint(9600), cfg.GPS.BaudRate)
		assert.Equal(t, 80.0, cfg.Tracker.AccuracyCeilingM)
		assert.Equal(t, 3000, cfg.Pinger.MinIntervalMs)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("RIDER_AGENT_SESSION_TOKEN", "from-env")

		cfg, err := LoadAgentConfig("")
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Session.Token)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadAgentConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid interval", func(t *testing.T) {
		t.Setenv("RIDER_AGENT_PINGER_MIN_INTERVAL_MS", "0")

		_, err := LoadAgentConfig("")
		assert.Error(t, err)
	})
}
