package config

import (
	"fmt"
	"strings"

	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/spf13/viper"
)

// LoadAgentConfig reads the rider agent YAML config at path. Every key can be
// overridden from the environment with the RIDER_AGENT_ prefix, e.g.
// RIDER_AGENT_SESSION_TOKEN.
func LoadAgentConfig(path string) (*models.AgentConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("rider_agent")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("name", "rider-agent")
	v.SetDefault("backend.base_url", "http://localhost:9990")
	v.SetDefault("backend.timeout_ms", 5000)
	v.SetDefault("session.token", "")
	v.SetDefault("session.device_id", "")
	v.SetDefault("gps.port_name", "/dev/ttyUSB0")
	v.SetDefault("gps.baud_rate", 9600)
	v.SetDefault("gps.uere_meters", 5.0)
	v.SetDefault("tracker.accuracy_ceiling_m", DefaultAccuracyCeilingM)
	v.SetDefault("tracker.initial_fix_timeout_ms", 10000)
	v.SetDefault("pinger.min_interval_ms", 3000)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read agent config: %w", err)
		}
	}

	var cfg models.AgentConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode agent config: %w", err)
	}

	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	if cfg.Pinger.MinIntervalMs <= 0 {
		return nil, fmt.Errorf("pinger.min_interval_ms must be positive, got %d", cfg.Pinger.MinIntervalMs)
	}

	return &cfg, nil
}
