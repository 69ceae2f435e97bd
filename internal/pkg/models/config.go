package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Tracking TrackingConfig
	Fraud    FraudConfig
	Logger   LoggerConfig
	NewRelic NewRelicConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
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

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// TrackingConfig contains ping ingestion settings
type TrackingConfig struct {
	BindingLock      string // "local", "redis" or "none"
	LockTTLMs        int
	LockWaitMs       int
	LastEventTTLSec  int
	GeohashPrecision uint
}

// FraudConfig contains the fraud scoring thresholds
type FraudConfig struct {
	AccuracyCeilingM       float64 `json:"accuracy_ceiling_m"`
	StalenessBudgetMs      int64   `json:"staleness_budget_ms"`
	MaxPlausibleSpeedMps   float64 `json:"max_plausible_speed_mps"`
	SpeedMismatchTolerance float64 `json:"speed_mismatch_tolerance"`
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level      string
	FilePath   string
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool
	Type       string
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}

// AgentConfig is the rider agent configuration, loaded from YAML and env
type AgentConfig struct {
	Name     string             `mapstructure:"name"`
	Backend  AgentBackendConfig `mapstructure:"backend"`
	Session  AgentSessionConfig `mapstructure:"session"`
	GPS      AgentGPSConfig     `mapstructure:"gps"`
	Tracker  AgentTrackerConfig `mapstructure:"tracker"`
	Pinger   AgentPingerConfig  `mapstructure:"pinger"`
	LogLevel string             `mapstructure:"log_level"`
}

// AgentBackendConfig points the agent at the tracking service
type AgentBackendConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// AgentSessionConfig carries the session issued by the external auth provider
type AgentSessionConfig struct {
	Token    string `mapstructure:"token"`
	DeviceID string `mapstructure:"device_id"`
}

// AgentGPSConfig describes the serial NMEA receiver
type AgentGPSConfig struct {
	PortName   string  `mapstructure:"port_name"`
	BaudRate   uint    `mapstructure:"baud_rate"`
	UEREMeters float64 `mapstructure:"uere_meters"`
}

// AgentTrackerConfig contains tracker settings
type AgentTrackerConfig struct {
	AccuracyCeilingM    float64 `mapstructure:"accuracy_ceiling_m"`
	InitialFixTimeoutMs int     `mapstructure:"initial_fix_timeout_ms"`
}

// AgentPingerConfig contains pinger settings
type AgentPingerConfig struct {
	MinIntervalMs int `mapstructure:"min_interval_ms"`
}
