package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ridertrack/internal/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output types accepted by ZapConfig.Type
const (
	OutputConsole = "console"
	OutputFile    = "file"
)

// ZapLogger wraps zap with file output and optional New Relic log forwarding
type ZapLogger struct {
	*zap.Logger
	service  string
	nrApp    *newrelic.Application
	filePath string
	file     *os.File
}

// newRelicCore is a zapcore.Core that forwards entries to New Relic
type newRelicCore struct {
	level   zapcore.Level
	service string
	fields  []zapcore.Field
	nrApp   *newrelic.Application
}

func (c *newRelicCore) Enabled(level zapcore.Level) bool {
	return c.level.Enabled(level)
}

func (c *newRelicCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field{}, c.fields...), fields...)
	return &clone
}

func (c *newRelicCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *newRelicCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.nrApp == nil {
		return nil
	}

	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range c.fields {
		field.AddTo(encoder)
	}
	for _, field := range fields {
		field.AddTo(encoder)
	}

	attrs := encoder.Fields
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs["service"] = c.service
	attrs["caller"] = entry.Caller.TrimmedPath()
	if entry.Stack != "" {
		attrs["stacktrace"] = entry.Stack
	}

	c.nrApp.RecordLog(newrelic.LogData{
		Timestamp:  entry.Time.UnixMilli(),
		Message:    entry.Message,
		Severity:   entry.Level.String(),
		Attributes: attrs,
	})
	return nil
}

func (c *newRelicCore) Sync() error {
	return nil
}

// ZapConfig holds Zap logger configuration
type ZapConfig struct {
	Service  string `json:"service" mapstructure:"service"`
	Level    string `json:"level" mapstructure:"level"`
	Type     string `json:"type" mapstructure:"type"` // console or file
	FilePath string `json:"file_path" mapstructure:"file_path"`
}

// NewZapLogger creates a JSON logger writing to stdout, plus the log file when
// Type is "file", plus New Relic when nrApp is set.
func NewZapLogger(config ZapConfig, nrApp *newrelic.Application) (*ZapLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)}

	zl := &ZapLogger{
		service: config.Service,
		nrApp:   nrApp,
	}

	if config.Type != OutputConsole && config.FilePath != "" {
		if err := zl.openFile(config.FilePath); err != nil {
			return nil, fmt.Errorf("failed to setup file output: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(zl.file), level))
	}

	if nrApp != nil {
		cores = append(cores, &newRelicCore{level: level, service: config.Service, nrApp: nrApp})
	}

	zl.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", config.Service))

	return zl, nil
}

// NewFromCore builds a ZapLogger around an existing core, mostly for tests
func NewFromCore(service string, core zapcore.Core) *ZapLogger {
	return &ZapLogger{
		Logger:  zap.New(core).With(zap.String("service", service)),
		service: service,
	}
}

func (zl *ZapLogger) openFile(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	zl.file = file
	zl.filePath = filePath
	return nil
}

// Close flushes buffered entries and closes the log file
func (zl *ZapLogger) Close() error {
	_ = zl.Logger.Sync()
	if zl.file != nil {
		return zl.file.Close()
	}
	return nil
}

// FilePath returns the log file in use, empty for console only loggers
func (zl *ZapLogger) FilePath() string {
	return zl.filePath
}

// WithNewRelicContext adds trace correlation fields from txn
func (zl *ZapLogger) WithNewRelicContext(txn *newrelic.Transaction) *zap.Logger {
	if txn == nil {
		return zl.Logger
	}
	md := txn.GetLinkingMetadata()
	if md.TraceID == "" {
		return zl.Logger
	}
	return zl.Logger.With(
		zap.String("trace.id", md.TraceID),
		zap.String("span.id", md.SpanID),
	)
}

// LogHTTPRequest logs one served request at a level derived from its status
func (zl *ZapLogger) LogHTTPRequest(txn *newrelic.Transaction, method, path, clientIP, userID, requestID string, statusCode int, latency time.Duration, err error) {
	l := zl.WithNewRelicContext(txn).With(
		zap.Int("status", statusCode),
		zap.String("latency", latency.String()),
		zap.Int64("latency_ms", latency.Milliseconds()),
		zap.String("client_ip", clientIP),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("user_id", userID),
		zap.String("request_id", requestID),
	)

	switch {
	case statusCode >= 500:
		if err != nil {
			l.Error("Server error", zap.Error(err))
			return
		}
		l.Error("Server error")
	case statusCode >= 400:
		l.Warn("Client error")
	default:
		l.Info("Request processed")
	}
}

// InitZapLoggerFromConfig initializes the service logger from config models
func InitZapLoggerFromConfig(configs *models.Config, nrApp *newrelic.Application) (*ZapLogger, error) {
	if !configs.NewRelic.ForwardLogs {
		nrApp = nil
	}
	return NewZapLogger(ZapConfig{
		Service:  configs.App.Name,
		Level:    configs.Logger.Level,
		Type:     configs.Logger.Type,
		FilePath: configs.Logger.FilePath,
	}, nrApp)
}
