package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/piresc/ridertrack/internal/pkg/logger"
)

// RetryableFunc represents a function that can be retried
type RetryableFunc func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	MaxRetries  int              // Maximum number of retry attempts
	BaseDelay   time.Duration    // Base delay between retries
	MaxDelay    time.Duration    // Maximum delay between retries
	Multiplier  float64          // Exponential backoff multiplier
	Jitter      bool             // Add up to 10% random delay
	IsRetryable func(error) bool // nil retries every error
}

// DefaultConfig returns a default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config Config
	logger *logger.ZapLogger
}

// New creates a new retrier with the given configuration
func New(config Config, l *logger.ZapLogger) *Retrier {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &Retrier{
		config: config,
		logger: l,
	}
}

// Execute runs fn until it succeeds, returns a non retryable error, runs out
// of attempts, or ctx is done. A done ctx returns ctx.Err().
func (r *Retrier) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if r.config.IsRetryable != nil && !r.config.IsRetryable(err) {
			return err
		}
		if attempt == r.config.MaxRetries {
			break
		}

		delay := r.delay(attempt)
		r.logger.Debug("Attempt failed, retrying",
			logger.Err(err),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("retry limit exceeded after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

func (r *Retrier) delay(attempt int) time.Duration {
	d := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxDelay > 0 && d > float64(r.config.MaxDelay) {
		d = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		d += d * 0.1 * rand.Float64()
	}
	return time.Duration(d)
}
