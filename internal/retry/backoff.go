// Package retry provides exponential backoff with jitter for remote calls.
package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/repodoc/internal/logging"
)

// Config controls backoff behavior.
type Config struct {
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay"`
	Multiplier float64       `json:"multiplier"`
	Jitter     bool          `json:"jitter"`
	LogRetries bool          `json:"log_retries"`
}

// Result describes how a retried operation went.
type Result struct {
	Attempts      int           `json:"attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	LastError     error         `json:"-"`
	Success       bool          `json:"success"`
	RetryReasons  []string      `json:"retry_reasons"`
}

// DefaultConfig is tuned for provider content fetches.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
		LogRetries: true,
	}
}

// AIConfig allows longer delays for model calls, which are slower and
// rate-limited more aggressively than content fetches.
func AIConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.5,
		Jitter:     true,
		LogRetries: true,
	}
}

// WithBackoff runs operation until it succeeds or retries are exhausted.
func WithBackoff(ctx context.Context, config Config, operation func() error, logger *logging.RunLogger) Result {
	return WithBackoffAndReason(ctx, config, func() (error, string) {
		err := operation()
		reason := "unknown_error"
		if err != nil {
			reason = err.Error()
		}
		return err, reason
	}, logger)
}

// WithBackoffAndReason is WithBackoff with a caller-supplied reason string
// recorded per failed attempt.
func WithBackoffAndReason(ctx context.Context, config Config, operation func() (error, string), logger *logging.RunLogger) Result {
	start := time.Now()

	result := Result{
		RetryReasons: make([]string, 0),
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		if config.LogRetries && attempt > 0 {
			logger.Log("Retrying operation (attempt %d/%d)", attempt+1, config.MaxRetries+1)
		}

		err, reason := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(start)
			if config.LogRetries && attempt > 0 {
				logger.Log("Operation succeeded after %d retries (total duration: %v)", attempt, result.TotalDuration)
			}
			return result
		}

		result.LastError = err
		result.RetryReasons = append(result.RetryReasons, reason)

		if attempt >= config.MaxRetries {
			result.TotalDuration = time.Since(start)
			if config.LogRetries {
				logger.Log("Operation failed after %d attempts (total duration: %v): %v",
					result.Attempts, result.TotalDuration, err)
			}
			return result
		}

		if ctx.Err() != nil {
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(start)
			return result
		}

		delay := backoffDelay(config, attempt)
		if config.LogRetries {
			logger.Log("Operation failed (attempt %d/%d): %v", attempt+1, config.MaxRetries+1, err)
			logger.Log("Waiting %v before retry", delay)
		}

		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(start)
			return result
		case <-time.After(delay):
		}
	}

	result.TotalDuration = time.Since(start)
	return result
}

func backoffDelay(config Config, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	if config.Jitter {
		// Up to 10% in either direction.
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(config.BaseDelay)
		}
	}

	return time.Duration(delay)
}

var retryableFragments = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"rate limit",
	"429",
	"502",
	"503",
	"504",
	"dns lookup failed",
	"no such host",
	"network unreachable",
	"broken pipe",
	"context deadline exceeded",
}

// IsRetryableError reports whether the error looks transient. Providers do
// not expose typed transport errors uniformly, so this matches on message
// fragments.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
