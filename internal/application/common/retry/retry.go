// Package retry runs operations against flaky collaborators with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"javasegment/internal/application/common/slogger"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries"    yaml:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"  yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"      yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
	Jitter        bool          `json:"jitter"         yaml:"jitter"`
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

// RetryableChecker classifies errors as transient or permanent.
type RetryableChecker interface {
	IsRetryable(err error) bool
}

// RetryableCheckerFunc adapts a function to RetryableChecker.
type RetryableCheckerFunc func(err error) bool

// IsRetryable implements RetryableChecker.
func (f RetryableCheckerFunc) IsRetryable(err error) bool { return f(err) }

// RetryExecutor handles retry logic with exponential backoff.
type RetryExecutor struct {
	config           *RetryConfig
	retryableChecker RetryableChecker
	sleep            func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor creates a new retry executor. A nil checker falls back to
// DefaultRetryableChecker.
func NewRetryExecutor(config *RetryConfig, checker RetryableChecker) *RetryExecutor {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if checker == nil {
		checker = &DefaultRetryableChecker{}
	}
	return &RetryExecutor{
		config:           config,
		retryableChecker: checker,
		sleep:            sleepContext,
	}
}

// Execute runs operation until it succeeds, fails permanently or runs out of retries.
func (r *RetryExecutor) Execute(ctx context.Context, operation RetryableOperation) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.calculateDelay(attempt)
			slogger.Debug(ctx, "Retrying operation after delay", slogger.Fields{
				"attempt":     attempt,
				"max_retries": r.config.MaxRetries,
				"delay_ms":    delay.Milliseconds(),
			})
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 0 {
				slogger.Info(ctx, "Operation succeeded after retries", slogger.Field("attempt", attempt+1))
			}
			return nil
		}
		lastErr = err

		if !r.retryableChecker.IsRetryable(err) {
			return err
		}

		slogger.Warn(ctx, "Operation failed, will retry", slogger.Fields{
			"error":       err.Error(),
			"attempt":     attempt + 1,
			"max_retries": r.config.MaxRetries,
		})
	}

	return fmt.Errorf("operation failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

// calculateDelay returns InitialDelay * BackoffFactor^(attempt-1), capped at MaxDelay,
// with up to +/-25% jitter when enabled.
func (r *RetryExecutor) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		jitterRange := delay * 0.25
		delay += (rand.Float64()*2 - 1) * jitterRange //nolint:gosec // jitter does not need a secure source
	}
	return time.Duration(delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultRetryableChecker retries network failures and errors whose text marks them
// as transient.
type DefaultRetryableChecker struct{}

// IsRetryable implements RetryableChecker.
func (d *DefaultRetryableChecker) IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary",
		"try again",
		"no route to host",
		"network is unreachable",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
