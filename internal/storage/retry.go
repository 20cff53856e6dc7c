package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryConfig configures exponential backoff for busy transactions
type RetryConfig struct {
	MaxRetries int           // Maximum number of attempts
	BaseDelay  time.Duration // Initial delay between attempts
	MaxDelay   time.Duration // Maximum delay between attempts
	Multiplier float64       // Exponential backoff multiplier
}

// DefaultRetryConfig returns the retry policy used by NewSQLiteStorage
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   500 * time.Millisecond,
		Multiplier: 2.0,
	}
}

// retryWithBackoff executes fn until it succeeds, returns an error that
// retryable rejects, or runs out of attempts. Retry stops on context cancellation.
func retryWithBackoff(ctx context.Context, config RetryConfig, retryable func(error) bool, fn func() error) error {
	var lastErr error
	backoff := config.BaseDelay
	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return lastErr
}

// ErrBusy marks a transaction that lost a write race and may be retried
var ErrBusy = errors.New("database is busy")

// isBusy reports whether err is SQLite's "database is locked" condition.
// The cgo and pure Go drivers expose different error types, so the message
// is the common ground.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBusy) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}
