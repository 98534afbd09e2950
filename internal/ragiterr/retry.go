package ragiterr

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
)

// RetryConfig names its fields after spec §4.F/§7: max_retry and
// sleep_between_retries, rather than the teacher's generic exponential
// knobs, since the backoff curve itself now comes from jpillora/backoff.
type RetryConfig struct {
	MaxRetry            int
	SleepBetweenRetries time.Duration
	MaxSleep            time.Duration
}

// DefaultRetryConfig matches the magnitude of the teacher's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetry:            3,
		SleepBetweenRetries: time.Second,
		MaxSleep:            16 * time.Second,
	}
}

// Retry runs fn up to cfg.MaxRetry additional times on error, honoring
// ctx cancellation between attempts. Only errors for which classify returns
// true (or any error, when classify is nil) are retried; others return
// immediately.
// On exhaustion it returns a *Error (RetriesExhausted) wrapping the last cause.
func Retry(ctx context.Context, cfg RetryConfig, classify func(error) bool, fn func() error) error {
	b := &backoff.Backoff{
		Min:    cfg.SleepBetweenRetries,
		Max:    cfg.MaxSleep,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetry; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if classify != nil && !classify(err) {
			return err
		}
		if attempt >= cfg.MaxRetry {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	return RetriesExhausted(cfg.MaxRetry, lastErr)
}
