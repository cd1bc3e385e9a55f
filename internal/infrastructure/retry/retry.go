// Package retry retries connection attempts with exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	initialInterval = 200 * time.Millisecond
	maxInterval     = 5 * time.Second
)

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Connect calls fn until it succeeds, returns a Permanent error, ctx is done
// or maxElapsed has passed. A non-positive maxElapsed means a single attempt.
func Connect(ctx context.Context, logger zerolog.Logger, target string, maxElapsed time.Duration, fn func(ctx context.Context) error) error {
	if maxElapsed <= 0 {
		err := fn(ctx)
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = maxElapsed

	attempt := 0

	return backoff.RetryNotify(func() error {
		attempt++
		return fn(ctx)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Str("target", target).
			Int("attempt", attempt).
			Dur("retry_in", next).
			Msg("connection failed, retrying")
	})
}
