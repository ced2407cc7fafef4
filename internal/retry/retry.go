package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/amishk599/avradar/internal/model"
)

// Policy bounds how long and how often a delivery is retried.
type Policy struct {
	MaxTries        uint          // total attempts including the first
	InitialInterval time.Duration // delay before the first retry, doubled each time
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultPolicy is used for chat deliveries: three attempts within half a minute.
func DefaultPolicy() Policy {
	return Policy{
		MaxTries:        3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		MaxElapsed:      30 * time.Second,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy
// is exhausted. A Retry-After hint on a *model.HTTPError overrides the
// exponential delay. The last error from fn is returned.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	var last error

	op := func() (T, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		last = err
		if !isRetryable(err) {
			return v, backoff.Permanent(err)
		}
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
			return v, backoff.RetryAfter(int(math.Ceil(httpErr.RetryAfter.Seconds())))
		}
		return v, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval

	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithNotify(func(_ error, delay time.Duration) {
			logger.Warn("retrying after transient error", "delay", delay, "error", last)
		}),
	}
	if p.MaxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(p.MaxTries))
	}
	if p.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.MaxElapsed))
	}

	v, err := backoff.Retry(ctx, op, opts...)
	if err == nil {
		return v, nil
	}

	var retryAfter *backoff.RetryAfterError
	var permanent *backoff.PermanentError
	if errors.As(err, &retryAfter) || errors.As(err, &permanent) {
		err = last
	}
	return v, err
}

// isRetryable reports whether err is transient: rate limiting, server
// errors and network failures. Client errors and cancellation are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
