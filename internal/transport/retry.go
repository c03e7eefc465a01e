package transport

import (
	"context"
	"time"
)

// backoffSchedule is §6's bounded exponential retry: 200ms, 500ms,
// 1000ms between attempts. Exhausting the schedule surfaces the last
// error to the caller.
var backoffSchedule = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1000 * time.Millisecond}

// onRetry, when set, is called once per retry attempt (0-indexed) before
// sleeping — the engine's metrics hook (C9/C10) observes retries through
// this rather than the transport depending on the metrics package
// directly.
type onRetryFunc func(attempt int, err error)

// withRetry runs fn, retrying on a Transient-classified error according
// to backoffSchedule. A NotFound or Malformed result is returned
// immediately without retry, per §7's propagation rules.
func withRetry[T any](ctx context.Context, onRetry onRetryFunc, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		retriable, notFound, mapped := classify(err)
		if notFound {
			return zero, nil
		}
		if !retriable {
			return zero, mapped
		}
		lastErr = mapped
		if attempt == len(backoffSchedule) {
			break
		}
		if onRetry != nil {
			onRetry(attempt, mapped)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return zero, lastErr
}
