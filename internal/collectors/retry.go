package collectors

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaehwan-dev/naverflow/internal/clients"
)

// withRetries runs fn up to maxRetries times with a fixed delay between
// attempts. Permanent failures return immediately; rendered comment and
// search pages intermittently come back empty, which is why the transient
// path gets a second chance at all.
func withRetries[T any](ctx context.Context, maxRetries int, delay time.Duration, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if clients.IsPermanent(err) || ctx.Err() != nil {
			return zero, err
		}
		lastErr = err

		slog.Warn("Retrying after transient failure",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxRetries),
			slog.String("error", err.Error()))

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
