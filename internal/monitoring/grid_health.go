package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaehwan-dev/naverflow/internal/clients"
)

const (
	HEALTHCHECK_TIMER = 15
	GRID_MISS_LIMIT   = 3
)

// WaitForGrid blocks until the browser grid reports ready, polling up to
// attempts times. Rendering jobs fail fast on a dead grid instead of
// burning their own retries on session errors.
func WaitForGrid(ctx context.Context, browser *clients.BrowserClient, attempts int) error {
	for i := 1; i <= attempts; i++ {
		if browser.Ready(ctx) {
			return nil
		}
		slog.Warn("[HealthCheck] Browser grid not ready, waiting...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", attempts))

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("[HealthCheck] browser grid not ready after %d attempts", attempts)
}

// MonitorGridHealth watches the grid for the lifetime of a rendering job
// and cancels the job once the grid stays down for GRID_MISS_LIMIT
// consecutive checks, so page retries stop grinding against a dead grid.
func MonitorGridHealth(ctx context.Context, browser *clients.BrowserClient, cancel context.CancelFunc) {
	monitorGridHealth(ctx, browser, cancel, time.Second*HEALTHCHECK_TIMER)
}

func monitorGridHealth(ctx context.Context, browser *clients.BrowserClient, cancel context.CancelFunc, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	misses := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if browser.Ready(ctx) {
				misses = 0
				continue
			}
			misses++
			slog.Warn("[HealthCheck] Browser grid is unhealthy",
				slog.Int("consecutive_misses", misses))

			if misses >= GRID_MISS_LIMIT {
				slog.Error("[HealthCheck] Browser grid stayed down, cancelling job")
				cancel()
				return
			}
		}
	}
}
