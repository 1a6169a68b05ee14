package sync

import (
	"context"
	"log/slog"
	"time"
)

// Run synchronizes immediately and then every interval until ctx is
// canceled. Failed rounds are logged and retried on the next tick.
func Run(ctx context.Context, svc Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		if _, err := svc.Sync(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "Synchronization failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}
