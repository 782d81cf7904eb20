package presence

import (
	"context"
	"log/slog"
	"time"
)

// Heartbeat calls beat immediately and then every interval until ctx is
// cancelled. Failed beats are logged and do not stop the loop.
func Heartbeat(ctx context.Context, interval time.Duration, beat func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := beat(ctx); err != nil && ctx.Err() == nil {
			slog.WarnContext(ctx, "presence heartbeat failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
