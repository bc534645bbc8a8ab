package logging

import (
	"context"
	"log/slog"
	"time"
)

// Retention is how long system logs are kept.
const Retention = 30 * 24 * time.Hour

// StartCleanup runs a daily goroutine that prunes system logs older than
// Retention.
func StartCleanup(sink Sink, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune(sink, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func prune(sink Sink, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := sink.Prune(ctx, now.Add(-Retention))
	if err != nil {
		slog.Error("log cleanup failed", "action", "log_cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}
