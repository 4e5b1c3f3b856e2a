// File: internal/session/flush.go
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
)

// flushWaiter is the slice of the response watcher the drain logic needs.
type flushWaiter interface {
	WaitForConfirmation(ctx context.Context, timeout time.Duration) bool
	Confirmed() int
}

// awaitFlush gives the in-page capture agent time to deliver its final batch
// before the browser closes. The minimum drain delay is honored
// unconditionally; only then does the bounded wait for an ingestion
// acknowledgement begin. A timeout is absorbed with a warning: delivery is
// best-effort, and losing the tail of a session is acceptable. Racing the
// browser teardown silently is not.
func awaitFlush(ctx context.Context, w flushWaiter, cfg config.AnalyticsConfig, log *zap.Logger) {
	start := time.Now()
	before := w.Confirmed()

	timer := time.NewTimer(cfg.MinDrainDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		log.Info("cancelled during drain delay, closing immediately")
		return
	}

	// The bounded wait only observes acknowledgements arriving after it
	// subscribes, so an ack that landed during the drain delay must be
	// counted here or the wait would burn the full timeout for nothing.
	if w.Confirmed() > before {
		log.Info("analytics flush confirmed during drain delay",
			zap.Int("batches", w.Confirmed()),
			zap.Duration("waited", time.Since(start)))
		return
	}

	if w.WaitForConfirmation(ctx, cfg.FlushTimeout) {
		log.Info("analytics flush confirmed",
			zap.Int("batches", w.Confirmed()),
			zap.Duration("waited", time.Since(start)))
		return
	}
	log.Warn("no ingestion acknowledgement before timeout, events may be lost",
		zap.Duration("waited", time.Since(start)))
}
