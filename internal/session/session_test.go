// File: internal/session/session_test.go
package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/navigator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// instantWaiter confirms immediately, the fastest possible analytics backend.
type instantWaiter struct{ calls int }

func (w *instantWaiter) WaitForConfirmation(ctx context.Context, timeout time.Duration) bool {
	w.calls++
	return true
}
func (w *instantWaiter) Confirmed() int { return w.calls }

// neverWaiter never confirms.
type neverWaiter struct{}

func (neverWaiter) WaitForConfirmation(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return false
}
func (neverWaiter) Confirmed() int { return 0 }

func TestAwaitFlushHonorsMinimumDrainDelay(t *testing.T) {
	// Even an instant acknowledgement must not shorten the drain delay:
	// the capture agent batches on a timer, so events can still be
	// enqueued client-side after the last acknowledged POST.
	cfg := config.AnalyticsConfig{
		MinDrainDelay: 80 * time.Millisecond,
		FlushTimeout:  time.Second,
	}
	w := &instantWaiter{}

	start := time.Now()
	awaitFlush(context.Background(), w, cfg, zap.NewNop())

	assert.GreaterOrEqual(t, time.Since(start), cfg.MinDrainDelay)
	assert.Equal(t, 1, w.calls)
}

// drainAckWaiter acknowledges a batch while the drain delay is still running,
// before anyone subscribes for confirmations.
type drainAckWaiter struct {
	polls  int
	waited bool
}

func (w *drainAckWaiter) WaitForConfirmation(ctx context.Context, timeout time.Duration) bool {
	w.waited = true
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return false
}

func (w *drainAckWaiter) Confirmed() int {
	w.polls++
	if w.polls > 1 {
		return 1
	}
	return 0
}

func TestAwaitFlushSeesAckDuringDrainDelay(t *testing.T) {
	// An acknowledgement that lands while the drain delay is running must be
	// counted: the subscription-based wait cannot see it, and blocking for
	// the full flush timeout on an already-delivered batch wastes the run.
	cfg := config.AnalyticsConfig{
		MinDrainDelay: 20 * time.Millisecond,
		FlushTimeout:  5 * time.Second,
	}
	w := &drainAckWaiter{}

	start := time.Now()
	awaitFlush(context.Background(), w, cfg, zap.NewNop())

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, cfg.MinDrainDelay)
	assert.Less(t, elapsed, time.Second, "confirmed batches must not wait out the flush timeout")
	assert.False(t, w.waited, "the bounded wait should be skipped entirely")
}

func TestAwaitFlushAbsorbsTimeout(t *testing.T) {
	cfg := config.AnalyticsConfig{
		MinDrainDelay: time.Millisecond,
		FlushTimeout:  20 * time.Millisecond,
	}

	// Must return normally; a lost tail is a warning, not a failure.
	awaitFlush(context.Background(), neverWaiter{}, cfg, zap.NewNop())
}

func TestAwaitFlushStopsOnCancellation(t *testing.T) {
	cfg := config.AnalyticsConfig{
		MinDrainDelay: 5 * time.Second,
		FlushTimeout:  5 * time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	awaitFlush(ctx, &instantWaiter{}, cfg, zap.NewNop())
	assert.Less(t, time.Since(start), time.Second)
}

func TestSummarizeCountsSuccesses(t *testing.T) {
	outcomes := []Outcome{
		{
			SessionID:     "a",
			Source:        "google",
			Steps:         10,
			StatesVisited: []navigator.State{navigator.StateAuth, navigator.StateDashboard},
			Success:       true,
			Duration:      3 * time.Second,
		},
		{
			SessionID: "b",
			Source:    "direct",
			Steps:     2,
			Err:       errors.New("browser crashed"),
			Duration:  time.Second,
		},
	}

	got := Summarize(outcomes)
	assert.Contains(t, got, "1 succeeded, 1 failed")
	assert.Contains(t, got, "auth -> dashboard")
	assert.Contains(t, got, "browser crashed")
}
