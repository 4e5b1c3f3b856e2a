// File: internal/browser/watcher.go
package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ResponseWatcher listens to the tab's network events and signals whenever
// the analytics ingestion endpoint acknowledges a batch: a POST whose URL
// contains the configured path pattern coming back with a 2xx status. The
// orchestrator's flush-confirmation wait is built on this; client-side
// analytics agents batch asynchronously, so events produced in the final
// steps may still be in flight when the step loop ends.
type ResponseWatcher struct {
	sessionCtx context.Context
	logger     *zap.Logger
	pattern    string

	listenerCtx    context.Context
	cancelListener context.CancelFunc

	mu sync.Mutex
	// pending maps in-flight ingestion request IDs discovered at request
	// time, so the response event can be attributed without re-parsing URLs.
	pending     map[network.RequestID]struct{}
	subscribers []chan struct{}
	confirmed   int
	isStarted   bool
}

// NewResponseWatcher creates a watcher bound to one session's tab.
func NewResponseWatcher(sessionCtx context.Context, pattern string, logger *zap.Logger) *ResponseWatcher {
	return &ResponseWatcher{
		sessionCtx: sessionCtx,
		logger:     logger.Named("watcher"),
		pattern:    pattern,
		pending:    make(map[network.RequestID]struct{}),
	}
}

// Start enables network events and begins listening. Idempotent.
func (w *ResponseWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isStarted {
		return nil
	}

	w.listenerCtx, w.cancelListener = context.WithCancel(w.sessionCtx)
	w.listen()

	if err := chromedp.Run(w.sessionCtx, network.Enable()); err != nil {
		w.cancelListener()
		return err
	}
	w.isStarted = true
	return nil
}

// Stop detaches the listener and releases all waiting subscribers. The
// subscription is torn down deterministically with the session, not left to
// garbage collection.
func (w *ResponseWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isStarted {
		return
	}
	if w.cancelListener != nil {
		w.cancelListener()
		w.cancelListener = nil
	}
	for _, sub := range w.subscribers {
		close(sub)
	}
	w.subscribers = nil
	w.isStarted = false
}

// Confirmed reports how many ingestion acknowledgements have been observed
// over the session's lifetime.
func (w *ResponseWatcher) Confirmed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.confirmed
}

// WaitForConfirmation blocks until the next ingestion acknowledgement after
// the call, the timeout, or context cancellation. It reports whether a
// confirmation arrived; a timeout is an expected outcome the caller absorbs.
func (w *ResponseWatcher) WaitForConfirmation(ctx context.Context, timeout time.Duration) bool {
	sub := make(chan struct{}, 1)
	w.mu.Lock()
	if !w.isStarted {
		w.mu.Unlock()
		return false
	}
	w.subscribers = append(w.subscribers, sub)
	w.mu.Unlock()

	defer w.unsubscribe(sub)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case _, ok := <-sub:
		return ok
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (w *ResponseWatcher) unsubscribe(sub chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.subscribers {
		if s == sub {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			return
		}
	}
}

func (w *ResponseWatcher) listen() {
	chromedp.ListenTarget(w.listenerCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.handleRequest(e)
		case *network.EventResponseReceived:
			w.handleResponse(e)
		case *network.EventLoadingFailed:
			w.mu.Lock()
			delete(w.pending, e.RequestID)
			w.mu.Unlock()
		}
	})
}

func (w *ResponseWatcher) handleRequest(e *network.EventRequestWillBeSent) {
	if e.Request == nil || e.Request.Method != "POST" {
		return
	}
	if !strings.Contains(e.Request.URL, w.pattern) {
		return
	}
	w.mu.Lock()
	w.pending[e.RequestID] = struct{}{}
	w.mu.Unlock()
}

func (w *ResponseWatcher) handleResponse(e *network.EventResponseReceived) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[e.RequestID]; !ok {
		return
	}
	delete(w.pending, e.RequestID)

	if e.Response == nil || e.Response.Status < 200 || e.Response.Status >= 300 {
		w.logger.Debug("ingestion POST completed without success status",
			zap.Int64("status", func() int64 {
				if e.Response == nil {
					return 0
				}
				return e.Response.Status
			}()))
		return
	}

	w.confirmed++
	w.logger.Debug("analytics batch acknowledged", zap.Int("total_confirmed", w.confirmed))
	for _, sub := range w.subscribers {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}
