// File: internal/humanoid/executor.go
package humanoid

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// Executor defines the contract for the browser automation layer, allowing
// the motion logic to be exercised against mocks in tests and to stay
// portable across automation engines.
type Executor interface {
	// Sleep pauses execution, respecting context cancellation.
	Sleep(ctx context.Context, d time.Duration) error

	// DispatchMouseEvent sends a mouse event using agnostic data structures.
	DispatchMouseEvent(ctx context.Context, data MouseEventData) error

	// SendKeys sends the given keys to the currently focused element.
	SendKeys(ctx context.Context, keys string) error

	// ElementGeometry resolves the first element matching the selector and
	// returns its bounding box. A missing or invisible element yields
	// (nil, nil), not an error: absent elements are expected during
	// exploratory navigation.
	ElementGeometry(ctx context.Context, selector string) (*ElementGeometry, error)
}

// CDPExecutor is the production implementation of Executor on chromedp.
type CDPExecutor struct {
	// geometryTimeout bounds the wait for an element to become visible.
	geometryTimeout time.Duration
}

// NewCDPExecutor creates a production-ready executor.
func NewCDPExecutor(geometryTimeout time.Duration) *CDPExecutor {
	if geometryTimeout <= 0 {
		geometryTimeout = 3 * time.Second
	}
	return &CDPExecutor{geometryTimeout: geometryTimeout}
}

var _ Executor = (*CDPExecutor)(nil)

func (e *CDPExecutor) Sleep(ctx context.Context, d time.Duration) error {
	return chromedp.Sleep(d).Do(ctx)
}

func (e *CDPExecutor) DispatchMouseEvent(ctx context.Context, data MouseEventData) error {
	switch data.Type {
	case MouseMove:
		return input.DispatchMouseEvent(input.MouseMoved, data.X, data.Y).Do(ctx)
	case MousePress:
		return input.DispatchMouseEvent(input.MousePressed, data.X, data.Y).
			WithButton(input.MouseButton(data.Button)).
			WithClickCount(int64(data.ClickCount)).
			WithButtons(1).
			Do(ctx)
	case MouseRelease:
		return input.DispatchMouseEvent(input.MouseReleased, data.X, data.Y).
			WithButton(input.MouseButton(data.Button)).
			WithClickCount(int64(data.ClickCount)).
			Do(ctx)
	case MouseWheel:
		return input.DispatchMouseEvent(input.MouseWheel, data.X, data.Y).
			WithDeltaX(data.DeltaX).
			WithDeltaY(data.DeltaY).
			Do(ctx)
	default:
		return fmt.Errorf("humanoid: unsupported mouse event type %q", data.Type)
	}
}

func (e *CDPExecutor) SendKeys(ctx context.Context, keys string) error {
	// Target whatever currently holds focus; the caller clicks first.
	return chromedp.SendKeys("document.activeElement", keys, chromedp.ByJSPath).Do(ctx)
}

func (e *CDPExecutor) ElementGeometry(ctx context.Context, selector string) (*ElementGeometry, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.geometryTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery),
	}.Do(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Timed out waiting: the element simply isn't there right now.
		return nil, nil
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	box, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
	if err != nil || box == nil || len(box.Content) < 8 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Found in the DOM but not rendered (display:none and friends).
		return nil, nil
	}

	// Content is [x0,y0, x1,y1, x2,y2, x3,y3].
	x := min4(box.Content[0], box.Content[2], box.Content[4], box.Content[6])
	y := min4(box.Content[1], box.Content[3], box.Content[5], box.Content[7])
	return &ElementGeometry{
		X:      x,
		Y:      y,
		Width:  float64(box.Width),
		Height: float64(box.Height),
	}, nil
}

func min4(a, b, c, d float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}
