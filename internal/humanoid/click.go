// File: internal/humanoid/click.go
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Click moves to the element and performs a press/release with a randomized
// hold. A missing element makes the whole click a no-op.
func (h *Humanoid) Click(ctx context.Context, selector string) error {
	geo, err := h.executor.ElementGeometry(ctx, selector)
	if err != nil {
		return err
	}
	if geo == nil {
		h.logger.Debug("click target has no geometry, skipping",
			zap.String("selector", selector))
		return nil
	}
	if err := h.MoveToPoint(ctx, h.targetPoint(*geo)); err != nil {
		return err
	}
	return h.ClickHere(ctx)
}

// ClickBox clicks a jittered point inside an already-resolved bounding box.
// Callers that locate elements themselves (e.g. the nth match of a selector)
// use this instead of Click.
func (h *Humanoid) ClickBox(ctx context.Context, geo ElementGeometry) error {
	if err := h.MoveToPoint(ctx, h.targetPoint(geo)); err != nil {
		return err
	}
	return h.ClickHere(ctx)
}

// ClickAt moves to an absolute coordinate and clicks. Used for the
// center-screen fallback when no selector resolves.
func (h *Humanoid) ClickAt(ctx context.Context, point Vector2D) error {
	if err := h.MoveToPoint(ctx, point); err != nil {
		return err
	}
	return h.ClickHere(ctx)
}

// ClickHere presses and releases at the current cursor position.
func (h *Humanoid) ClickHere(ctx context.Context) error {
	h.mu.Lock()
	pos := h.currentPos
	h.mu.Unlock()

	if err := h.executor.DispatchMouseEvent(ctx, MouseEventData{
		Type:       MousePress,
		X:          pos.X,
		Y:          pos.Y,
		Button:     ButtonLeft,
		ClickCount: 1,
	}); err != nil {
		return err
	}

	hold := h.randBetween(float64(h.cfg.ClickHoldMinMs), float64(h.cfg.ClickHoldMaxMs))
	if err := h.executor.Sleep(ctx, time.Duration(hold)*time.Millisecond); err != nil {
		return err
	}

	return h.executor.DispatchMouseEvent(ctx, MouseEventData{
		Type:       MouseRelease,
		X:          pos.X,
		Y:          pos.Y,
		Button:     ButtonLeft,
		ClickCount: 1,
	})
}

// RageClick fires count rapid clicks on the element, a deliberately injected
// frustration signal for the analytics demo. It is not human motion; the
// whole point is that the cadence looks angry.
func (h *Humanoid) RageClick(ctx context.Context, selector string, count int) error {
	geo, err := h.executor.ElementGeometry(ctx, selector)
	if err != nil {
		return err
	}
	if geo == nil {
		return nil
	}
	if err := h.MoveToPoint(ctx, h.targetPoint(*geo)); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.ClickHere(ctx); err != nil {
			return err
		}
		gap := h.randBetween(40, 120)
		if err := h.executor.Sleep(ctx, time.Duration(gap)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
