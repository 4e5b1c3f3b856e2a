// File: internal/humanoid/scrolling.go
package humanoid

import (
	"context"
	"time"
)

// ScrollBy scrolls the page by roughly dy pixels using a burst of wheel
// events with randomized increments, the way a real scroll wheel delivers
// them.
func (h *Humanoid) ScrollBy(ctx context.Context, dy float64) error {
	h.mu.Lock()
	pos := h.currentPos
	h.mu.Unlock()

	remaining := dy
	for remaining != 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		step := h.randBetween(60, 140)
		if remaining < 0 {
			step = -step
		}
		if (remaining > 0 && step > remaining) || (remaining < 0 && step < remaining) {
			step = remaining
		}
		if err := h.executor.DispatchMouseEvent(ctx, MouseEventData{
			Type:   MouseWheel,
			X:      pos.X,
			Y:      pos.Y,
			DeltaY: step,
		}); err != nil {
			return err
		}
		remaining -= step

		gap := h.randBetween(30, 90)
		if err := h.executor.Sleep(ctx, time.Duration(gap)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// Jitter drifts the cursor a few pixels around its current position. The
// watching loop calls this periodically to signal presence during playback.
func (h *Humanoid) Jitter(ctx context.Context) error {
	h.mu.Lock()
	pos := h.currentPos
	h.mu.Unlock()

	moves := 2 + int(h.randBetween(0, 3))
	for i := 0; i < moves; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		target := pos.Add(Vector2D{
			X: h.randBetween(-6, 6),
			Y: h.randBetween(-6, 6),
		})
		if err := h.executor.DispatchMouseEvent(ctx, MouseEventData{
			Type: MouseMove,
			X:    target.X,
			Y:    target.Y,
		}); err != nil {
			return err
		}
		h.mu.Lock()
		h.currentPos = target
		h.mu.Unlock()

		gap := h.randBetween(50, 150)
		if err := h.executor.Sleep(ctx, time.Duration(gap)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
