// File: internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Enter is the carriage return understood by SendKeys as the Enter key.
const Enter = "\r"

// Type focuses the element by clicking it, then sends the text one rune at a
// time with a normally distributed inter-key delay. If the field never
// resolves, Type logs and returns nil rather than aborting the episode.
func (h *Humanoid) Type(ctx context.Context, selector, text string) error {
	geo, err := h.executor.ElementGeometry(ctx, selector)
	if err != nil {
		return err
	}
	if geo == nil {
		h.logger.Debug("type target has no geometry, skipping",
			zap.String("selector", selector))
		return nil
	}
	if err := h.MoveToPoint(ctx, h.targetPoint(*geo)); err != nil {
		return err
	}
	if err := h.ClickHere(ctx); err != nil {
		return err
	}

	// A short planning pause after focusing, before the first keystroke.
	settle := h.randBetween(150, 400)
	if err := h.executor.Sleep(ctx, time.Duration(settle)*time.Millisecond); err != nil {
		return err
	}

	for _, r := range text {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.executor.SendKeys(ctx, string(r)); err != nil {
			return err
		}
		delay := h.normClamped(
			h.cfg.KeyDelayMeanMs,
			h.cfg.KeyDelayStdDevMs,
			h.cfg.KeyDelayMinMs,
			h.cfg.KeyDelayMaxMs,
		)
		if err := h.executor.Sleep(ctx, time.Duration(delay)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// PressEnter submits whatever currently holds focus.
func (h *Humanoid) PressEnter(ctx context.Context) error {
	return h.executor.SendKeys(ctx, Enter)
}
