// File: internal/humanoid/movement.go
package humanoid

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// computeEaseInOutCubic provides a smooth acceleration and deceleration
// profile for movement.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// fittsDuration models movement time with Fitts's Law:
// MT = A + B * log2(1 + D/W).
func (h *Humanoid) fittsDuration(distance float64) time.Duration {
	const targetWidth = 30.0
	id := math.Log2(1.0 + distance/targetWidth)
	mt := h.cfg.FittsA + h.cfg.FittsB*id
	// +/- 15% jitter so repeated moves of equal length differ.
	mt += mt * h.randBetween(-0.15, 0.15)
	if mt < 0 {
		mt = 0
	}
	return time.Duration(mt) * time.Millisecond
}

// MoveTo moves the pointer to a jittered point inside the element matching
// selector, along an eased arc. If the element has no bounding box (missing
// or invisible) the move is a no-op: absent elements are expected while
// exploring a page we do not control, and must never abort an episode.
func (h *Humanoid) MoveTo(ctx context.Context, selector string) error {
	geo, err := h.executor.ElementGeometry(ctx, selector)
	if err != nil {
		return err
	}
	if geo == nil {
		h.logger.Debug("move target has no geometry, skipping",
			zap.String("selector", selector))
		return nil
	}
	return h.MoveToPoint(ctx, h.targetPoint(*geo))
}

// MoveToPoint moves the pointer to an absolute coordinate with an
// overshoot-and-correct arc: the main stroke lands slightly past the target,
// then a short corrective stroke settles on it.
func (h *Humanoid) MoveToPoint(ctx context.Context, target Vector2D) error {
	h.mu.Lock()
	start := h.currentPos
	h.mu.Unlock()

	dist := start.Dist(target)
	if dist < 1.0 {
		return nil
	}

	// With motion simulation off the pointer jumps straight to the target.
	// Useful for fast smoke runs where realism does not matter.
	if !h.cfg.Enabled {
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
		return nil
	}

	// Overshoot grows with distance, capped at a believable hand slip.
	overshootMag := math.Min(12.0, dist*0.04) * h.randBetween(0.3, 1.0)
	dir := target.Sub(start).Normalize()
	overshot := target.Add(dir.Mul(overshootMag))

	if err := h.stroke(ctx, start, overshot); err != nil {
		return err
	}
	// Corrective stroke back onto the target.
	if overshootMag > 1.5 {
		if err := h.stroke(ctx, overshot, target); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.currentPos = target
	h.mu.Unlock()
	return nil
}

// stroke dispatches one eased Bezier arc between two points as a sequence of
// discrete pointer moves with Perlin drift and Gaussian tremor.
func (h *Humanoid) stroke(ctx context.Context, start, end Vector2D) error {
	steps := h.cfg.MinMoveSteps
	if span := h.cfg.MaxMoveSteps - h.cfg.MinMoveSteps; span > 0 {
		h.mu.Lock()
		steps += h.rng.Intn(span + 1)
		h.mu.Unlock()
	}
	if steps < 2 {
		steps = 2
	}

	duration := h.fittsDuration(start.Dist(end))
	stepDelay := duration / time.Duration(steps)
	path := h.bezierPath(start, end, steps)
	began := time.Now()

	for i, point := range path {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		elapsed := time.Since(began).Seconds()
		drift := Vector2D{
			X: h.noiseX.Noise1D(elapsed*0.8) * h.cfg.PerlinAmplitude,
			Y: h.noiseY.Noise1D(elapsed*0.8) * h.cfg.PerlinAmplitude,
		}
		h.mu.Lock()
		tremor := Vector2D{
			X: h.rng.NormFloat64() * h.cfg.GaussianStrength,
			Y: h.rng.NormFloat64() * h.cfg.GaussianStrength,
		}
		h.mu.Unlock()

		perturbed := point.Add(drift).Add(tremor)
		// The final sample lands exactly where the stroke aims.
		if i == len(path)-1 {
			perturbed = point
		}

		if err := h.executor.DispatchMouseEvent(ctx, MouseEventData{
			Type: MouseMove,
			X:    perturbed.X,
			Y:    perturbed.Y,
		}); err != nil {
			return err
		}

		h.mu.Lock()
		h.currentPos = perturbed
		h.mu.Unlock()

		if err := h.executor.Sleep(ctx, stepDelay); err != nil {
			return err
		}
	}
	return nil
}

// bezierPath samples a cubic Bezier curve whose control points are displaced
// perpendicular to the travel direction, producing an arc rather than a
// straight teleport. Time is eased so the samples bunch at both ends.
func (h *Humanoid) bezierPath(start, end Vector2D, steps int) []Vector2D {
	travel := end.Sub(start)
	dist := travel.Mag()
	// Perpendicular unit vector for arc curvature.
	perp := Vector2D{X: -travel.Y, Y: travel.X}.Normalize()

	bend1 := perp.Mul(dist * h.randBetween(-0.12, 0.12))
	bend2 := perp.Mul(dist * h.randBetween(-0.08, 0.08))
	p1 := start.Add(travel.Mul(1.0 / 3.0)).Add(bend1)
	p2 := start.Add(travel.Mul(2.0 / 3.0)).Add(bend2)

	path := make([]Vector2D, steps)
	for i := 0; i < steps; i++ {
		t := computeEaseInOutCubic(float64(i) / float64(steps-1))
		omt := 1.0 - t
		path[i] = start.Mul(omt * omt * omt).
			Add(p1.Mul(3 * omt * omt * t)).
			Add(p2.Mul(3 * omt * t * t)).
			Add(end.Mul(t * t * t))
	}
	return path
}

// targetPoint picks a realistic click point inside the element: Gaussian
// around the center, clamped to stay within the box.
func (h *Humanoid) targetPoint(geo ElementGeometry) Vector2D {
	center := geo.Center()
	if geo.Width == 0 || geo.Height == 0 {
		return center
	}

	h.mu.Lock()
	offX := h.rng.NormFloat64() * geo.Width / 6.0
	offY := h.rng.NormFloat64() * geo.Height / 6.0
	h.mu.Unlock()

	x := math.Max(geo.X+1, math.Min(geo.X+geo.Width-1, center.X+offX))
	y := math.Max(geo.Y+1, math.Min(geo.Y+geo.Height-1, center.Y+offY))
	return Vector2D{X: x, Y: y}
}
