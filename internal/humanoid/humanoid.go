// File: internal/humanoid/humanoid.go
package humanoid

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
)

// Humanoid generates human-like pointer movement, clicking, typing, and
// scrolling on top of an Executor. One instance serves one browser session;
// it tracks the cursor position between actions so consecutive movements
// form a continuous path.
type Humanoid struct {
	cfg      config.HumanoidConfig
	logger   *zap.Logger
	executor Executor

	mu         sync.Mutex
	currentPos Vector2D
	rng        *rand.Rand

	// Perlin generators drive the low-frequency drift of the cursor path.
	noiseX *perlin.Perlin
	noiseY *perlin.Perlin
}

// New creates a Humanoid. The rng is injected so sessions are independent
// and tests are deterministic; pass nil to seed from the clock.
func New(cfg config.HumanoidConfig, executor Executor, logger *zap.Logger, rng *rand.Rand) *Humanoid {
	seed := time.Now().UnixNano()
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	// Standard Perlin parameters.
	alpha, beta, n := 2.0, 2.0, int32(3)

	return &Humanoid{
		cfg:      cfg,
		logger:   logger,
		executor: executor,
		rng:      rng,
		noiseX:   perlin.NewPerlin(alpha, beta, n, seed),
		noiseY:   perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// Position returns the current tracked cursor position.
func (h *Humanoid) Position() Vector2D {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentPos
}

// SetPosition initializes the cursor, typically to the viewport center right
// after session startup.
func (h *Humanoid) SetPosition(pos Vector2D) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentPos = pos
}

// randBetween returns a uniform draw in [lo, hi).
func (h *Humanoid) randBetween(lo, hi float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hi <= lo {
		return lo
	}
	return lo + h.rng.Float64()*(hi-lo)
}

// normClamped draws from N(mean, stddev) clamped to [lo, hi].
func (h *Humanoid) normClamped(mean, stddev, lo, hi float64) float64 {
	h.mu.Lock()
	v := h.rng.NormFloat64()*stddev + mean
	h.mu.Unlock()
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
