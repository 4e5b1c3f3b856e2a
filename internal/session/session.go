// File: internal/session/session.go

// Package session runs one simulated viewer journey end to end: spin up a
// browser with a drawn profile, walk the state machine for a fixed step
// budget, then drain analytics before closing.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/navigator"
	"github.com/hogflix/hogsim/internal/oracle"
	"github.com/hogflix/hogsim/internal/simulant"
)

// Outcome records how one journey went.
type Outcome struct {
	SessionID     string
	Source        string
	Steps         int
	StatesVisited []navigator.State
	Success       bool
	Err           error
	Duration      time.Duration
}

// Runner executes journey sessions.
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	chooser oracle.Chooser
}

// NewRunner wires a runner with its decision oracle.
func NewRunner(cfg *config.Config, chooser oracle.Chooser, logger *zap.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger, chooser: chooser}
}

// Run executes one complete journey. Fatal errors inside the session are
// caught here and recorded as a failed outcome; teardown is still attempted.
// The returned error is reserved for startup failures (browser launch),
// which the caller treats as process-fatal.
func (r *Runner) Run(ctx context.Context, rng *rand.Rand) (Outcome, error) {
	start := time.Now()
	profile := simulant.NewProfile(rng)

	sess, err := browser.NewSession(ctx, r.cfg, profile, r.logger, rng)
	if err != nil {
		return Outcome{}, fmt.Errorf("session: browser startup failed: %w", err)
	}
	defer sess.Close()

	out := Outcome{
		SessionID: sess.ID(),
		Source:    profile.Acquisition.Source,
	}
	log := r.logger.With(zap.String("session_id", sess.ID()))

	sc := &navigator.SessionContext{
		Profile: profile,
		RNG:     rng,
		Driver:  sess,
		Oracle:  r.chooser,
		Logger:  log,
		Cfg:     r.cfg,
	}

	out.Err = r.walk(ctx, sess, sc, &out, log)
	out.Success = out.Err == nil

	// A cancelled run has no obligation to guarantee analytics delivery;
	// everything else drains before the browser closes.
	if ctx.Err() == nil {
		awaitFlush(ctx, sess.Watcher(), r.cfg.Analytics, log)
	} else {
		log.Info("run cancelled, skipping analytics flush wait")
	}

	out.Duration = time.Since(start)
	return out, nil
}

// walk is the classify → act → settle loop.
func (r *Runner) walk(ctx context.Context, sess *browser.Session, sc *navigator.SessionContext, out *Outcome, log *zap.Logger) error {
	landing := sc.Profile.LandingURL(r.cfg.Target.BaseURL)
	log.Info("starting journey",
		zap.String("landing_url", landing),
		zap.String("device", sc.Profile.Device.Type),
		zap.Int("steps", r.cfg.Session.Steps))

	if err := sess.Navigate(ctx, landing); err != nil {
		return fmt.Errorf("session: initial navigation failed: %w", err)
	}
	armRecorder(ctx, sess, log)

	for step := 0; step < r.cfg.Session.Steps; step++ {
		if err := ctx.Err(); err != nil {
			log.Info("cancellation observed between steps", zap.Int("step", step))
			return err
		}

		state := navigator.Classify(ctx, sess)
		out.StatesVisited = append(out.StatesVisited, state)
		out.Steps = step + 1
		log.Info("step", zap.Int("n", step), zap.String("state", string(state)))

		if err := navigator.HandlerFor(state)(ctx, sc); err != nil {
			return fmt.Errorf("session: %s handler failed at step %d: %w", state, step, err)
		}

		// SPA full navigations can reset the in-page capture agent.
		if r.cfg.Session.RearmEvery > 0 && (step+1)%r.cfg.Session.RearmEvery == 0 {
			armRecorder(ctx, sess, log)
		}
	}
	return nil
}

// armRecorder re-enables the in-page analytics capture agent. Failure is
// absorbed: the page may not have loaded the agent yet.
func armRecorder(ctx context.Context, drv browser.Driver, log *zap.Logger) {
	const expr = `(() => {
		if (window.posthog && typeof window.posthog.opt_in_capturing === 'function') {
			window.posthog.opt_in_capturing();
			return true;
		}
		return false;
	})()`
	var armed bool
	if err := drv.Eval(ctx, expr, &armed); err != nil {
		log.Debug("recorder re-arm eval failed", zap.Error(err))
		return
	}
	log.Debug("analytics recorder armed", zap.Bool("agent_present", armed))
}

// Summarize renders a short human-readable report for a batch of outcomes.
func Summarize(outcomes []Outcome) string {
	var b strings.Builder
	ok := 0
	for _, o := range outcomes {
		if o.Success {
			ok++
		}
	}
	fmt.Fprintf(&b, "sessions: %d succeeded, %d failed\n", ok, len(outcomes)-ok)
	for _, o := range outcomes {
		states := make([]string, len(o.StatesVisited))
		for i, s := range o.StatesVisited {
			states[i] = string(s)
		}
		status := "ok"
		if !o.Success {
			status = fmt.Sprintf("failed: %v", o.Err)
		}
		fmt.Fprintf(&b, "  %s  source=%-12s steps=%-3d %-8s %s\n",
			o.SessionID, o.Source, o.Steps, o.Duration.Round(time.Second), status)
		fmt.Fprintf(&b, "      path: %s\n", strings.Join(states, " -> "))
	}
	return b.String()
}
