// File: internal/session/signup.go
package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
	"github.com/hogflix/hogsim/internal/simulant"
)

// RunSignup is the short-session variant: land on the signup page with a
// fresh identity, complete the form, drain analytics, leave. It exercises the
// acquisition attribution and the top of the funnel without the full state
// machine.
func (r *Runner) RunSignup(ctx context.Context, rng *rand.Rand) (Outcome, error) {
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

	out.Err = r.signup(ctx, sess, profile, log)
	out.Success = out.Err == nil
	out.Steps = 1

	if ctx.Err() == nil {
		awaitFlush(ctx, sess.Watcher(), r.cfg.Analytics, log)
	}

	out.Duration = time.Since(start)
	return out, nil
}

func (r *Runner) signup(ctx context.Context, sess *browser.Session, profile simulant.Profile, log *zap.Logger) error {
	target := profile.LandingURL(r.cfg.Target.BaseURL + r.cfg.Target.SignupPath)
	log.Info("starting signup session",
		zap.String("url", target),
		zap.String("plan_intent", profile.Plan.PlanID))

	if err := sess.Navigate(ctx, target); err != nil {
		return fmt.Errorf("session: signup navigation failed: %w", err)
	}
	armRecorder(ctx, sess, log)

	if sel, ok := browser.Resolve(ctx, sess, browser.RoleEmailInput); ok {
		if err := sess.TypeInto(ctx, sel, profile.Credentials.Email); err != nil {
			return err
		}
	} else {
		log.Warn("signup page has no email input, abandoning")
		return nil
	}

	if sel, ok := browser.Resolve(ctx, sess, browser.RolePasswordInput); ok {
		if err := sess.TypeInto(ctx, sel, profile.Credentials.Password); err != nil {
			return err
		}
	}

	if sel, ok := browser.Resolve(ctx, sess, browser.RoleSubmitButton); ok {
		if err := sess.Click(ctx, sel); err != nil {
			return err
		}
	} else if err := sess.PressEnter(ctx); err != nil {
		return err
	}

	// Let the post-submit redirect and its page views land.
	timer := time.NewTimer(r.cfg.Session.SettleInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	log.Info("signup submitted", zap.String("email", profile.Credentials.Email))
	return nil
}
