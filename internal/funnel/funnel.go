// File: internal/funnel/funnel.go
package funnel

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/simulant"
)

// Sender is the capture surface the generator needs; satisfied by
// CaptureClient and by test doubles.
type Sender interface {
	Send(ctx context.Context, events []Event) error
}

// Generator produces a batch of identity-only sessions with biased funnel
// outcomes.
type Generator struct {
	cfg    *config.Config
	logger *zap.Logger
	sender Sender
	now    func() time.Time
}

// NewGenerator wires a funnel generator.
func NewGenerator(cfg *config.Config, sender Sender, logger *zap.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logger, sender: sender, now: time.Now}
}

// Run generates all configured sessions. If the experiment's end timestamp is
// already in the past, the run is skipped entirely: producing biased data for
// a finished experiment would corrupt its analysis.
func (g *Generator) Run(ctx context.Context, rng *rand.Rand) (*Report, error) {
	fc := g.cfg.Funnel

	if end := fc.ExperimentEndTime(); !end.IsZero() && g.now().After(end) {
		g.logger.Warn("experiment end date has passed, skipping funnel generation",
			zap.Time("experiment_end", end))
		return &Report{Skipped: true, Control: fc.Control}, nil
	}

	report := &Report{
		Control:  fc.Control,
		Variants: make(map[string]*VariantTally, len(fc.Variants)),
	}
	for _, name := range fc.Variants {
		report.Variants[name] = &VariantTally{}
	}

	// Per-session RNGs are pre-seeded from the parent so concurrent
	// sessions stay reproducible under a fixed seed.
	seeds := make([]int64, fc.Sessions)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	limiter := rate.NewLimiter(rate.Limit(fc.LaunchRate), 1)
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(fc.Concurrency)

	var mu sync.Mutex
	for i := 0; i < fc.Sessions; i++ {
		variant := fc.Variants[i%len(fc.Variants)] // strict round-robin
		seed := seeds[i]

		if err := limiter.Wait(grpCtx); err != nil {
			break
		}
		grp.Go(func() error {
			outcome := g.runSession(grpCtx, rand.New(rand.NewSource(seed)), variant)
			mu.Lock()
			report.record(variant, outcome)
			mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// sessionOutcome pairs the realized engagement with delivery status.
type sessionOutcome struct {
	engagement Engagement
	errored    bool
}

// runSession draws one identity, rolls its engagement chain, and captures the
// resulting events. A failed capture marks the session errored but never
// aborts the run.
func (g *Generator) runSession(ctx context.Context, rng *rand.Rand, variant string) sessionOutcome {
	profile := simulant.NewProfile(rng)
	engagement := Draw(rng, g.cfg.Funnel.Rates[variant])

	events := buildEvents(profile, variant, engagement)
	if err := g.sender.Send(ctx, events); err != nil {
		g.logger.Warn("capture failed for session",
			zap.String("distinct_id", profile.DistinctID()),
			zap.String("variant", variant),
			zap.Error(err))
		return sessionOutcome{engagement: engagement, errored: true}
	}

	g.logger.Debug("funnel session captured",
		zap.String("variant", variant),
		zap.Bool("message_sent", engagement.MessageSent),
		zap.Int("events", len(events)))
	return sessionOutcome{engagement: engagement}
}

// buildEvents translates an engagement chain into capture events, in the
// order a real session would have emitted them.
func buildEvents(profile simulant.Profile, variant string, e Engagement) []Event {
	id := profile.DistinctID()
	base := map[string]any{
		"$feature/flixbuddy-experiment": variant,
		"experiment_variant":            variant,
		"device_type":                   profile.Device.Type,
		"utm_source":                    profile.Acquisition.Source,
	}
	withBase := func(extra map[string]any) map[string]any {
		props := make(map[string]any, len(base)+len(extra))
		for k, v := range base {
			props[k] = v
		}
		for k, v := range extra {
			props[k] = v
		}
		return props
	}

	events := []Event{NewEvent("experiment_exposure", id, withBase(nil))}

	if e.Abandoned() {
		return append(events, NewEvent("flixbuddy_abandoned", id, withBase(nil)))
	}

	events = append(events, NewEvent("flixbuddy_message_sent", id, withBase(nil)))
	if e.Feedback {
		events = append(events, NewEvent("flixbuddy_feedback", id,
			withBase(map[string]any{"positive": e.FeedbackPositive})))
	}
	if e.VideoClicked {
		events = append(events, NewEvent("recommended_video_clicked", id, withBase(nil)))
	}
	return events
}
