// File: internal/funnel/funnel_test.go
package funnel

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/simulant"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memorySender records batches instead of posting them.
type memorySender struct {
	mu      sync.Mutex
	batches [][]Event
	err     error
}

func (s *memorySender) Send(ctx context.Context, events []Event) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, events)
	return nil
}

func (s *memorySender) eventNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, batch := range s.batches {
		for _, e := range batch {
			names = append(names, e.Event)
		}
	}
	return names
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Funnel.Sessions = 10
	cfg.Funnel.Concurrency = 4
	cfg.Funnel.LaunchRate = 10000 // effectively unpaced in tests
	return cfg
}

func TestDrawChainConditionality(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// A zero message rate forbids every downstream outcome, regardless of
	// how generous the downstream rates are.
	rates := config.VariantRates{MessageSent: 0, Feedback: 1, FeedbackPositive: 1, VideoClicked: 1}
	for i := 0; i < 1000; i++ {
		e := Draw(rng, rates)
		require.False(t, e.MessageSent)
		require.False(t, e.Feedback)
		require.False(t, e.FeedbackPositive)
		require.False(t, e.VideoClicked)
		require.True(t, e.Abandoned())
	}

	// Certain draws realize the whole chain.
	rates = config.VariantRates{MessageSent: 1, Feedback: 1, FeedbackPositive: 1, VideoClicked: 1}
	e := Draw(rng, rates)
	assert.True(t, e.MessageSent && e.Feedback && e.FeedbackPositive && e.VideoClicked)

	// No feedback positivity without feedback.
	rates = config.VariantRates{MessageSent: 1, Feedback: 0, FeedbackPositive: 1, VideoClicked: 0}
	for i := 0; i < 1000; i++ {
		e := Draw(rng, rates)
		require.False(t, e.FeedbackPositive)
	}
}

func TestBuildEventsForAbandonedSession(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	profile := simulant.NewProfile(rng)

	events := buildEvents(profile, "control", Engagement{})
	require.Len(t, events, 2)
	assert.Equal(t, "experiment_exposure", events[0].Event)
	assert.Equal(t, "flixbuddy_abandoned", events[1].Event)
	assert.Equal(t, "control", events[0].Properties["experiment_variant"])
	assert.Equal(t, profile.DistinctID(), events[0].DistinctID)
}

func TestBuildEventsForFullEngagement(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	profile := simulant.NewProfile(rng)

	e := Engagement{MessageSent: true, Feedback: true, FeedbackPositive: true, VideoClicked: true}
	events := buildEvents(profile, "flixbuddy-proactive", e)

	var names []string
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	assert.Equal(t, []string{
		"experiment_exposure",
		"flixbuddy_message_sent",
		"flixbuddy_feedback",
		"recommended_video_clicked",
	}, names)
	assert.Equal(t, true, events[2].Properties["positive"])
}

func TestRunAssignsVariantsRoundRobin(t *testing.T) {
	cfg := testConfig()
	sender := &memorySender{}
	gen := NewGenerator(cfg, sender, zap.NewNop())

	report, err := gen.Run(context.Background(), rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	require.False(t, report.Skipped)

	// 10 sessions over 2 variants: exactly 5 exposures each.
	assert.Equal(t, 5, report.Variants["control"].Exposures)
	assert.Equal(t, 5, report.Variants["flixbuddy-proactive"].Exposures)
}

func TestRunMarksCaptureFailuresWithoutAborting(t *testing.T) {
	cfg := testConfig()
	sender := &memorySender{err: errors.New("ingest down")}
	gen := NewGenerator(cfg, sender, zap.NewNop())

	report, err := gen.Run(context.Background(), rand.New(rand.NewSource(5)))
	require.NoError(t, err, "capture failures must not abort the run")

	total := 0
	for _, tally := range report.Variants {
		total += tally.Errored
	}
	assert.Equal(t, cfg.Funnel.Sessions, total)
}

func TestRunSkipsExpiredExperiment(t *testing.T) {
	cfg := testConfig()
	cfg.Funnel.ExperimentEnd = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	sender := &memorySender{}
	gen := NewGenerator(cfg, sender, zap.NewNop())

	report, err := gen.Run(context.Background(), rand.New(rand.NewSource(6)))
	require.NoError(t, err, "an expired experiment is a skip, not a failure")
	assert.True(t, report.Skipped)
	assert.Empty(t, sender.batches, "no events may be produced past the end date")
	assert.Contains(t, report.String(), "skipped")
}

func TestLiftArithmetic(t *testing.T) {
	r := &Report{
		Control: "control",
		Variants: map[string]*VariantTally{
			"control": {Exposures: 100, MessagesSent: 40},
			"variant": {Exposures: 100, MessagesSent: 60},
		},
	}
	assert.InDelta(t, 50.0, r.Lift("variant"), 1e-9)
	assert.InDelta(t, 0.0, r.Lift("control"), 1e-9)
}

func TestVariantBiasShowsUpInAggregate(t *testing.T) {
	cfg := testConfig()
	cfg.Funnel.Sessions = 2000
	cfg.Funnel.Concurrency = 8
	sender := &memorySender{}
	gen := NewGenerator(cfg, sender, zap.NewNop())

	report, err := gen.Run(context.Background(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	// Default rates are 0.40 vs 0.60; over 1000 draws per arm the realized
	// rates should separate decisively.
	control := report.Variants["control"].ConversionRate()
	variant := report.Variants["flixbuddy-proactive"].ConversionRate()
	assert.InDelta(t, 0.40, control, 0.06)
	assert.InDelta(t, 0.60, variant, 0.06)
	assert.Greater(t, report.Lift("flixbuddy-proactive"), 20.0)
}

func TestReportStringIncludesRates(t *testing.T) {
	r := &Report{
		Control: "control",
		Variants: map[string]*VariantTally{
			"control": {Exposures: 10, MessagesSent: 4},
			"variant": {Exposures: 10, MessagesSent: 6},
		},
	}
	out := r.String()
	assert.Contains(t, out, "control")
	assert.Contains(t, out, "+50.0%")
}
