// File: internal/funnel/engagement.go

// Package funnel generates intentionally biased experiment outcomes so a
// downstream experiment-analysis tool observes a predetermined winning
// variant. It is a data-generation tool, not a measurement tool: the lift it
// reports is the lift it manufactured.
package funnel

import (
	"math/rand"

	"github.com/hogflix/hogsim/internal/config"
)

// Engagement is the realized behavior of one synthetic session.
type Engagement struct {
	MessageSent      bool
	Feedback         bool
	FeedbackPositive bool
	VideoClicked     bool
}

// Abandoned reports whether the session produced no engagement at all.
func (e Engagement) Abandoned() bool {
	return !e.MessageSent
}

// Draw rolls the chained Bernoulli outcomes for one session. Later draws are
// conditional on earlier ones: no feedback without a message, no positivity
// without feedback, no video click without a message. A session whose first
// draw fails is simply abandoned.
func Draw(rng *rand.Rand, rates config.VariantRates) Engagement {
	var e Engagement

	e.MessageSent = rng.Float64() < rates.MessageSent
	if !e.MessageSent {
		return e
	}

	e.Feedback = rng.Float64() < rates.Feedback
	if e.Feedback {
		e.FeedbackPositive = rng.Float64() < rates.FeedbackPositive
	}
	e.VideoClicked = rng.Float64() < rates.VideoClicked
	return e
}
