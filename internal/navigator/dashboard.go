// File: internal/navigator/dashboard.go
package navigator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
)

// candidate is one clickable thing the viewer could plausibly go to next.
type candidate struct {
	selector string
	index    int
	label    string
}

// HandleDashboard browses the content grid: occasionally rage-click a heading
// (an injected frustration signal for the analytics demo), then pick a
// destination among the visible cards and nav links and click it. The oracle
// picks when one is available, otherwise the choice is uniform random.
func HandleDashboard(ctx context.Context, sc *SessionContext) error {
	drv := sc.Driver
	log := sc.Logger.With(zap.String("state", string(StateDashboard)))

	if sc.RNG.Float64() < sc.Cfg.Session.RageClickProbability {
		if sel, ok := browser.Resolve(ctx, drv, browser.RolePageHeading); ok {
			count := 5 + sc.RNG.Intn(5)
			log.Info("injecting rage click", zap.Int("count", count))
			if err := drv.RageClick(ctx, sel, count); err != nil {
				return err
			}
		}
	}

	candidates := collectCandidates(ctx, sc)
	if len(candidates) == 0 {
		// A dashboard with nothing clickable above the fold usually just
		// needs scrolling to reveal content.
		log.Debug("no candidates visible, scrolling")
		if err := drv.ScrollBy(ctx, 300+sc.RNG.Float64()*400); err != nil {
			return err
		}
		return sleep(ctx, sc.Cfg.Session.SettleInterval)
	}

	choice := chooseCandidate(ctx, sc, candidates)
	target := candidates[choice]
	log.Info("navigating to candidate",
		zap.Int("choice", choice), zap.String("label", target.label))

	if err := drv.ScrollIntoView(ctx, target.selector, target.index); err != nil {
		log.Debug("scroll into view failed", zap.Error(err))
	}
	if err := drv.ClickNth(ctx, target.selector, target.index); err != nil {
		return err
	}

	if err := sleep(ctx, sc.Cfg.Session.SettleInterval); err != nil {
		return err
	}

	// Detail pages often interpose a play trigger before actual playback.
	if sel, ok := browser.Resolve(ctx, drv, browser.RolePlayButton); ok {
		if err := drv.Click(ctx, sel); err != nil {
			return err
		}
		return sleep(ctx, sc.Cfg.Session.SettleInterval)
	}
	return nil
}

// collectCandidates enumerates content cards first, then nav links, capped at
// the configured maximum so oracle prompts stay small. The element count is
// authoritative; cards without text (poster-image tiles) still get an entry
// with a synthesized label.
func collectCandidates(ctx context.Context, sc *SessionContext) []candidate {
	max := sc.Cfg.Session.MaxDashboardCandidates
	var out []candidate

	for _, role := range []browser.Role{browser.RoleContentCard, browser.RoleNavLink} {
		if len(out) >= max {
			break
		}
		sel, ok := browser.Resolve(ctx, sc.Driver, role)
		if !ok {
			continue
		}
		n := sc.Driver.Count(ctx, sel)
		if room := max - len(out); n > room {
			n = room
		}
		labels := sc.Driver.Texts(ctx, sel, n)
		for i := 0; i < n; i++ {
			label := ""
			if i < len(labels) {
				label = labels[i]
			}
			if label == "" {
				label = fmt.Sprintf("item %d", i)
			}
			out = append(out, candidate{selector: sel, index: i, label: label})
		}
	}
	return out
}

// chooseCandidate consults the oracle and falls back to a uniform random draw
// on any non-decision. The fallback is the normal path when no API key is
// configured.
func chooseCandidate(ctx context.Context, sc *SessionContext, candidates []candidate) int {
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.label
	}

	d := sc.Oracle.Choose(ctx, "You are on the home page deciding what to do next.", labels)
	if d.OK && d.Index >= 0 && d.Index < len(candidates) {
		return d.Index
	}
	return sc.RNG.Intn(len(candidates))
}
