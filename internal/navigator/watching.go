// File: internal/navigator/watching.go
package navigator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
)

const playbackProbe = `(() => {
	const v = document.querySelector('video');
	return v ? v.currentTime : -1;
})()`

const playbackToggle = `(() => {
	const v = document.querySelector('video');
	if (!v) return false;
	if (v.paused) { v.play(); } else { v.pause(); }
	return true;
})()`

// HandleWatching simulates actually watching the content: wait for playback
// to start, stay on the page for a weighted fraction of an assumed fixed
// content length, drift the pointer to signal presence, occasionally pause
// and resume, then go back to browsing.
func HandleWatching(ctx context.Context, sc *SessionContext) error {
	drv := sc.Driver
	log := sc.Logger.With(zap.String("state", string(StateWatching)))

	fraction := pickWatchFraction(sc)
	target := time.Duration(fraction * float64(sc.Cfg.Session.AssumedContentLength))
	log.Info("watching", zap.Float64("fraction", fraction), zap.Duration("target", target))

	if !waitForPlayback(ctx, sc) {
		// One click-to-start attempt; players on the demo app sometimes
		// require a gesture before autoplay.
		if sel, ok := browser.Resolve(ctx, drv, browser.RolePlayButton); ok {
			if err := drv.Click(ctx, sel); err != nil {
				return err
			}
		} else if sel, ok := browser.Resolve(ctx, drv, browser.RoleVideoElement); ok {
			if err := drv.Click(ctx, sel); err != nil {
				return err
			}
		}
		if !waitForPlayback(ctx, sc) {
			log.Warn("playback never started, abandoning title")
			return drv.Back(ctx)
		}
	}

	deadline := time.Now().Add(target)
	for time.Now().Before(deadline) {
		if err := sleep(ctx, sc.Cfg.Session.WatchPollInterval); err != nil {
			return err
		}
		if err := drv.Jitter(ctx); err != nil {
			return err
		}
		if sc.RNG.Float64() < sc.Cfg.Session.PauseProbability {
			if err := pauseAndResume(ctx, sc); err != nil {
				return err
			}
		}
	}

	log.Info("finished watching, returning to browse")
	return drv.Back(ctx)
}

// pickWatchFraction draws uniformly from the configured completion fractions.
func pickWatchFraction(sc *SessionContext) float64 {
	fractions := sc.Cfg.Session.WatchFractions
	if len(fractions) == 0 {
		return 0.5
	}
	return fractions[sc.RNG.Intn(len(fractions))]
}

// waitForPlayback polls the video element until its currentTime advances, up
// to the configured startup timeout. It reports whether playback is live.
func waitForPlayback(ctx context.Context, sc *SessionContext) bool {
	deadline := time.Now().Add(sc.Cfg.Session.PlaybackStartTimeout)
	var last float64 = -1

	for time.Now().Before(deadline) {
		var now float64
		if err := sc.Driver.Eval(ctx, playbackProbe, &now); err != nil {
			return false
		}
		if now > 0 && now != last && last >= 0 {
			return true
		}
		last = now
		if err := sleep(ctx, sc.Cfg.Session.WatchPollInterval); err != nil {
			return false
		}
	}
	return false
}

// pauseAndResume toggles playback twice with a short think-pause between. A
// player that vanishes between the toggles is absorbed like any other missing
// element; the next classification cycle sorts out where the session landed.
func pauseAndResume(ctx context.Context, sc *SessionContext) error {
	sc.Logger.Debug("pausing playback")
	var ok bool
	if err := sc.Driver.Eval(ctx, playbackToggle, &ok); err != nil || !ok {
		return err
	}
	base := sc.Cfg.Session.SettleInterval
	hold := base + time.Duration(sc.RNG.Int63n(int64(2*base)+1))
	if err := sleep(ctx, hold); err != nil {
		return err
	}
	if err := sc.Driver.Eval(ctx, playbackToggle, &ok); err != nil {
		return err
	}
	if !ok {
		sc.Logger.Debug("video element disappeared during pause, leaving recovery to reclassification")
	}
	return nil
}
