// File: internal/navigator/unknown.go
package navigator

import (
	"context"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
)

// HandleUnknown is best-effort recovery for pages the classifier cannot
// place: click an explicit sign-in affordance if there is one, otherwise
// scroll, and let the next classification cycle re-evaluate.
func HandleUnknown(ctx context.Context, sc *SessionContext) error {
	drv := sc.Driver
	log := sc.Logger.With(zap.String("state", string(StateUnknown)))

	if sel, ok := browser.Resolve(ctx, drv, browser.RoleSigninLink); ok {
		log.Info("unknown page, following sign-in link")
		if err := drv.Click(ctx, sel); err != nil {
			return err
		}
		return sleep(ctx, sc.Cfg.Session.SettleInterval)
	}

	log.Debug("unknown page, scrolling to look around")
	if err := drv.ScrollBy(ctx, 250+sc.RNG.Float64()*350); err != nil {
		return err
	}
	return sleep(ctx, sc.Cfg.Session.SettleInterval)
}
