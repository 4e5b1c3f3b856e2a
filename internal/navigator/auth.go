// File: internal/navigator/auth.go
package navigator

import (
	"context"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
)

// HandleAuth fills the login form with the profile's credentials and submits.
// It does not verify success; the next classification cycle does that.
func HandleAuth(ctx context.Context, sc *SessionContext) error {
	drv := sc.Driver
	log := sc.Logger.With(zap.String("state", string(StateAuth)))

	if sel, ok := browser.Resolve(ctx, drv, browser.RoleEmailInput); ok {
		if err := drv.TypeInto(ctx, sel, sc.Profile.Credentials.Email); err != nil {
			return err
		}
	} else {
		log.Debug("no email input found on auth page")
	}

	if sel, ok := browser.Resolve(ctx, drv, browser.RolePasswordInput); ok {
		if err := drv.TypeInto(ctx, sel, sc.Profile.Credentials.Password); err != nil {
			return err
		}
	} else {
		log.Debug("no password input found on auth page")
	}

	// Click the submit button when there is one; otherwise Enter in the
	// focused field is the usual SPA fallback.
	if sel, ok := browser.Resolve(ctx, drv, browser.RoleSubmitButton); ok {
		if err := drv.Click(ctx, sel); err != nil {
			return err
		}
	} else if err := drv.PressEnter(ctx); err != nil {
		return err
	}

	log.Info("submitted credentials", zap.String("email", sc.Profile.Credentials.Email))
	return sleep(ctx, sc.Cfg.Session.SettleInterval)
}
