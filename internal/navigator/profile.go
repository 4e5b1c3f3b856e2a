// File: internal/navigator/profile.go
package navigator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
)

// HandleProfileSelection clicks through the "who's watching" picker. It
// prefers an avatar whose label matches the profile's display name, then any
// avatar, then a center-screen click: demo profile pickers are visually
// simple and a centered click is frequently correct even without a selector
// match.
func HandleProfileSelection(ctx context.Context, sc *SessionContext) error {
	drv := sc.Driver
	log := sc.Logger.With(zap.String("state", string(StateProfileSelection)))

	sel, ok := browser.Resolve(ctx, drv, browser.RoleProfileAvatar)
	if !ok {
		log.Debug("no avatar elements found, clicking viewport center")
		if err := drv.ClickCenter(ctx); err != nil {
			return err
		}
		return sleep(ctx, sc.Cfg.Session.SettleInterval)
	}

	labels := drv.Texts(ctx, sel, sc.Cfg.Session.MaxDashboardCandidates)
	target := 0
	for i, label := range labels {
		if strings.EqualFold(strings.TrimSpace(label), sc.Profile.DisplayName) {
			target = i
			break
		}
	}

	log.Info("selecting profile", zap.Int("avatar", target), zap.Int("available", len(labels)))
	if err := drv.ClickNth(ctx, sel, target); err != nil {
		return err
	}
	return sleep(ctx, sc.Cfg.Session.SettleInterval)
}
