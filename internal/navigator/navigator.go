// File: internal/navigator/navigator.go

// Package navigator is the state machine that steers a session through the
// HogFlix UI. The page's state is reclassified from scratch on every loop
// step; handlers carry no belief about what the last action achieved, which
// makes the loop self-healing when the app behaves unexpectedly.
package navigator

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/browser"
	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/oracle"
	"github.com/hogflix/hogsim/internal/simulant"
)

// State is the classified page state.
type State string

const (
	StateAuth             State = "auth"
	StateProfileSelection State = "profile_selection"
	StateDashboard        State = "dashboard"
	StateWatching         State = "watching"
	StateUnknown          State = "unknown"
)

// SessionContext bundles everything a handler may touch. The RNG is threaded
// explicitly so runs are reproducible under a fixed seed.
type SessionContext struct {
	Profile simulant.Profile
	RNG     *rand.Rand
	Driver  browser.Driver
	Oracle  oracle.Chooser
	Logger  *zap.Logger
	Cfg     *config.Config
}

// Handler performs one episode for a state. Episodes are idempotent:
// re-running one against the same page state is safe, and success is judged
// by the next classification, never by the handler itself.
type Handler func(ctx context.Context, sc *SessionContext) error

// HandlerFor returns the episode for a classified state.
func HandlerFor(state State) Handler {
	switch state {
	case StateAuth:
		return HandleAuth
	case StateProfileSelection:
		return HandleProfileSelection
	case StateDashboard:
		return HandleDashboard
	case StateWatching:
		return HandleWatching
	default:
		return HandleUnknown
	}
}

// Classify determines the current page state. URL substrings are checked
// first and win over DOM probes; the order of checks is deterministic.
func Classify(ctx context.Context, drv browser.Driver) State {
	url, err := drv.CurrentURL(ctx)
	if err == nil {
		switch {
		case strings.Contains(url, "login"):
			return StateAuth
		case strings.Contains(url, "profiles"):
			return StateProfileSelection
		case strings.Contains(url, "watch"):
			return StateWatching
		}
	}

	if _, ok := browser.Resolve(ctx, drv, browser.RolePasswordInput); ok {
		return StateAuth
	}
	if _, _, ok := browser.ResolveAny(ctx, drv, browser.RoleContentCard, browser.RoleNavLink); ok {
		return StateDashboard
	}
	return StateUnknown
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
