// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hogflix/hogsim/internal/config"
	"github.com/hogflix/hogsim/internal/humanoid"
	"github.com/hogflix/hogsim/internal/simulant"
)

// Session owns one browser context for the lifetime of one simulated user.
// Nothing is shared between sessions; closing the session releases the
// browser resources deterministically.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	profile simulant.Profile
	human   *humanoid.Humanoid
	watcher *ResponseWatcher
}

var _ Driver = (*Session)(nil)

// NewSession allocates a fresh browser context configured with the profile's
// device fingerprint. The parent context bounds the whole session; cancelling
// it tears the browser down.
func NewSession(parent context.Context, cfg *config.Config, profile simulant.Profile, logger *zap.Logger, rng *rand.Rand) (*Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", cfg.Browser.Headless),
		chromedp.UserAgent(profile.Device.UserAgent),
		chromedp.WindowSize(profile.Device.ViewportWidth, profile.Device.ViewportHeight),
	)
	if cfg.Browser.DisableCache {
		opts = append(opts, chromedp.Flag("disable-application-cache", true))
	}
	if cfg.Browser.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	for _, arg := range cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)

	var ctxOpts []chromedp.ContextOption
	if cfg.Browser.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(func(format string, args ...any) {
			logger.Sugar().Debugf(format, args...)
		}))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	cancel := func() {
		tabCancel()
		allocCancel()
	}

	sessionID := uuid.New().String()
	sessionLogger := logger.With(zap.String("session_id", sessionID))

	s := &Session{
		id:      sessionID,
		ctx:     tabCtx,
		cancel:  cancel,
		logger:  sessionLogger,
		cfg:     cfg,
		profile: profile,
	}

	// Materialize the browser process and apply the device fingerprint.
	mobile := profile.Device.Type != "desktop"
	if err := chromedp.Run(tabCtx,
		emulation.SetUserAgentOverride(profile.Device.UserAgent),
		emulation.SetDeviceMetricsOverride(
			int64(profile.Device.ViewportWidth),
			int64(profile.Device.ViewportHeight),
			1.0,
			mobile,
		),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: failed to initialize session context: %w", err)
	}

	// The watcher must attach before the first navigation so no ingestion
	// response slips past unobserved.
	s.watcher = NewResponseWatcher(tabCtx, cfg.Analytics.IngestPathPattern, sessionLogger)
	if err := s.watcher.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: failed to start response watcher: %w", err)
	}

	exec := humanoid.NewCDPExecutor(cfg.Browser.ElementTimeout)
	s.human = humanoid.New(cfg.Humanoid, sessionExecutor{exec: exec, ctx: tabCtx}, sessionLogger.Named("humanoid"), rng)
	s.human.SetPosition(humanoid.Vector2D{
		X: float64(profile.Device.ViewportWidth) / 2.0,
		Y: float64(profile.Device.ViewportHeight) / 2.0,
	})

	return s, nil
}

// sessionExecutor binds the CDP executor to the session's tab context so the
// humanoid layer can run chromedp actions against the right target while
// still honoring per-operation contexts.
type sessionExecutor struct {
	exec *humanoid.CDPExecutor
	ctx  context.Context
}

func (e sessionExecutor) run(ctx context.Context, fn func(context.Context) error) error {
	opCtx, cancel := combineContext(e.ctx, ctx)
	defer cancel()
	return fn(opCtx)
}

func (e sessionExecutor) Sleep(ctx context.Context, d time.Duration) error {
	return e.run(ctx, func(c context.Context) error { return e.exec.Sleep(c, d) })
}

func (e sessionExecutor) DispatchMouseEvent(ctx context.Context, data humanoid.MouseEventData) error {
	return e.run(ctx, func(c context.Context) error { return e.exec.DispatchMouseEvent(c, data) })
}

func (e sessionExecutor) SendKeys(ctx context.Context, keys string) error {
	return e.run(ctx, func(c context.Context) error { return e.exec.SendKeys(c, keys) })
}

func (e sessionExecutor) ElementGeometry(ctx context.Context, selector string) (*humanoid.ElementGeometry, error) {
	var geo *humanoid.ElementGeometry
	err := e.run(ctx, func(c context.Context) error {
		var inner error
		geo, inner = e.exec.ElementGeometry(c, selector)
		return inner
	})
	return geo, err
}

// combineContext returns a context cancelled when either input is done.
func combineContext(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string { return s.id }

// Profile returns the immutable identity driving this session.
func (s *Session) Profile() simulant.Profile { return s.profile }

// Watcher exposes the session's analytics response watcher.
func (s *Session) Watcher() *ResponseWatcher { return s.watcher }

// Close releases the browser context. Safe to call more than once.
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// run executes chromedp actions respecting both the session lifetime and the
// caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// --- Driver implementation ---

func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.NavigationTimeout)
	defer cancel()
	return s.run(navCtx, chromedp.Navigate(url))
}

func (s *Session) Back(ctx context.Context) error {
	return s.run(ctx, chromedp.NavigateBack())
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (s *Session) Visible(ctx context.Context, selector string) bool {
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	})()`, strconv.Quote(selector))

	var visible bool
	if err := s.Eval(ctx, expr, &visible); err != nil {
		s.logger.Debug("visibility probe failed", zap.String("selector", selector), zap.Error(err))
		return false
	}
	return visible
}

func (s *Session) Count(ctx context.Context, selector string) int {
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(selector))
	var n int
	if err := s.Eval(ctx, expr, &n); err != nil {
		return 0
	}
	return n
}

func (s *Session) Texts(ctx context.Context, selector string, limit int) []string {
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%s))
		.slice(0, %d)
		.map(el => (el.innerText || el.getAttribute('aria-label') || '').trim().slice(0, 80))`,
		strconv.Quote(selector), limit)

	var texts []string
	if err := s.Eval(ctx, expr, &texts); err != nil {
		return nil
	}
	return texts
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := s.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return err == nil
}

func (s *Session) ScrollIntoView(ctx context.Context, selector string, n int) error {
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelectorAll(%s)[%d];
		if (el) el.scrollIntoView({block: 'center', behavior: 'instant'});
		return true;
	})()`, strconv.Quote(selector), n)
	var ok bool
	return s.Eval(ctx, expr, &ok)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.Click(opCtx, selector)
}

func (s *Session) ClickNth(ctx context.Context, selector string, n int) error {
	geo, err := s.nthGeometry(ctx, selector, n)
	if err != nil {
		return err
	}
	if geo == nil {
		s.logger.Debug("nth click target has no geometry, skipping",
			zap.String("selector", selector), zap.Int("n", n))
		return nil
	}
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.ClickBox(opCtx, *geo)
}

func (s *Session) ClickCenter(ctx context.Context) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.ClickAt(opCtx, humanoid.Vector2D{
		X: float64(s.profile.Device.ViewportWidth) / 2.0,
		Y: float64(s.profile.Device.ViewportHeight) / 2.0,
	})
}

func (s *Session) RageClick(ctx context.Context, selector string, count int) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.RageClick(opCtx, selector, count)
}

func (s *Session) TypeInto(ctx context.Context, selector, text string) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.Type(opCtx, selector, text)
}

func (s *Session) PressEnter(ctx context.Context) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.PressEnter(opCtx)
}

func (s *Session) ScrollBy(ctx context.Context, dy float64) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.ScrollBy(opCtx, dy)
}

func (s *Session) Jitter(ctx context.Context) error {
	opCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return s.human.Jitter(opCtx)
}

func (s *Session) Eval(ctx context.Context, expr string, out any) error {
	return s.run(ctx, chromedp.Evaluate(expr, out))
}

// nthGeometry resolves the bounding box of the nth element matching the
// selector, or nil when it does not exist or is not rendered.
func (s *Session) nthGeometry(ctx context.Context, selector string, n int) (*humanoid.ElementGeometry, error) {
	var nodes []*cdp.Node
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.ElementTimeout)
	defer cancel()

	err := s.run(waitCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if n < 0 || n >= len(nodes) {
		return nil, nil
	}

	var box *dom.BoxModel
	err = s.run(waitCtx, chromedp.ActionFunc(func(c context.Context) error {
		var inner error
		box, inner = dom.GetBoxModel().WithNodeID(nodes[n].NodeID).Do(c)
		return inner
	}))
	if err != nil || box == nil || len(box.Content) < 8 {
		return nil, nil
	}
	return &humanoid.ElementGeometry{
		X:      box.Content[0],
		Y:      box.Content[1],
		Width:  float64(box.Width),
		Height: float64(box.Height),
	}, nil
}
