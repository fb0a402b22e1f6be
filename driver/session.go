package driver

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Session owns the one browser used for an account run. All components
// mutate it; the custodian methods in tabs.go are the sole authority on
// window handles.
type Session struct {
	cfg    *types.Config
	logger types.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu sync.Mutex
}

// NewSession spawns a browser. Creation runs in a worker goroutine joined
// with a bounded timeout so a wedged Chrome launch can be abandoned instead
// of hanging the run.
func NewSession(ctx context.Context, cfg *types.Config, logger types.Logger) (*Session, error) {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	type spawnResult struct{ err error }
	done := make(chan spawnResult, 1)
	go func() {
		done <- spawnResult{err: chromedp.Run(browserCtx)}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("failed to start browser: %w", r.err)
		}
	case <-time.After(cfg.BrowserSpawn):
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser spawn did not finish within %v: %w", cfg.BrowserSpawn, types.ErrTimeout)
	}

	s := &Session{
		cfg:           cfg,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
	return s, nil
}

// Close tears the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// Config returns the config the session was built with.
func (s *Session) Config() *types.Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() types.Logger { return s.logger }

// Run executes chromedp actions against the main tab under the default
// timeout. Callers needing a different bound use RunWithTimeout.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	return s.RunWithTimeout(ctx, s.cfg.Timeout, actions...)
}

// RunWithTimeout executes actions with an explicit bound. The session lock
// keeps orchestrator steps sequential against the single browser.
func (s *Session) RunWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads a URL in the main tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL returns the main tab's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// Evaluate runs a script in the page and decodes the result into res.
// Pass nil to discard the result.
func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	if res == nil {
		var discard []byte
		return s.Run(ctx, chromedp.Evaluate(script, &discard))
	}
	return s.Run(ctx, chromedp.Evaluate(script, res))
}

// ResetSession clears cookies and storage, used before a login retry after
// a forced-login bounce.
func (s *Session) ResetSession(ctx context.Context) error {
	err := s.Run(ctx,
		network.ClearBrowserCookies(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var discard []byte
			return chromedp.Evaluate(`try{localStorage.clear();sessionStorage.clear();}catch(e){}; true`, &discard).Do(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to reset session state: %w", err)
	}
	s.logger.Info("Session cookies and storage cleared")
	return nil
}

// Screenshot captures the viewport into the screenshot directory. Failures
// are logged, not propagated: screenshots are diagnostics only.
func (s *Session) Screenshot(ctx context.Context, name string) {
	var buf []byte
	if err := s.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		s.logger.Warnf("Failed to capture screenshot %s: %v", name, err)
		return
	}
	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		s.logger.Warnf("Failed to create screenshot dir: %v", err)
		return
	}
	path := filepath.Join(s.cfg.ScreenshotDir, fmt.Sprintf("%s-%s.png", name, time.Now().Format("150405")))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		s.logger.Warnf("Failed to write screenshot %s: %v", path, err)
		return
	}
	s.logger.Debugf("Screenshot saved: %s", path)
}

// Sleep is the documented animation settle. Bounds at one second so fixed
// sleeps cannot be used to paper over missing wait conditions.
func (s *Session) Sleep(ctx context.Context, d time.Duration) {
	if d > time.Second {
		d = time.Second
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
