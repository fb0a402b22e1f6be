package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Window is a chromedp context bound to one browser window/tab, handed out
// by the custodian for flows that must work in a popup (Smartstore seller
// console, Cafe24 import).
type Window struct {
	Ctx    context.Context
	cancel context.CancelFunc
	ID     target.ID
	URL    string
}

// Close releases the window context. The target itself is closed by
// CloseStrayWindows once the custodian regains control.
func (w *Window) Close() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (s *Session) pageTargets(ctx context.Context) ([]*target.Info, error) {
	infos, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	var pages []*target.Info
	for _, info := range infos {
		if info.Type == "page" {
			pages = append(pages, info)
		}
	}
	return pages, nil
}

// mainTarget identifies the main window: the first page target whose URL is
// prefixed by the application domain, or the first page target if none is.
func (s *Session) mainTarget(ctx context.Context) (*target.Info, error) {
	pages, err := s.pageTargets(ctx)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page targets open")
	}
	for _, info := range pages {
		if strings.HasPrefix(info.URL, s.cfg.AppURL) {
			return info, nil
		}
	}
	return pages[0], nil
}

// WaitWindow waits for a window whose URL starts with prefix, as opened by
// marketplace flows, and returns a context bound to it.
func (s *Session) WaitWindow(ctx context.Context, prefix string, timeout time.Duration) (*Window, error) {
	var found *target.Info
	err := s.WaitUntil(ctx, fmt.Sprintf("window %s", prefix), timeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		pages, err := s.pageTargets(ctx)
		if err != nil {
			return false, err
		}
		for _, info := range pages {
			if strings.HasPrefix(info.URL, prefix) {
				found = info
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	winCtx, cancel := chromedp.NewContext(s.browserCtx, chromedp.WithTargetID(found.TargetID))
	return &Window{Ctx: winCtx, cancel: cancel, ID: found.TargetID, URL: found.URL}, nil
}

// CloseStrayWindows closes every page target except the main one and
// restores focus to it. Run after any operation that may have opened a new
// window.
func (s *Session) CloseStrayWindows(ctx context.Context) error {
	main, err := s.mainTarget(ctx)
	if err != nil {
		return err
	}
	pages, err := s.pageTargets(ctx)
	if err != nil {
		return err
	}
	for _, info := range pages {
		if info.TargetID == main.TargetID {
			continue
		}
		id := info.TargetID
		s.logger.Debugf("Closing stray window %s (%s)", id, info.URL)
		err := s.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return target.CloseTarget(id).Do(ctx)
		}))
		if err != nil {
			s.logger.Warnf("Failed to close stray window %s: %v", id, err)
		}
	}
	return s.FocusMain(ctx)
}

// FocusMain re-activates the main window.
func (s *Session) FocusMain(ctx context.Context) error {
	main, err := s.mainTarget(ctx)
	if err != nil {
		return err
	}
	id := main.TargetID
	err = s.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.ActivateTarget(id).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to focus main window: %w", err)
	}
	return nil
}

// RunInWindow executes actions against a specific window under the default
// timeout, holding the session lock like Run does.
func (s *Session) RunInWindow(ctx context.Context, w *Window, actions ...chromedp.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(w.Ctx, s.cfg.Timeout)
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

// WindowSession wraps a popup window in a Session so the driver primitives
// (Find, Click, Type, WaitUntil) work against it unchanged.
func (s *Session) WindowSession(w *Window) *Session {
	return &Session{
		cfg:           s.cfg,
		logger:        s.logger,
		browserCtx:    w.Ctx,
		browserCancel: func() {},
		allocCancel:   func() {},
	}
}
