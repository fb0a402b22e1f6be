package driver

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// isNotClickable classifies errors that warrant click-strategy escalation.
func isNotClickable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, probe := range []string{
		"not clickable",
		"not visible",
		"intercept",
		"could not compute box model",
		"context deadline exceeded",
	} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}

func jsClickScript(sel types.Selector) string {
	if sel.Kind == types.SelXPath {
		return fmt.Sprintf(`(function(){
			var r = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
			var el = r.singleNodeValue;
			if (!el) return false;
			el.click();
			return true;
		})()`, sel.Query)
	}
	return fmt.Sprintf(`(function(){
		var el = document.querySelector(%q);
		if (!el) return false;
		el.click();
		return true;
	})()`, sel.Query)
}

// Click finds the chain target and clicks it with escalating strategies:
// direct click, scroll-into-view then click, then an in-page script click.
func (s *Session) Click(ctx context.Context, chain types.Chain, timeout time.Duration) error {
	found, err := s.Find(ctx, chain, timeout)
	if err != nil {
		return err
	}
	sel := found.Selector
	by := byOption(sel)

	// Strategy (a): direct click.
	err = s.RunWithTimeout(ctx, 3*time.Second, chromedp.Click(sel.Query, by, chromedp.NodeVisible))
	if err == nil {
		return nil
	}
	if !isNotClickable(err) {
		return fmt.Errorf("click on %q failed: %w", sel.Query, err)
	}
	s.logger.Debugf("Direct click on %q failed (%v), escalating", sel.Query, err)

	// Strategy (b): scroll into view, click again.
	err = s.RunWithTimeout(ctx, 3*time.Second,
		chromedp.ScrollIntoView(sel.Query, by),
		chromedp.Click(sel.Query, by),
	)
	if err == nil {
		return nil
	}
	s.logger.Debugf("Scroll+click on %q failed (%v), escalating to script", sel.Query, err)

	// Strategy (c): in-page script click.
	var clicked bool
	if err := s.Evaluate(ctx, jsClickScript(sel), &clicked); err != nil {
		return fmt.Errorf("script click on %q failed: %w", sel.Query, err)
	}
	if !clicked {
		return fmt.Errorf("script click found no element for %q: %w", sel.Query, types.ErrClickIntercepted)
	}
	return nil
}

// ScrollIntoView scrolls the first chain match into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, chain types.Chain, timeout time.Duration) error {
	found, err := s.Find(ctx, chain, timeout)
	if err != nil {
		return err
	}
	return s.Run(ctx, chromedp.ScrollIntoView(found.Selector.Query, byOption(found.Selector)))
}

// Type focuses the chain target, optionally clears it, then types the text
// with a small per-key delay so credential inputs see key events the way the
// console's validation handlers expect.
func (s *Session) Type(ctx context.Context, chain types.Chain, text string, clearFirst bool) error {
	found, err := s.Find(ctx, chain, s.cfg.Timeout)
	if err != nil {
		return err
	}
	sel := found.Selector
	by := byOption(sel)

	actions := []chromedp.Action{chromedp.Focus(sel.Query, by)}
	if clearFirst {
		actions = append(actions,
			chromedp.SetValue(sel.Query, "", by),
		)
	}
	if err := s.Run(ctx, actions...); err != nil {
		return fmt.Errorf("failed to focus %q: %w", sel.Query, err)
	}

	for _, r := range text {
		if err := s.Run(ctx, chromedp.KeyEvent(string(r))); err != nil {
			return fmt.Errorf("failed typing into %q: %w", sel.Query, err)
		}
		s.Sleep(ctx, time.Duration(20+rand.Intn(100))*time.Millisecond)
	}

	// Tab out so the input's blur handlers fire.
	return s.SendKeys(ctx, "\t")
}

// SendKeys dispatches raw key events to the focused element.
func (s *Session) SendKeys(ctx context.Context, keys string) error {
	if err := s.Run(ctx, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("failed to send keys: %w", err)
	}
	return nil
}
