package controls

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Controller drives the console's dropdowns and product tables.
type Controller struct {
	s      *driver.Session
	logger types.Logger
}

// New creates a controller bound to a session.
func New(s *driver.Session) *Controller {
	return &Controller{s: s, logger: s.Logger()}
}

// Virtualized option list shapes. The console renders dropdown options in an
// ant-design virtual list, so only a window of options exists in the DOM.
var (
	dropdownListChain = types.Chain{
		types.CSS("div.ant-select-dropdown:not(.ant-select-dropdown-hidden) .rc-virtual-list-holder"),
		types.CSS("div.ant-select-dropdown:not(.ant-select-dropdown-hidden)"),
	}
	dropdownOptionsChain = types.Chain{
		types.CSS("div.ant-select-dropdown:not(.ant-select-dropdown-hidden) div.ant-select-item-option"),
	}
)

const maxDropdownScrolls = 30

// visibleOptions snapshots the open dropdown and returns the option texts
// currently rendered, in DOM order.
func (c *Controller) visibleOptions(ctx context.Context) ([]string, error) {
	html, err := c.s.OuterHTML(ctx, dropdownListChain, 3*time.Second)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dropdown snapshot: %w", err)
	}
	var options []string
	doc.Find("div.ant-select-item-option .ant-select-item-option-content").Each(func(i int, sel *goquery.Selection) {
		options = append(options, strings.TrimSpace(sel.Text()))
	})
	return options, nil
}

// scrollDropdown advances the open dropdown by one viewport. Three scroll
// strategies are attempted; the first that moves the list wins.
func (c *Controller) scrollDropdown(ctx context.Context) error {
	scripts := []string{
		// by clientHeight
		`(function(){
			var el = document.querySelector('div.ant-select-dropdown:not(.ant-select-dropdown-hidden) .rc-virtual-list-holder');
			if (!el) return false;
			var before = el.scrollTop;
			el.scrollTop = before + el.clientHeight;
			return el.scrollTop !== before;
		})()`,
		// by fixed delta
		`(function(){
			var el = document.querySelector('div.ant-select-dropdown:not(.ant-select-dropdown-hidden) .rc-virtual-list-holder');
			if (!el) return false;
			var before = el.scrollTop;
			el.scrollTop = before + 200;
			return el.scrollTop !== before;
		})()`,
		// last option into view
		`(function(){
			var opts = document.querySelectorAll('div.ant-select-dropdown:not(.ant-select-dropdown-hidden) div.ant-select-item-option');
			if (!opts.length) return false;
			opts[opts.length-1].scrollIntoView({block:'end'});
			return true;
		})()`,
	}
	for i, script := range scripts {
		var moved bool
		if err := c.s.Evaluate(ctx, script, &moved); err != nil {
			c.logger.Debugf("Dropdown scroll strategy %d failed: %v", i+1, err)
			continue
		}
		if moved {
			return nil
		}
	}
	return fmt.Errorf("no dropdown scroll strategy moved the list")
}

// windowStalled reports whether a scroll left the virtualized window in
// place: the rendered option texts are identical to the previous snapshot.
// The window keeps a constant size while scrolling, so its size says
// nothing about progress; only unchanged contents mean the end of the list.
func windowStalled(prev, cur []string) bool {
	if prev == nil || len(prev) != len(cur) {
		return false
	}
	for i := range cur {
		if prev[i] != cur[i] {
			return false
		}
	}
	return true
}

// SelectOption opens the dropdown behind trigger and selects the option with
// exactly the given text, scrolling the virtualized list as needed. The
// search is idempotent: the same target either always resolves to the same
// option or always fails with ErrSelectorExhausted.
func (c *Controller) SelectOption(ctx context.Context, trigger types.Chain, text string) error {
	c.s.DismissOverlays(ctx)
	if err := c.s.Click(ctx, trigger, c.s.Config().Timeout); err != nil {
		return fmt.Errorf("failed to open dropdown: %w", err)
	}
	c.s.Sleep(ctx, c.s.Config().AnimationDelay)

	var prev []string
	for i := 0; i < maxDropdownScrolls; i++ {
		options, err := c.visibleOptions(ctx)
		if err != nil {
			return err
		}
		for _, opt := range options {
			if opt == text {
				return c.clickOption(ctx, text)
			}
		}
		if windowStalled(prev, options) {
			// The last scroll did not move the window: end of list.
			break
		}
		prev = options
		if err := c.scrollDropdown(ctx); err != nil {
			c.logger.Warnf("Dropdown scroll stalled after %d iterations: %v", i+1, err)
			break
		}
		c.s.Sleep(ctx, c.s.Config().PollInterval)
	}
	return fmt.Errorf("option %q not found in dropdown: %w", text, types.ErrSelectorExhausted)
}

func (c *Controller) clickOption(ctx context.Context, text string) error {
	chain := types.Chain{
		types.XPath(fmt.Sprintf(
			"//div[contains(@class,'ant-select-dropdown') and not(contains(@class,'ant-select-dropdown-hidden'))]//div[contains(@class,'ant-select-item-option-content') and normalize-space(text())=%s]",
			xpathLiteral(text))),
	}
	if err := c.s.Click(ctx, chain, 3*time.Second); err != nil {
		return fmt.Errorf("failed to click option %q: %w", text, err)
	}
	return nil
}

// xpathLiteral quotes a string for embedding in an XPath expression, using
// concat() when the text itself contains quotes.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `,"'",`) + ")"
}
