package controls

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

var (
	totalCountChain = types.Chain{
		types.XPath("//span[contains(text(),'총') and contains(text(),'개 상품')]"),
		types.CSS("span.product-total-count"),
	}
	selectAllChain = types.Chain{
		types.CSS("thead .ant-checkbox-input"),
		types.CSS("label.ant-checkbox-wrapper input[type='checkbox']"),
	}
	selectAllLabelChain = types.Chain{
		types.XPath("//thead//label[contains(@class,'ant-checkbox-wrapper')]"),
	}
	statusFilterChain = types.Chain{
		types.CSS("div.ant-select[data-test='status-filter'] .ant-select-selector"),
		types.XPath("//div[contains(@class,'ant-select')][.//span[@title]][1]"),
	}
	pageSizeTriggerChain = types.Chain{
		types.CSS("div.ant-pagination-options .ant-select-selector"),
		types.XPath("//li[contains(@class,'ant-pagination-options')]//div[contains(@class,'ant-select-selector')]"),
	}
)

var totalCountRe = regexp.MustCompile(`총\s*([\d,]+)\s*개\s*상품`)

// ParseTotalCount extracts N from a "총 N개 상품" label, with thousands
// separators removed. Returns -1 on parse failure, which callers treat as
// "unknown, proceed".
func ParseTotalCount(text string) int {
	m := totalCountRe.FindStringSubmatch(text)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return -1
	}
	return n
}

// FormatTotalCount renders the label the way the console does.
func FormatTotalCount(n int) string {
	return fmt.Sprintf("총 %s개 상품", groupDigits(n))
}

func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}

// TotalCount reads the product list's total count span.
func (c *Controller) TotalCount(ctx context.Context) int {
	text, err := c.s.Text(ctx, totalCountChain, 5*time.Second)
	if err != nil {
		c.logger.Debugf("Total count span not found: %v", err)
		return -1
	}
	n := ParseTotalCount(text)
	if n < 0 {
		c.logger.Warnf("Total count parse failed for %q", text)
	}
	return n
}

// WaitCountChange polls the total count until it differs from prev. This is
// the synchronization barrier for "filter has taken effect".
func (c *Controller) WaitCountChange(ctx context.Context, prev int, timeout time.Duration) error {
	return c.s.WaitUntil(ctx, "product count change", timeout, c.s.Config().PollInterval,
		func(ctx context.Context) (bool, error) {
			return c.TotalCount(ctx) != prev, nil
		})
}

// SelectAll flips the current page/group select-all checkbox, trying four
// strategies until one changes the checkbox state.
func (c *Controller) SelectAll(ctx context.Context) error {
	checked := func() bool {
		var v bool
		script := `(function(){
			var el = document.querySelector("thead .ant-checkbox-input") ||
				document.querySelector("label.ant-checkbox-wrapper input[type='checkbox']");
			return el ? el.checked : false;
		})()`
		if err := c.s.Evaluate(ctx, script, &v); err != nil {
			return false
		}
		return v
	}
	if checked() {
		return nil
	}

	strategies := []struct {
		name string
		do   func() error
	}{
		{"native click", func() error { return c.s.Click(ctx, selectAllChain, 3*time.Second) }},
		{"scroll and click", func() error {
			if err := c.s.ScrollIntoView(ctx, selectAllChain, 3*time.Second); err != nil {
				return err
			}
			return c.s.Click(ctx, selectAllChain, 3*time.Second)
		}},
		{"script click on input", func() error {
			var ok bool
			script := `(function(){
				var el = document.querySelector("thead .ant-checkbox-input");
				if (!el) return false;
				el.click();
				return true;
			})()`
			if err := c.s.Evaluate(ctx, script, &ok); err != nil {
				return err
			}
			if !ok {
				return types.ErrSelectorExhausted
			}
			return nil
		}},
		{"label click", func() error { return c.s.Click(ctx, selectAllLabelChain, 3*time.Second) }},
	}

	for _, st := range strategies {
		if err := st.do(); err != nil {
			c.logger.Debugf("Select-all strategy %q failed: %v", st.name, err)
			continue
		}
		c.s.Sleep(ctx, c.s.Config().PollInterval)
		if checked() {
			c.logger.Debugf("Select-all succeeded via %s", st.name)
			return nil
		}
	}
	return fmt.Errorf("no select-all strategy flipped the checkbox: %w", types.ErrClickIntercepted)
}

// SetPageSize selects the rows-per-page option, e.g. "50개씩 보기".
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	option := fmt.Sprintf("%d개씩 보기", size)
	if err := c.SelectOption(ctx, pageSizeTriggerChain, option); err != nil {
		return fmt.Errorf("failed to set page size %d: %w", size, err)
	}
	return nil
}

// SelectStatusFilter picks a product status in the filter dropdown
// (미업로드 / 판매중 / 품절).
func (c *Controller) SelectStatusFilter(ctx context.Context, status string) error {
	prev := c.TotalCount(ctx)
	if err := c.SelectOption(ctx, statusFilterChain, status); err != nil {
		return err
	}
	if err := c.WaitCountChange(ctx, prev, 8*time.Second); err != nil {
		// The filter may legitimately not change the count.
		c.logger.Debugf("Count unchanged after status filter %q: %v", status, err)
	}
	return nil
}

// SelectMarketCheckbox checks a marketplace filter checkbox by its visible
// label (e.g. "11번가").
func (c *Controller) SelectMarketCheckbox(ctx context.Context, label string) error {
	chain := types.Chain{
		types.XPath(fmt.Sprintf(
			"//label[contains(@class,'ant-checkbox-wrapper')][.//span[normalize-space(text())=%s]]",
			xpathLiteral(label))),
		types.XPath(fmt.Sprintf("//label[.//span[contains(text(),%s)]]", xpathLiteral(label))),
	}
	if err := c.s.Click(ctx, chain, c.s.Config().Timeout); err != nil {
		return fmt.Errorf("failed to check marketplace %q: %w", label, err)
	}
	return nil
}
