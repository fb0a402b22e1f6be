package controls

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

var (
	groupAssignButtonChain = types.Chain{
		types.XPath("//button[.//span[contains(text(),'그룹 지정')]]"),
		types.XPath("//button[.//span[contains(text(),'그룹')]][not(@disabled)]"),
	}
	groupModalChain = types.Chain{
		types.CSS("div.ant-modal:not([style*='display: none']) .ant-modal-body"),
		types.XPath("//div[contains(@class,'ant-modal')][.//div[contains(text(),'그룹')]]"),
	}
	groupModalConfirmChain = types.Chain{
		types.XPath("//div[contains(@class,'ant-modal-footer')]//button[contains(@class,'ant-btn-primary')]"),
		types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[text()='확인']]"),
	}
)

// AssignToGroup moves the selected rows to the named group via the
// group-assignment modal. The button is disabled until at least one row is
// selected, so callers run SelectAll first.
func (c *Controller) AssignToGroup(ctx context.Context, groupName string) error {
	cfg := c.s.Config()

	if err := c.s.Click(ctx, groupAssignButtonChain, cfg.Timeout); err != nil {
		return fmt.Errorf("failed to open group-assignment modal: %w", err)
	}
	if err := c.s.WaitVisible(ctx, groupModalChain, 10*time.Second); err != nil {
		return fmt.Errorf("group-assignment modal did not appear: %w", types.ErrModalAbsent)
	}
	c.s.Sleep(ctx, cfg.AnimationDelay)

	radio := types.Chain{
		types.XPath(fmt.Sprintf(
			"//div[contains(@class,'ant-modal')]//label[contains(@class,'ant-radio-wrapper')][.//span[normalize-space(text())=%s]]",
			xpathLiteral(groupName))),
		types.XPath(fmt.Sprintf(
			"//div[contains(@class,'ant-modal')]//label[.//span[contains(text(),%s)]]",
			xpathLiteral(groupName))),
	}
	if err := c.s.Click(ctx, radio, cfg.Timeout); err != nil {
		return fmt.Errorf("target group %q not selectable: %w", groupName, err)
	}

	if err := c.s.Click(ctx, groupModalConfirmChain, cfg.Timeout); err != nil {
		return fmt.Errorf("failed to confirm group assignment: %w", err)
	}
	if err := c.s.WaitGone(ctx, groupModalChain, 15*time.Second); err != nil {
		return fmt.Errorf("group-assignment modal did not close: %w", err)
	}
	c.logger.Infof("Selection moved to group %s", groupName)
	return nil
}
