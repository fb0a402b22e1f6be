package modal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Shape is one overlay form the console uses. Drawers, modals and confirm
// dialogs have distinct DOM shapes and must each be waited for explicitly.
type Shape int

const (
	ShapeDrawer Shape = iota
	ShapeModal
	ShapeConfirm
)

func (s Shape) String() string {
	switch s {
	case ShapeDrawer:
		return "drawer"
	case ShapeModal:
		return "modal"
	default:
		return "confirm"
	}
}

var shapeChains = map[Shape]types.Chain{
	ShapeDrawer: {
		types.CSS("div.ant-drawer.ant-drawer-open .ant-drawer-content"),
		types.CSS("div.ant-drawer:not(.ant-drawer-hidden)"),
	},
	ShapeModal: {
		types.CSS("div.ant-modal-wrap:not([style*='display: none']) div.ant-modal"),
		types.CSS("div.ant-modal"),
	},
	ShapeConfirm: {
		types.CSS("div.ant-modal-confirm"),
		types.CSS("div.ant-popconfirm:not(.ant-popover-hidden)"),
	},
}

// Coordinator waits for, reads and dismisses modals for the orchestrator
// and the adapters.
type Coordinator struct {
	s      *driver.Session
	logger types.Logger
}

// New creates a coordinator bound to a session.
func New(s *driver.Session) *Coordinator {
	return &Coordinator{s: s, logger: s.Logger()}
}

// WaitAny waits for any of the given shapes to appear and returns the first
// one found.
func (c *Coordinator) WaitAny(ctx context.Context, timeout time.Duration, shapes ...Shape) (Shape, error) {
	deadline := time.Now().Add(timeout)
	for {
		for _, shape := range shapes {
			if c.s.Exists(ctx, shapeChains[shape]) {
				c.logger.Debugf("Overlay appeared as %s", shape)
				return shape, nil
			}
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("no overlay appeared within %v: %w", timeout, types.ErrModalAbsent)
		}
		select {
		case <-time.After(c.s.Config().PollInterval):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// AlertText extracts any embedded error/warning alert inside the open
// overlay, read before choosing a confirmation action.
func (c *Coordinator) AlertText(ctx context.Context) string {
	chain := types.Chain{
		types.CSS("div.ant-modal .ant-alert-message"),
		types.CSS("div.ant-drawer .ant-alert-message"),
		types.CSS("div.ant-modal .ant-alert"),
	}
	text, err := c.s.Text(ctx, chain, 2*time.Second)
	if err != nil {
		return ""
	}
	return text
}

// ClickPrimary presses the overlay's primary action button.
func (c *Coordinator) ClickPrimary(ctx context.Context) error {
	chain := types.Chain{
		types.CSS("div.ant-modal .ant-modal-footer button.ant-btn-primary"),
		types.CSS("div.ant-drawer button.ant-btn-primary"),
		types.XPath("//div[contains(@class,'ant-modal-confirm-btns')]//button[contains(@class,'ant-btn-primary')]"),
	}
	return c.s.Click(ctx, chain, c.s.Config().Timeout)
}

// ClickSecondary presses the overlay's cancel/secondary button.
func (c *Coordinator) ClickSecondary(ctx context.Context) error {
	chain := types.Chain{
		types.CSS("div.ant-modal .ant-modal-footer button:not(.ant-btn-primary)"),
		types.CSS("div.ant-drawer button:not(.ant-btn-primary)"),
	}
	return c.s.Click(ctx, chain, c.s.Config().Timeout)
}

// ConfirmDanger confirms a dangerous-action dialog (API disconnection,
// bulk delete). The embedded alert text, if any, is logged first.
func (c *Coordinator) ConfirmDanger(ctx context.Context) error {
	if alert := c.AlertText(ctx); alert != "" {
		c.logger.Warnf("Confirmation dialog carries alert: %s", alert)
	}
	chain := types.Chain{
		types.CSS("div.ant-modal button.ant-btn-dangerous"),
		types.CSS("div.ant-modal-confirm button.ant-btn-primary"),
		types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[text()='확인']]"),
	}
	if err := c.s.Click(ctx, chain, c.s.Config().Timeout); err != nil {
		return fmt.Errorf("failed to confirm dialog: %w", err)
	}
	return c.WaitDismissed(ctx, ShapeConfirm, 10*time.Second)
}

// WaitDismissed confirms the shape is gone.
func (c *Coordinator) WaitDismissed(ctx context.Context, shape Shape, timeout time.Duration) error {
	if err := c.s.WaitGone(ctx, shapeChains[shape], timeout); err != nil {
		return fmt.Errorf("%s still present: %w", shape, err)
	}
	return nil
}

// Gone reports whether no overlay of any shape is currently detectable.
func (c *Coordinator) Gone(ctx context.Context) bool {
	for _, chain := range shapeChains {
		if c.s.Exists(ctx, chain) {
			return false
		}
	}
	return true
}

// UploadOutcome is the result of the upload progress watch.
type UploadOutcome int

const (
	UploadCompleted UploadOutcome = iota
	UploadForcedClose
)

// IsUploadComplete classifies progress modal content: either the literal
// completion substring or a progress bar at 100%.
func IsUploadComplete(bodyText string, progressWidth string) bool {
	if strings.Contains(bodyText, "모든 업로드가") {
		return true
	}
	w := strings.TrimSpace(progressWidth)
	return w == "100%" || strings.HasPrefix(w, "100.")
}

// WaitUploadComplete polls the upload progress modal until completion or
// timeout. On timeout it engages the forced-close path so the round loop
// can recover.
func (c *Coordinator) WaitUploadComplete(ctx context.Context, timeout time.Duration) (UploadOutcome, error) {
	err := c.s.WaitUntil(ctx, "upload completion", timeout, 3*time.Second, func(ctx context.Context) (bool, error) {
		body, err := c.s.Text(ctx, types.Chain{
			types.CSS("div.ant-modal .ant-modal-body"),
		}, 2*time.Second)
		if err != nil {
			return false, err
		}
		var width string
		script := `(function(){
			var bar = document.querySelector('div.ant-modal .ant-progress-bg');
			return bar ? bar.style.width : '';
		})()`
		if err := c.s.Evaluate(ctx, script, &width); err != nil {
			width = ""
		}
		return IsUploadComplete(body, width), nil
	})
	if err == nil {
		return UploadCompleted, nil
	}
	c.logger.Warnf("Upload progress stalled, engaging forced close: %v", err)
	if ferr := c.ForceClose(ctx); ferr != nil {
		return UploadForcedClose, fmt.Errorf("forced close after stall failed: %w", ferr)
	}
	return UploadForcedClose, nil
}

// WaitCompletionText polls the open modal body for a literal substring,
// e.g. "삭제 완료".
func (c *Coordinator) WaitCompletionText(ctx context.Context, substr string, timeout time.Duration) error {
	return c.s.WaitUntil(ctx, fmt.Sprintf("completion text %q", substr), timeout, c.s.Config().PollInterval,
		func(ctx context.Context) (bool, error) {
			body, err := c.s.Text(ctx, types.Chain{
				types.CSS("div.ant-modal .ant-modal-body"),
				types.CSS("div.ant-modal"),
			}, 2*time.Second)
			if err != nil {
				return false, err
			}
			return strings.Contains(body, substr), nil
		})
}

// ForceClose clicks the dangerous-styled 닫기 button that abandons a stuck
// progress modal.
func (c *Coordinator) ForceClose(ctx context.Context) error {
	chain := types.Chain{
		types.XPath("//div[contains(@class,'ant-modal')]//button[contains(@class,'ant-btn-dangerous')][.//span[text()='닫기']]"),
		types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[text()='닫기']]"),
		types.CSS("div.ant-modal button.ant-modal-close"),
	}
	if err := c.s.Click(ctx, chain, c.s.Config().Timeout); err != nil {
		return err
	}
	return c.WaitDismissed(ctx, ShapeModal, 10*time.Second)
}

// CloseTop dismisses the topmost overlay via its close button.
func (c *Coordinator) CloseTop(ctx context.Context) error {
	chain := types.Chain{
		types.CSS("div.ant-modal button.ant-modal-close"),
		types.CSS("div.ant-drawer button.ant-drawer-close"),
	}
	return c.s.Click(ctx, chain, c.s.Config().Timeout)
}
