package driver

import (
	"context"
	"time"

	"github.com/chromedp/chromedp/kb"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// overlayShape is one known interfering overlay and how to close it.
type overlayShape struct {
	name    string
	present types.Chain
	close   types.Chain
}

// Known overlays that steal pointer events from the console. The channel
// talk plugin and the consultation popup both re-arm on navigation, so the
// interceptor runs before every tab switch and orchestrator step.
var overlayShapes = []overlayShape{
	{
		name: "consultation popup",
		present: types.Chain{
			types.CSS("div.ant-modal-wrap:not([style*='display: none']) .ant-modal-confirm"),
			types.XPath("//div[contains(@class,'ant-modal')]//span[contains(text(),'상담')]"),
		},
		close: types.Chain{
			types.CSS("div.ant-modal-wrap:not([style*='display: none']) button.ant-modal-close"),
			types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[text()='닫기']]"),
		},
	},
	{
		name: "channel talk popup",
		present: types.Chain{
			types.CSS("#ch-plugin div[class*='fullscreen']"),
			types.CSS("#ch-plugin-script-iframe"),
		},
		close: types.Chain{
			types.CSS("#ch-plugin button[class*='close']"),
			types.CSS("#ch-plugin [data-ch-testid='close-button']"),
		},
	},
}

// Script that strips hidden-but-present modal wrappers and restores body
// overflow. Some console modals leave their wrapper in the DOM with pointer
// events enabled; removing the wrapper is the only reliable release.
const stripHiddenModalScript = `(function(){
	var removed = 0;
	document.querySelectorAll('div.ant-modal-wrap, div.ant-modal-mask').forEach(function(el){
		var style = window.getComputedStyle(el);
		if (style.display === 'none' || el.childElementCount === 0) {
			el.remove();
			removed++;
		}
	});
	document.body.style.overflow = '';
	document.body.classList.remove('ant-scrolling-effect');
	return removed;
})()`

// DismissOverlays runs the modal interceptor: closes known overlays via
// their close affordance, falls back to the escape key, then strips any
// hidden modal wrapper left in the DOM.
func (s *Session) DismissOverlays(ctx context.Context) {
	for _, shape := range overlayShapes {
		if !s.Exists(ctx, shape.present) {
			continue
		}
		s.logger.Infof("Overlay detected: %s, dismissing", shape.name)
		if err := s.Click(ctx, shape.close, 2*time.Second); err != nil {
			s.logger.Debugf("Close affordance failed for %s (%v), sending escape", shape.name, err)
			if err := s.SendKeys(ctx, kb.Escape); err != nil {
				s.logger.Warnf("Escape fallback failed for %s: %v", shape.name, err)
			}
		}
		s.Sleep(ctx, s.cfg.AnimationDelay)
		if s.Exists(ctx, shape.present) {
			s.logger.Warnf("Overlay %s still present after dismissal", shape.name)
		}
	}

	var removed int
	if err := s.Evaluate(ctx, stripHiddenModalScript, &removed); err != nil {
		s.logger.Debugf("Hidden modal sweep failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Infof("Removed %d hidden modal wrapper(s), body overflow restored", removed)
	}
}
