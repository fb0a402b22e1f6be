package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
)

var (
	drawerChains = types.Chain{
		types.CSS("div.ant-drawer.ant-drawer-open .ant-drawer-body"),
		types.CSS("div.ant-drawer:not(.ant-drawer-hidden)"),
		types.XPath("//div[contains(@class,'ant-drawer')][.//img]"),
	}
	drawerOpenButton = types.Chain{
		types.XPath("//button[.//span[contains(text(),'일괄 편집')]]"),
		types.XPath("//button[contains(.,'일괄편집')]"),
	}
	editAffordance = "편집하기"
	saveButton     = types.Chain{
		types.XPath("//div[contains(@class,'ant-drawer')]//button[.//span[contains(text(),'저장')]]"),
		types.XPath("//button[contains(.,'저장')]"),
	}
	translateButton = types.Chain{
		types.XPath("//button[contains(.,'원클릭 이미지 번역')]"),
		types.CSS("button[class*='translate']"),
	}
	editorCanvas = types.Chain{
		types.CSS("div[class*='editor'] canvas"),
		types.CSS("canvas"),
	}
)

// DrawerGallery is the chromedp-backed Gallery over the bulk-edit drawer.
type DrawerGallery struct {
	s      *driver.Session
	cfg    *types.Config
	logger types.Logger
}

// NewDrawerGallery binds a gallery to the session.
func NewDrawerGallery(s *driver.Session) *DrawerGallery {
	return &DrawerGallery{s: s, cfg: s.Config(), logger: s.Logger()}
}

// OpenDrawer opens the bulk-edit drawer and waits for one of its shapes.
func (g *DrawerGallery) OpenDrawer(ctx context.Context) error {
	g.s.DismissOverlays(ctx)
	if err := g.s.Click(ctx, drawerOpenButton, g.cfg.Timeout); err != nil {
		return err
	}
	if err := g.s.WaitVisible(ctx, drawerChains, 15*time.Second); err != nil {
		return fmt.Errorf("drawer did not open: %w", types.ErrModalAbsent)
	}
	g.s.Sleep(ctx, g.cfg.AnimationDelay)
	return nil
}

// Cards enumerates the drawer's image cards, keeping only source-CDN images
// and deduplicating virtualization shadows.
func (g *DrawerGallery) Cards(ctx context.Context) ([]Card, error) {
	script := `(function(){
		var out = [];
		var imgs = document.querySelectorAll('div.ant-drawer img');
		for (var i = 0; i < imgs.length; i++) {
			out.push({src: imgs[i].src || ''});
		}
		return JSON.stringify(out);
	})()`
	var raw string
	if err := g.s.Evaluate(ctx, script, &raw); err != nil {
		return nil, fmt.Errorf("card scan failed: %w", err)
	}
	var scanned []struct {
		Src string `json:"src"`
	}
	if err := json.Unmarshal([]byte(raw), &scanned); err != nil {
		return nil, fmt.Errorf("card scan result malformed: %w", err)
	}
	cards := make([]Card, 0, len(scanned))
	for _, s := range scanned {
		cards = append(cards, Card{Src: s.Src})
	}
	filtered := FilterCards(cards, g.cfg.SourceCDN)
	g.logger.Infof("Drawer holds %d image card(s), %d from source CDN", len(cards), len(filtered))
	return filtered, nil
}

// OpenEditor clicks the Nth source-CDN card's 편집하기 affordance.
func (g *DrawerGallery) OpenEditor(ctx context.Context, position int) error {
	chain := types.Chain{
		types.XPath(fmt.Sprintf(
			"(//div[contains(@class,'ant-drawer')]//div[.//img[starts-with(@src,'%s')]]//span[contains(text(),'%s')])[%d]",
			g.cfg.SourceCDN, editAffordance, position)),
		types.XPath(fmt.Sprintf(
			"(//div[contains(@class,'ant-drawer')]//span[contains(text(),'%s')])[%d]", editAffordance, position)),
	}
	if err := g.s.Click(ctx, chain, g.cfg.Timeout); err != nil {
		return fmt.Errorf("편집하기 for card %d failed: %w", position, err)
	}
	if err := g.s.WaitVisible(ctx, editorCanvas, 15*time.Second); err != nil {
		return fmt.Errorf("editor canvas missing: %w", err)
	}
	g.s.Sleep(ctx, g.cfg.AnimationDelay)
	return nil
}

// Advance moves the editor to the next gallery image.
func (g *DrawerGallery) Advance(ctx context.Context) error {
	return g.s.SendKeys(ctx, kb.Tab)
}

// GoTo navigates the editor to a position, preferring a DOM click on the
// card's thumbnail strip and falling back to Home plus repeated Tab.
func (g *DrawerGallery) GoTo(ctx context.Context, position int) error {
	thumb := types.Chain{
		types.XPath(fmt.Sprintf("(//div[contains(@class,'editor')]//div[contains(@class,'thumb')])[%d]", position)),
		types.XPath(fmt.Sprintf("(//div[contains(@class,'editor')]//img)[%d]", position)),
	}
	if err := g.s.Click(ctx, thumb, 3*time.Second); err == nil {
		return nil
	}
	g.logger.Debugf("Thumbnail click for %d failed, using Home+Tab navigation", position)
	if err := g.s.SendKeys(ctx, kb.Home); err != nil {
		return err
	}
	for i := 1; i < position; i++ {
		if err := g.s.SendKeys(ctx, kb.Tab); err != nil {
			return err
		}
		g.s.Sleep(ctx, g.cfg.PollInterval)
	}
	return nil
}

// CurrentImage reads attributes of the shown image and snapshots the canvas.
func (g *DrawerGallery) CurrentImage(ctx context.Context, position int) (ImageInfo, error) {
	info := ImageInfo{Position: position}

	script := `(function(){
		var img = document.querySelector('div[class*="editor"] img[class*="current"]') ||
			document.querySelector('div[class*="editor"] img');
		if (!img) return JSON.stringify({});
		var data = [];
		for (var i = 0; i < img.attributes.length; i++) {
			var a = img.attributes[i];
			if (a.name.indexOf('data-') === 0) data.push(a.value);
		}
		return JSON.stringify({
			src: img.src || '', alt: img.alt || '', title: img.title || '',
			data: data.join(' '), w: img.naturalWidth, h: img.naturalHeight
		});
	})()`
	var raw string
	if err := g.s.Evaluate(ctx, script, &raw); err != nil {
		return info, fmt.Errorf("image attribute read failed: %w", err)
	}
	var attrs struct {
		Src   string `json:"src"`
		Alt   string `json:"alt"`
		Title string `json:"title"`
		Data  string `json:"data"`
		W     int    `json:"w"`
		H     int    `json:"h"`
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return info, fmt.Errorf("image attributes malformed: %w", err)
	}
	info.Src = attrs.Src
	info.Alt = attrs.Alt
	info.Title = attrs.Title
	info.DataText = attrs.Data
	info.Width = attrs.W
	info.Height = attrs.H

	found, err := g.s.Find(ctx, editorCanvas, 5*time.Second)
	if err == nil {
		var buf []byte
		serr := g.s.Run(ctx, chromedp.Screenshot(found.Selector.Query, &buf, chromedp.NodeVisible))
		if serr != nil {
			g.logger.Debugf("Canvas snapshot failed: %v", serr)
		} else {
			info.PNG = buf
		}
	}
	return info, nil
}

// TriggerTranslate sends T and waits for the one-click-translation button's
// loading class to settle idle on two consecutive polls.
func (g *DrawerGallery) TriggerTranslate(ctx context.Context) error {
	if err := g.s.SendKeys(ctx, "T"); err != nil {
		return err
	}
	poll := func(ctx context.Context) (ButtonState, error) {
		var loading bool
		script := `(function(){
			var btn = document.querySelector('button[class*="translate"]') ||
				document.querySelector('button[class*="one-click"]');
			if (!btn) return false;
			return btn.className.indexOf('loading') >= 0 || btn.disabled === true;
		})()`
		if err := g.s.Evaluate(ctx, script, &loading); err != nil {
			return StateUnknown, err
		}
		if loading {
			return StateLoading, nil
		}
		return StateIdle, nil
	}
	return AwaitIdle(ctx, poll, g.cfg.PollInterval, 500*time.Millisecond, g.cfg.TranslateAwait)
}

// Save commits the drawer's edits once.
func (g *DrawerGallery) Save(ctx context.Context) error {
	if err := g.s.Click(ctx, saveButton, g.cfg.Timeout); err != nil {
		return err
	}
	g.s.Sleep(ctx, g.cfg.AnimationDelay)
	return nil
}

// CloseEditor closes the editor with Esc. The editor must be closed before
// the drawer is closed.
func (g *DrawerGallery) CloseEditor(ctx context.Context) error {
	if err := g.s.SendKeys(ctx, kb.Escape); err != nil {
		return err
	}
	return g.s.WaitGone(ctx, editorCanvas, 10*time.Second)
}

// CloseDrawer dismisses the drawer.
func (g *DrawerGallery) CloseDrawer(ctx context.Context) error {
	closeBtn := types.Chain{
		types.CSS("div.ant-drawer button.ant-drawer-close"),
		types.XPath("//div[contains(@class,'ant-drawer')]//button[.//span[text()='닫기']]"),
	}
	if err := g.s.Click(ctx, closeBtn, 5*time.Second); err != nil {
		// Esc as last resort.
		if kerr := g.s.SendKeys(ctx, kb.Escape); kerr != nil {
			return err
		}
	}
	return g.s.WaitGone(ctx, drawerChains, 10*time.Second)
}
