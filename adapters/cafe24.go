package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp/kb"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/workbook"
)

const (
	cafe24LoginURL  = "https://eclogin.cafe24.com/Shop/?mode=mp"
	cafe24ImportURL = "https://mp.cafe24.com/mp/product/front/import"
)

// MatchStoreLabel resolves a set of marketplace checkbox labels against the
// target 11st store id by exact "11번가(<id>)" parenthesis match. It also
// returns the label a partial-match fallback would have chosen, so callers
// can warn when the looser rule would have engaged a different store.
func MatchStoreLabel(labels []string, storeID string) (exact string, partial string) {
	want := fmt.Sprintf("11번가(%s)", storeID)
	re := regexp.MustCompile(`11번가\(([^)]+)\)`)
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if m := re.FindStringSubmatch(trimmed); m != nil {
			if m[1] == storeID {
				exact = trimmed
			} else if partial == "" && strings.Contains(m[1], storeID) {
				partial = trimmed
			}
		} else if trimmed == want {
			exact = trimmed
		}
	}
	return exact, partial
}

// Cafe24Flow is the full external-site journey: login with forced-login
// recovery, bulk import of the 11st listings, native-dialog confirmation
// and a verified logout.
type Cafe24Flow struct {
	s      *driver.Session
	logger types.Logger
}

// NewCafe24Flow builds the journey runner.
func NewCafe24Flow(s *driver.Session) *Cafe24Flow {
	return &Cafe24Flow{s: s, logger: s.Logger()}
}

// ImportFromElevenst runs the whole journey for one row.
func (f *Cafe24Flow) ImportFromElevenst(ctx context.Context, row workbook.Row) error {
	if err := f.login(ctx, row); err != nil {
		return err
	}
	defer f.logout(ctx)

	if err := f.s.Navigate(ctx, cafe24ImportURL); err != nil {
		return err
	}

	fullImportTab := types.Chain{
		types.XPath("//a[contains(.,'전체 가져오기')]"),
		types.XPath("//li[contains(.,'전체 가져오기')]"),
	}
	if err := f.s.Click(ctx, fullImportTab, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("전체 가져오기 tab failed: %w", err)
	}
	f.s.Sleep(ctx, f.s.Config().AnimationDelay)

	if err := f.checkTargetStore(ctx, row.ElevenstStoreID); err != nil {
		return err
	}

	directRegister := types.Chain{
		types.XPath("//label[contains(.,'직접 등록')]//span"),
		types.XPath("//label[contains(.,'직접 등록')]"),
		types.XPath("//input[@id='direct_register']"),
	}
	if err := f.s.Click(ctx, directRegister, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("직접 등록 checkbox failed: %w", err)
	}

	submit := types.Chain{
		types.XPath("//button[contains(.,'가져오기')]"),
		types.CSS("button.btnSubmit"),
	}
	if err := f.s.Click(ctx, submit, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("import submit failed: %w", err)
	}

	if err := f.confirmNativeDialog(ctx); err != nil {
		return err
	}
	f.logger.Info("Cafe24 import submitted and confirmed")
	return nil
}

// checkTargetStore ticks exactly the checkbox whose label is
// "11번가(<store id>)". A partial match never engages; it is only warned
// about.
func (f *Cafe24Flow) checkTargetStore(ctx context.Context, storeID string) error {
	listChain := types.Chain{
		types.CSS("div.mall-list"),
		types.CSS("form"),
	}
	html, err := f.s.OuterHTML(ctx, listChain, f.s.Config().Timeout)
	if err != nil {
		return fmt.Errorf("store checkbox list missing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse store list: %w", err)
	}
	var labels []string
	doc.Find("label").Each(func(i int, sel *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(sel.Text()))
	})

	exact, partial := MatchStoreLabel(labels, storeID)
	if exact == "" {
		if partial != "" {
			f.logger.Warnf("Only partial store match %q for id %q, refusing to click", partial, storeID)
		}
		return fmt.Errorf("store 11번가(%s) not among labels: %w", storeID, types.ErrSelectorExhausted)
	}
	if partial != "" && partial != exact {
		f.logger.Warnf("Partial-match fallback would have chosen %q; exact match %q used", partial, exact)
	}

	box := types.Chain{
		types.XPath(fmt.Sprintf("//label[normalize-space(.)='%s']", exact)),
		types.XPath(fmt.Sprintf("//label[contains(.,'%s')]//input", exact)),
	}
	if err := f.s.Click(ctx, box, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("store checkbox click failed: %w", err)
	}
	f.logger.Infof("Store %s checked", exact)
	return nil
}

// dialogStrategy is one rung of the native-dialog confirmation ladder.
type dialogStrategy struct {
	name string
	run  func(ctx context.Context, f *Cafe24Flow) error
}

// The browser-native confirmation intercepts focus after import. Keyboard
// first, then progressively stranger strategies; the ladder terminates on
// the first strategy after which no candidate dialog shape is detectable.
var cafe24DialogLadder = []dialogStrategy{
	{"enter key", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.SendKeys(ctx, kb.Enter)
	}},
	{"space key", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.SendKeys(ctx, " ")
	}},
	{"tab then enter", func(ctx context.Context, f *Cafe24Flow) error {
		if err := f.s.SendKeys(ctx, kb.Tab); err != nil {
			return err
		}
		return f.s.SendKeys(ctx, kb.Enter)
	}},
	{"confirm button click", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Click(ctx, types.Chain{
			types.XPath("//button[contains(.,'확인')]"),
			types.CSS("button.confirm"),
		}, 2*time.Second)
	}},
	{"dialog primary click", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Click(ctx, types.Chain{
			types.CSS("div[role='dialog'] button"),
		}, 2*time.Second)
	}},
	{"iframe confirm click", func(ctx context.Context, f *Cafe24Flow) error {
		var ok bool
		script := `(function(){
			for (var i = 0; i < window.frames.length; i++) {
				try {
					var btn = window.frames[i].document.querySelector('button.confirm, button[type=submit]');
					if (btn) { btn.click(); return true; }
				} catch (e) {}
			}
			return false;
		})()`
		if err := f.s.Evaluate(ctx, script, &ok); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no confirm button in any iframe")
		}
		return nil
	}},
	{"shadow root confirm click", func(ctx context.Context, f *Cafe24Flow) error {
		var ok bool
		script := `(function(){
			var walk = function(root){
				var btn = root.querySelector('button.confirm');
				if (btn) { btn.click(); return true; }
				var all = root.querySelectorAll('*');
				for (var i = 0; i < all.length; i++) {
					if (all[i].shadowRoot && walk(all[i].shadowRoot)) return true;
				}
				return false;
			};
			return walk(document);
		})()`
		if err := f.s.Evaluate(ctx, script, &ok); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no confirm button in any shadow root")
		}
		return nil
	}},
	{"xpath ok-text click", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Click(ctx, types.Chain{
			types.XPath("//*[self::button or self::a][normalize-space(text())='OK' or normalize-space(text())='확인']"),
		}, 2*time.Second)
	}},
	{"js keydown enter dispatch", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Evaluate(ctx, `(function(){
			var ev = new KeyboardEvent('keydown', {key:'Enter', keyCode:13, bubbles:true});
			(document.activeElement || document.body).dispatchEvent(ev);
			return true;
		})()`, nil)
	}},
	{"js click dispatch on focused", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Evaluate(ctx, `(function(){
			var el = document.activeElement;
			if (!el) return false;
			el.dispatchEvent(new MouseEvent('click', {bubbles:true}));
			return true;
		})()`, nil)
	}},
	{"form submit", func(ctx context.Context, f *Cafe24Flow) error {
		return f.s.Evaluate(ctx, `(function(){
			var form = document.querySelector('form');
			if (!form) return false;
			form.submit();
			return true;
		})()`, nil)
	}},
	{"escape then resubmit", func(ctx context.Context, f *Cafe24Flow) error {
		if err := f.s.SendKeys(ctx, kb.Escape); err != nil {
			return err
		}
		return f.s.Click(ctx, types.Chain{
			types.XPath("//button[contains(.,'가져오기')]"),
		}, 2*time.Second)
	}},
}

// candidate shapes a leftover confirmation dialog can take.
var cafe24DialogShapes = types.Chain{
	types.CSS("div[role='dialog']"),
	types.CSS("div.layer-confirm"),
	types.XPath("//button[contains(.,'확인')][not(ancestor::*[contains(@style,'display: none')])]"),
}

func (f *Cafe24Flow) dialogGone(ctx context.Context) bool {
	return !f.s.Exists(ctx, cafe24DialogShapes)
}

// confirmNativeDialog climbs the strategy ladder until every candidate
// dialog shape is undetectable.
func (f *Cafe24Flow) confirmNativeDialog(ctx context.Context) error {
	for _, st := range cafe24DialogLadder {
		if f.dialogGone(ctx) {
			f.logger.Debug("Confirmation dialog already gone")
			return nil
		}
		if err := st.run(ctx, f); err != nil {
			f.logger.Debugf("Dialog strategy %q failed: %v", st.name, err)
			continue
		}
		f.s.Sleep(ctx, f.s.Config().PollInterval)
		if f.dialogGone(ctx) {
			f.logger.Infof("Confirmation dialog dismissed via %s", st.name)
			return nil
		}
	}
	if f.dialogGone(ctx) {
		return nil
	}
	return fmt.Errorf("confirmation dialog survived every strategy: %w", types.ErrClickIntercepted)
}

func (f *Cafe24Flow) login(ctx context.Context, row workbook.Row) error {
	if err := f.s.Navigate(ctx, cafe24LoginURL); err != nil {
		return err
	}

	attempt := func() error {
		idInput := types.Chain{
			types.CSS("input#mall_id"),
			types.CSS("input[name='mall_id']"),
		}
		pwInput := types.Chain{
			types.CSS("input#userpasswd"),
			types.CSS("input[type='password']"),
		}
		loginBtn := types.Chain{
			types.XPath("//button[contains(.,'로그인')]"),
			types.CSS("button[type='submit']"),
		}
		if err := f.s.Type(ctx, idInput, row.Cafe24ID, true); err != nil {
			return fmt.Errorf("cafe24 id input failed: %w", err)
		}
		if err := f.s.Type(ctx, pwInput, row.Cafe24PW, true); err != nil {
			return fmt.Errorf("cafe24 password input failed: %w", err)
		}
		if err := f.s.Click(ctx, loginBtn, f.s.Config().Timeout); err != nil {
			return fmt.Errorf("cafe24 login submit failed: %w", err)
		}
		return f.s.WaitURL(ctx, 15*time.Second, func(url string) bool {
			return strings.Contains(url, "mp.cafe24.com") || strings.Contains(url, "echosting")
		})
	}

	if err := attempt(); err == nil {
		return nil
	}

	// A forced-login page means a stale session elsewhere; reset once and
	// retry. Further forced-login results abort the journey.
	cur, _ := f.s.CurrentURL(ctx)
	if strings.Contains(cur, "forced") || strings.Contains(cur, "duplicate") {
		f.logger.Warn("Cafe24 forced-login page detected, resetting session")
		if err := f.s.ResetSession(ctx); err != nil {
			return err
		}
		if err := f.s.Navigate(ctx, cafe24LoginURL); err != nil {
			return err
		}
		if err := attempt(); err != nil {
			return fmt.Errorf("cafe24 login after session reset failed: %w", types.ErrForcedLogin)
		}
		return nil
	}
	return fmt.Errorf("cafe24 login failed: %w", types.ErrForcedLogin)
}

// logout with up-to-2-attempt verification by URL.
func (f *Cafe24Flow) logout(ctx context.Context) {
	for attempt := 1; attempt <= 2; attempt++ {
		logoutBtn := types.Chain{
			types.XPath("//a[contains(.,'로그아웃')]"),
			types.XPath("//button[contains(.,'로그아웃')]"),
		}
		if err := f.s.Click(ctx, logoutBtn, 3*time.Second); err != nil {
			f.logger.Debugf("Cafe24 logout attempt %d: %v", attempt, err)
			_ = f.s.Navigate(ctx, cafe24LoginURL)
		}
		cur, err := f.s.CurrentURL(ctx)
		if err == nil && strings.Contains(cur, "eclogin.cafe24.com") {
			f.logger.Debugf("Cafe24 logout verified on attempt %d", attempt)
			return
		}
		f.s.Sleep(ctx, f.s.Config().PollInterval)
	}
	f.logger.Warn("Cafe24 logout unverified after 2 attempts, proceeding")
}
