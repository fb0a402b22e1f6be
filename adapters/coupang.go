package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
	"github.com/onepick2019/percenty-workbench/workbook"
)

const (
	coupangWingURL      = "https://wing.coupang.com"
	coupangSalesInfoURL = "https://wing.coupang.com/tenants/wing-account/vendor/confirm-password?to=/tenants/wing-account/vendor/salesinfo&isTARegion=false"
)

// integratorAliases maps the integrator we want to rotate in to the names
// the autocomplete may show for it. The field sometimes lists vendor names
// instead of product names.
var integratorAliases = map[string][]string{
	"퍼센티":   {"퍼센티", "타입비", "TYPEB"},
	"넥스트엔진": {"넥스트엔진", "하미글로벌", "NEXT ENGINE"},
}

// MatchIntegrator resolves an autocomplete option list against the target
// integrator's alias set. Only exact alias matches count.
func MatchIntegrator(options []string, target string) (int, bool) {
	aliases, ok := integratorAliases[target]
	if !ok {
		aliases = []string{target}
	}
	for i, opt := range options {
		trimmed := strings.TrimSpace(opt)
		for _, alias := range aliases {
			if trimmed == alias {
				return i, true
			}
		}
	}
	return -1, false
}

// CoupangFlow is the login-then-integrator-rotation journey in Coupang
// Wing. It is an external journey, not a settings-screen tab.
type CoupangFlow struct {
	s      *driver.Session
	modals *modal.Coordinator
	logger types.Logger
}

// NewCoupangFlow builds the Wing journey runner.
func NewCoupangFlow(s *driver.Session, modals *modal.Coordinator) *CoupangFlow {
	return &CoupangFlow{s: s, modals: modals, logger: s.Logger()}
}

// RotateIntegrator logs into Wing, opens the integrator modal on the
// vendor sales-info page, selects the target integrator through the
// autocomplete and confirms the completion modal, then logs out.
func (f *CoupangFlow) RotateIntegrator(ctx context.Context, row workbook.Row, integrator string) error {
	if err := f.login(ctx, row); err != nil {
		return err
	}
	defer f.logout(ctx)

	if err := f.s.Navigate(ctx, coupangSalesInfoURL); err != nil {
		return err
	}
	// The sales-info route re-asks for the password.
	pwConfirm := types.Chain{
		types.CSS("input[type='password']"),
	}
	if f.s.Exists(ctx, pwConfirm) {
		if err := f.s.Type(ctx, pwConfirm, row.CoupangPW, true); err != nil {
			return fmt.Errorf("coupang password confirm failed: %w", err)
		}
		submit := types.Chain{
			types.CSS("button[type='submit']"),
			types.XPath("//button[contains(.,'확인')]"),
		}
		if err := f.s.Click(ctx, submit, f.s.Config().Timeout); err != nil {
			return fmt.Errorf("coupang password confirm submit failed: %w", err)
		}
	}

	openModal := types.Chain{
		types.XPath("//button[contains(.,'연동업체')]"),
		types.XPath("//a[contains(.,'연동업체')]"),
	}
	if err := f.s.Click(ctx, openModal, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("integrator modal trigger failed: %w", err)
	}
	if _, err := f.modals.WaitAny(ctx, 10*time.Second, modal.ShapeModal); err != nil {
		return fmt.Errorf("integrator modal missing: %w", err)
	}

	autocomplete := types.Chain{
		types.CSS("div.modal input[type='text']"),
		types.XPath("//div[contains(@class,'modal')]//input"),
	}
	if err := f.s.Type(ctx, autocomplete, integrator, true); err != nil {
		return fmt.Errorf("integrator autocomplete input failed: %w", err)
	}
	f.s.Sleep(ctx, f.s.Config().AnimationDelay)

	var options []string
	script := `(function(){
		var out = [];
		document.querySelectorAll('ul[class*="autocomplete"] li, ul[class*="suggest"] li, div[class*="dropdown"] li').forEach(function(li){
			out.push(li.textContent.trim());
		});
		return out;
	})()`
	if err := f.s.Evaluate(ctx, script, &options); err != nil {
		return fmt.Errorf("integrator option scan failed: %w", err)
	}
	idx, ok := MatchIntegrator(options, integrator)
	if !ok {
		return fmt.Errorf("integrator %q not among options %v: %w", integrator, options, types.ErrSelectorExhausted)
	}
	pick := types.Chain{
		types.XPath(fmt.Sprintf("(//ul[contains(@class,'autocomplete')]//li | //ul[contains(@class,'suggest')]//li | //div[contains(@class,'dropdown')]//li)[%d]", idx+1)),
	}
	if err := f.s.Click(ctx, pick, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("integrator option click failed: %w", err)
	}

	if err := f.modals.ClickPrimary(ctx); err != nil {
		return fmt.Errorf("integrator submit failed: %w", err)
	}
	if _, err := f.modals.WaitAny(ctx, 15*time.Second, modal.ShapeModal, modal.ShapeConfirm); err == nil {
		if err := f.modals.ClickPrimary(ctx); err != nil {
			f.logger.Warnf("Integrator completion confirm failed: %v", err)
		}
	}
	f.logger.Infof("Coupang integrator rotated to %s", integrator)
	return nil
}

func (f *CoupangFlow) login(ctx context.Context, row workbook.Row) error {
	if err := f.s.Navigate(ctx, coupangWingURL); err != nil {
		return err
	}
	cur, err := f.s.CurrentURL(ctx)
	if err == nil && strings.Contains(cur, "wing.coupang.com") && !strings.Contains(strings.ToLower(cur), "login") {
		f.logger.Info("Coupang Wing session already active")
		return nil
	}

	idInput := types.Chain{
		types.CSS("input#username"),
		types.CSS("input[name='username']"),
	}
	pwInput := types.Chain{
		types.CSS("input#password"),
		types.CSS("input[type='password']"),
	}
	loginBtn := types.Chain{
		types.CSS("button[type='submit']"),
		types.XPath("//button[contains(.,'로그인')]"),
	}
	if err := f.s.Type(ctx, idInput, row.CoupangID, true); err != nil {
		return fmt.Errorf("wing id input failed: %w", err)
	}
	if err := f.s.Type(ctx, pwInput, row.CoupangPW, true); err != nil {
		return fmt.Errorf("wing password input failed: %w", err)
	}
	if err := f.s.Click(ctx, loginBtn, f.s.Config().Timeout); err != nil {
		return fmt.Errorf("wing login submit failed: %w", err)
	}
	return f.s.WaitURL(ctx, 20*time.Second, func(url string) bool {
		return strings.Contains(url, "wing.coupang.com") && !strings.Contains(strings.ToLower(url), "login")
	})
}

// logout is verified by URL change with up to ten attempts.
func (f *CoupangFlow) logout(ctx context.Context) {
	loggedOut := func(url string) bool {
		return strings.Contains(url, "xauth.coupang.com") || strings.Contains(strings.ToLower(url), "login")
	}
	for attempt := 1; attempt <= 10; attempt++ {
		cur, err := f.s.CurrentURL(ctx)
		if err == nil && loggedOut(cur) {
			f.logger.Debugf("Coupang logout verified on attempt %d", attempt)
			return
		}
		logout := types.Chain{
			types.XPath("//a[contains(.,'로그아웃')]"),
			types.XPath("//button[contains(.,'로그아웃')]"),
		}
		if err := f.s.Click(ctx, logout, 3*time.Second); err != nil {
			f.logger.Debugf("Coupang logout attempt %d: %v", attempt, err)
			_ = f.s.Navigate(ctx, coupangWingURL)
		}
		f.s.Sleep(ctx, f.s.Config().PollInterval)
	}
	f.logger.Warn("Coupang logout unverified after 10 attempts, proceeding")
}
