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

const smartstoreSellerURL = "https://sell.smartstore.naver.com"

// smartstoreSideDrawer handles the Smartstore validation side effect: a
// shipping profile is created, then a new window opens to the Smartstore
// seller console where a separate login runs with the row's credentials.
func smartstoreSideDrawer(ctx context.Context, a *Adapter, row workbook.Row) error {
	if _, err := a.modals.WaitAny(ctx, 15*time.Second, modal.ShapeDrawer, modal.ShapeModal); err != nil {
		return fmt.Errorf("smartstore shipping drawer missing: %w", err)
	}
	a.s.Sleep(ctx, a.s.Config().AnimationDelay)

	courierTrigger := types.Chain{
		types.CSS("div.ant-drawer .ant-select-selector"),
		types.XPath("//div[contains(@class,'ant-drawer')]//div[contains(@class,'ant-select')]"),
	}
	if err := a.ctrl.SelectOption(ctx, courierTrigger, a.s.Config().CourierName); err != nil {
		return fmt.Errorf("courier selection failed: %w", err)
	}
	submit := types.Chain{
		types.XPath("//div[contains(@class,'ant-drawer')]//button[contains(@class,'ant-btn-primary')]"),
	}
	if err := a.s.Click(ctx, submit, a.s.Config().Timeout); err != nil {
		return fmt.Errorf("shipping profile submit failed: %w", err)
	}
	if err := a.modals.WaitDismissed(ctx, modal.ShapeDrawer, 20*time.Second); err != nil {
		return err
	}

	// Follow-up login in the seller-console window.
	win, err := a.s.WaitWindow(ctx, smartstoreSellerURL, 20*time.Second)
	if err != nil {
		return fmt.Errorf("smartstore seller window missing: %w", err)
	}
	defer win.Close()
	ws := a.s.WindowSession(win)
	if err := smartstoreLogin(ctx, ws, row.SmartstoreID, row.SmartstorePW); err != nil {
		return err
	}
	if err := a.s.CloseStrayWindows(ctx); err != nil {
		a.logger.Warnf("Smartstore window cleanup failed: %v", err)
	}
	a.logger.Infof("%s: shipping profile created and seller login verified", a.spec.Label)
	return nil
}

func smartstoreLogin(ctx context.Context, ws *driver.Session, id, pw string) error {
	idInput := types.Chain{
		types.CSS("input[placeholder*='아이디']"),
		types.CSS("input#username"),
		types.CSS("form input[type='text']"),
	}
	pwInput := types.Chain{
		types.CSS("input[type='password']"),
	}
	loginBtn := types.Chain{
		types.XPath("//button[contains(.,'로그인')]"),
		types.CSS("button[type='submit']"),
	}
	if err := ws.Type(ctx, idInput, id, true); err != nil {
		return fmt.Errorf("smartstore id input failed: %w", err)
	}
	if err := ws.Type(ctx, pwInput, pw, true); err != nil {
		return fmt.Errorf("smartstore password input failed: %w", err)
	}
	if err := ws.Click(ctx, loginBtn, ws.Config().Timeout); err != nil {
		return fmt.Errorf("smartstore login submit failed: %w", err)
	}
	return ws.WaitURL(ctx, 20*time.Second, func(url string) bool {
		return url != "" && !containsLoginPath(url)
	})
}

func containsLoginPath(url string) bool {
	for _, p := range []string{"/login", "/signin", "nid.naver.com"} {
		if strings.Contains(url, p) {
			return true
		}
	}
	return false
}
