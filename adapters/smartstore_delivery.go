package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/workbook"
)

// RunSmartstoreDeliveryJob updates delivery info in the Smartstore seller
// console, run once per row after Smartstore keys were set: open the
// product list, select everything, switch to the delivery-change option,
// pick the shipping template, restrict to seller-managed products, set the
// dispatch period, apply, then log out and close the tab.
func RunSmartstoreDeliveryJob(ctx context.Context, s *driver.Session, row workbook.Row) error {
	logger := s.Logger()
	logger.Infof("Smartstore delivery job starting for %s", row.SmartstoreID)

	win, err := openSmartstoreWindow(ctx, s)
	if err != nil {
		return err
	}
	defer win.Close()
	ws := s.WindowSession(win)

	if err := ws.Navigate(ctx, smartstoreSellerURL+"/#/sell/product/list"); err != nil {
		return err
	}
	steps := []struct {
		name  string
		chain types.Chain
	}{
		{"select all products", types.Chain{
			types.CSS("thead input[type='checkbox']"),
			types.XPath("//th[contains(@class,'check')]//input"),
		}},
		{"delivery change option", types.Chain{
			types.XPath("//button[contains(.,'배송변경')]"),
			types.XPath("//a[contains(.,'배송변경')]"),
		}},
		{"delivery template button", types.Chain{
			types.XPath("//button[contains(.,'배송비 템플릿')]"),
			types.XPath("//button[contains(.,'템플릿')]"),
		}},
		{"delivery template entry", types.Chain{
			types.XPath("//ul[contains(@class,'template')]//li[1]"),
			types.XPath("//div[contains(@class,'modal')]//li[1]"),
		}},
		{"seller-managed checkbox", types.Chain{
			types.XPath("//label[contains(.,'판매자 관리')]//input"),
			types.XPath("//label[contains(.,'직접')]//input"),
		}},
	}
	for _, step := range steps {
		if err := ws.Click(ctx, step.chain, 10*time.Second); err != nil {
			return fmt.Errorf("smartstore delivery job: %s failed: %w", step.name, err)
		}
		ws.Sleep(ctx, ws.Config().AnimationDelay)
	}

	// Dispatch period: the console wants an explicit 발송예정일.
	period := types.Chain{
		types.XPath("//select[contains(@class,'dispatch')]"),
		types.XPath("//div[contains(@class,'modal')]//select"),
	}
	if ws.Exists(ctx, period) {
		if err := ws.Click(ctx, period, 5*time.Second); err != nil {
			logger.Debugf("Dispatch period select skipped: %v", err)
		}
	}

	change := types.Chain{
		types.XPath("//button[contains(.,'변경하기')]"),
		types.XPath("//div[contains(@class,'modal')]//button[contains(@class,'primary')]"),
	}
	if err := ws.Click(ctx, change, 10*time.Second); err != nil {
		return fmt.Errorf("smartstore delivery job: change submit failed: %w", err)
	}

	done := types.Chain{
		types.XPath("//div[contains(@class,'modal')][contains(.,'완료')]"),
		types.XPath("//*[contains(text(),'변경되었습니다')]"),
	}
	if err := ws.WaitVisible(ctx, done, 30*time.Second); err != nil {
		return fmt.Errorf("smartstore delivery job: completion not observed: %w", err)
	}
	closeModal := types.Chain{
		types.XPath("//div[contains(@class,'modal')]//button[contains(.,'확인')]"),
		types.XPath("//div[contains(@class,'modal')]//button[contains(@class,'close')]"),
	}
	if err := ws.Click(ctx, closeModal, 10*time.Second); err != nil {
		logger.Warnf("Smartstore delivery job: modal close failed: %v", err)
	}

	smartstoreLogout(ctx, ws)
	if err := s.CloseStrayWindows(ctx); err != nil {
		logger.Warnf("Smartstore window cleanup failed: %v", err)
	}
	logger.Info("Smartstore delivery job finished")
	return nil
}

func openSmartstoreWindow(ctx context.Context, s *driver.Session) (*driver.Window, error) {
	script := fmt.Sprintf(`window.open(%q, '_blank'); true`, smartstoreSellerURL)
	var ok bool
	if err := s.Evaluate(ctx, script, &ok); err != nil {
		return nil, fmt.Errorf("failed to open smartstore window: %w", err)
	}
	return s.WaitWindow(ctx, smartstoreSellerURL, 15*time.Second)
}

func smartstoreLogout(ctx context.Context, ws *driver.Session) {
	logout := types.Chain{
		types.XPath("//button[contains(.,'로그아웃')]"),
		types.XPath("//a[contains(.,'로그아웃')]"),
	}
	if err := ws.Click(ctx, logout, 5*time.Second); err != nil {
		ws.Logger().Debugf("Smartstore logout skipped: %v", err)
	}
}
