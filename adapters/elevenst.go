package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
	"github.com/onepick2019/percenty-workbench/workbook"
)

// elevenstSideDrawer handles the delivery-profile drawer 11st validation
// opens. The courier dropdown must be set before 배송프로필 만들기 is
// pressed; the console refreshes the page afterwards.
func elevenstSideDrawer(ctx context.Context, a *Adapter, _ workbook.Row) error {
	if _, err := a.modals.WaitAny(ctx, 15*time.Second, modal.ShapeDrawer, modal.ShapeModal); err != nil {
		return fmt.Errorf("delivery-profile drawer missing: %w", err)
	}
	a.s.Sleep(ctx, a.s.Config().AnimationDelay)

	courierTrigger := types.Chain{
		types.CSS("div.ant-drawer .ant-select-selector"),
		types.XPath("//div[contains(@class,'ant-drawer')]//div[contains(@class,'ant-select')]"),
	}
	if err := a.ctrl.SelectOption(ctx, courierTrigger, a.s.Config().CourierName); err != nil {
		return fmt.Errorf("courier selection failed: %w", err)
	}

	create := types.Chain{
		types.XPath("//div[contains(@class,'ant-drawer')]//button[.//span[contains(text(),'배송프로필 만들기')]]"),
		types.XPath("//div[contains(@class,'ant-drawer')]//button[contains(@class,'ant-btn-primary')]"),
	}
	if err := a.s.Click(ctx, create, a.s.Config().Timeout); err != nil {
		return fmt.Errorf("배송프로필 만들기 not clickable: %w", err)
	}

	// Profile creation triggers a page refresh; wait for the settings
	// screen to come back before the adapter returns.
	if err := a.modals.WaitDismissed(ctx, modal.ShapeDrawer, 20*time.Second); err != nil {
		return err
	}
	settings := types.Chain{
		types.CSS("div.ant-tabs"),
		types.XPath("//div[contains(@class,'ant-tabs-tab')]"),
	}
	if err := a.s.WaitVisible(ctx, settings, 20*time.Second); err != nil {
		return fmt.Errorf("settings screen missing after refresh: %w", err)
	}
	a.logger.Infof("%s: delivery profile created", a.spec.Label)
	return nil
}
