package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
	"github.com/onepick2019/percenty-workbench/workbook"
)

// auctionGmarketSideDrawer handles the drawer Auction/Gmarket validation
// opens: courier selection plus one consent radio per sub-marketplace,
// both set to 동의, then submit.
func auctionGmarketSideDrawer(ctx context.Context, a *Adapter, _ workbook.Row) error {
	if _, err := a.modals.WaitAny(ctx, 15*time.Second, modal.ShapeDrawer, modal.ShapeModal); err != nil {
		return fmt.Errorf("esm side drawer missing: %w", err)
	}
	a.s.Sleep(ctx, a.s.Config().AnimationDelay)

	courierTrigger := types.Chain{
		types.CSS("div.ant-drawer .ant-select-selector"),
		types.XPath("//div[contains(@class,'ant-drawer')]//div[contains(@class,'ant-select')]"),
	}
	if err := a.ctrl.SelectOption(ctx, courierTrigger, a.s.Config().CourierName); err != nil {
		return fmt.Errorf("courier selection failed: %w", err)
	}

	// Two consent radio groups, one for Auction, one for Gmarket. Ordinal
	// selection because the group labels churn.
	for i := 1; i <= 2; i++ {
		consent := types.Chain{
			types.XPath(fmt.Sprintf(
				"(//div[contains(@class,'ant-drawer')]//div[contains(@class,'ant-radio-group')])[%d]//label[.//span[normalize-space(text())='동의']]", i)),
			types.XPath(fmt.Sprintf(
				"(//div[contains(@class,'ant-drawer')]//label[contains(@class,'ant-radio-wrapper')][contains(.,'동의')])[%d]", i)),
		}
		if err := a.s.Click(ctx, consent, a.s.Config().Timeout); err != nil {
			return fmt.Errorf("consent radio %d failed: %w", i, err)
		}
	}

	submit := types.Chain{
		types.XPath("//div[contains(@class,'ant-drawer')]//button[contains(@class,'ant-btn-primary')]"),
		types.XPath("//div[contains(@class,'ant-drawer')]//button[.//span[contains(text(),'만들기')]]"),
	}
	if err := a.s.Click(ctx, submit, a.s.Config().Timeout); err != nil {
		return fmt.Errorf("esm drawer submit failed: %w", err)
	}
	if err := a.modals.WaitDismissed(ctx, modal.ShapeDrawer, 20*time.Second); err != nil {
		return err
	}
	a.logger.Infof("%s: shipping profile and consents submitted", a.spec.Label)
	return nil
}
