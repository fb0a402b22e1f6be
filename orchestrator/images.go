package orchestrator

import (
	"context"
	"fmt"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/translate"
)

// rowCheckbox locates the Nth product row's selection checkbox.
func rowCheckbox(n int) types.Chain {
	return types.Chain{
		types.XPath(fmt.Sprintf("(//div[contains(@class,'ant-table')]//tbody//input[@type='checkbox'])[%d]", n)),
		types.CSS(fmt.Sprintf("div.ant-table tbody tr:nth-child(%d) input[type='checkbox']", n)),
	}
}

// ImageRounds runs the per-product image-translation pass over each server
// group: every product on the first page gets its gallery scanned and only
// the Chinese-bearing images translated. One product's failure does not
// stop the pass.
func ImageRounds(ctx context.Context, s *driver.Session, console ListConsole, cfg *types.Config, logger types.Logger) error {
	detector := translate.NewOCRDetector(cfg, logger)
	gallery := translate.NewDrawerGallery(s)
	engine := translate.NewEngine(gallery, detector, logger)

	for _, server := range TranslationServers {
		if err := console.SelectGroup(ctx, server); err != nil {
			return err
		}
		if err := console.SetPageSize(ctx, cfg.PageSize); err != nil {
			return err
		}
		count := console.TotalCount(ctx)
		if count <= 0 {
			logger.Infof("Group %s is empty, skipping image pass", server)
			continue
		}
		if count > cfg.PageSize {
			count = cfg.PageSize
		}
		logger.Infof("Image pass over %s: %d product(s)", server, count)

		for i := 1; i <= count; i++ {
			if err := processProductImages(ctx, s, engine, i, logger); err != nil {
				logger.Warnf("Product %d image pass failed: %v", i, err)
				s.Screenshot(ctx, fmt.Sprintf("image-pass-%s-%d", server, i))
			}
		}
	}
	return nil
}

// processProductImages isolates one product: its row is the only selection
// while the drawer is open, and it is always deselected afterwards.
func processProductImages(ctx context.Context, s *driver.Session, engine *translate.Engine, row int, logger types.Logger) error {
	box := rowCheckbox(row)
	if err := s.Click(ctx, box, s.Config().Timeout); err != nil {
		return fmt.Errorf("row %d checkbox failed: %w", row, err)
	}
	defer func() {
		if err := s.Click(ctx, box, 5*s.Config().PollInterval); err != nil {
			logger.Debugf("Row %d deselect failed: %v", row, err)
		}
	}()

	report, err := engine.Run(ctx, "auto_detect_chinese")
	if err != nil {
		return err
	}
	logger.Infof("Product %d: %d scanned, %d translated, saved=%v",
		row, report.Scanned, len(report.Translated), report.Saved)
	return nil
}
