package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// DeleteRounds runs bounded select-all/delete cycles until the filtered set
// is empty. Round 1 picks the delete scope; later rounds inherit it. A
// count of zero at any round means the phase succeeded.
func DeleteRounds(ctx context.Context, console ListConsole, cfg *types.Config, logger types.Logger) error {
	for round := 1; round <= cfg.MaxRounds; round++ {
		count := console.TotalCount(ctx)
		logger.Infof("Delete round %d: %d product(s) remain", round, count)
		if count == 0 {
			return nil
		}
		if err := console.SetPageSize(ctx, cfg.PageSize); err != nil {
			return fmt.Errorf("delete round %d: %w", round, err)
		}
		if err := console.SelectAll(ctx); err != nil {
			return fmt.Errorf("delete round %d: %w", round, err)
		}
		if err := console.DeleteSelected(ctx, round == 1); err != nil {
			return fmt.Errorf("delete round %d: %w", round, err)
		}
		if err := console.RunSearch(ctx); err != nil {
			return fmt.Errorf("delete round %d: %w", round, err)
		}
	}
	logger.Warnf("Delete rounds exhausted after %d iterations", cfg.MaxRounds)
	return nil
}

// UploadRounds runs bounded select-all/upload cycles over the 미업로드
// 11번가 filter until the set is empty. A forced-close recovery ends the
// loop with a warning; the next phase proceeds.
func UploadRounds(ctx context.Context, console ListConsole, cfg *types.Config, logger types.Logger) error {
	if err := console.SelectStatus(ctx, "미업로드"); err != nil {
		return err
	}
	if err := console.SelectMarket(ctx, "11번가"); err != nil {
		return err
	}
	for round := 1; round <= cfg.MaxRounds; round++ {
		count := console.TotalCount(ctx)
		logger.Infof("Upload round %d: %d product(s) pending", round, count)
		if count == 0 {
			break
		}
		if err := console.SetPageSize(ctx, cfg.PageSize); err != nil {
			return fmt.Errorf("upload round %d: %w", round, err)
		}
		if err := console.SelectAll(ctx); err != nil {
			return fmt.Errorf("upload round %d: %w", round, err)
		}
		recovered, err := console.UploadSelected(ctx)
		if err != nil {
			return fmt.Errorf("upload round %d: %w", round, err)
		}
		if recovered {
			logger.Warnf("Upload round %d recovered via forced close, leaving the loop", round)
			break
		}
	}
	return nil
}

// TranslationRounds runs the alternate workflow: for each server group,
// select it, batch-translate when the quota allows and move survivors to
// the matching waiting group. A quota shortfall aborts the cycle as a
// skip, not an error.
func TranslationRounds(ctx context.Context, console ListConsole, cfg *types.Config, logger types.Logger) error {
	for _, server := range TranslationServers {
		waiting := WaitGroup(server)
		logger.Infof("Translation cycle: %s → %s", server, waiting)

		if err := console.SelectGroup(ctx, server); err != nil {
			return err
		}
		if err := console.SetPageSize(ctx, cfg.PageSize); err != nil {
			return err
		}
		count := console.TotalCount(ctx)
		if count == 0 {
			logger.Infof("Group %s is empty, skipping", server)
			continue
		}
		if err := console.SelectAll(ctx); err != nil {
			return err
		}
		if err := console.BatchTranslate(ctx); err != nil {
			if errors.Is(err, types.ErrQuotaInsufficient) {
				logger.Warnf("Quota insufficient for %s, aborting translation cycle", server)
				return nil
			}
			return err
		}
		if err := console.SelectAll(ctx); err != nil {
			return err
		}
		if err := console.AssignToGroup(ctx, waiting); err != nil {
			return err
		}
	}
	return nil
}
