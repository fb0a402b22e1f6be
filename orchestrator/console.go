package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/controls"
	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
)

// ListConsole is the slice of the registered-products screen the round
// loops drive. The chromedp implementation is productConsole; tests fake
// this interface.
type ListConsole interface {
	TotalCount(ctx context.Context) int
	SetPageSize(ctx context.Context, size int) error
	SelectAll(ctx context.Context) error
	SelectGroup(ctx context.Context, group string) error
	SelectStatus(ctx context.Context, status string) error
	SelectMarket(ctx context.Context, label string) error
	RunSearch(ctx context.Context) error
	DeleteSelected(ctx context.Context, firstRound bool) error
	UploadSelected(ctx context.Context) (recovered bool, err error)
	AssignToGroup(ctx context.Context, group string) error
	BatchTranslate(ctx context.Context) error
}

// productConsole drives the real registered-products screen.
type productConsole struct {
	s      *driver.Session
	ctrl   *controls.Controller
	modals *modal.Coordinator
	logger types.Logger
}

// NewListConsole builds the chromedp-backed console.
func NewListConsole(s *driver.Session, ctrl *controls.Controller, modals *modal.Coordinator) ListConsole {
	return &productConsole{s: s, ctrl: ctrl, modals: modals, logger: s.Logger()}
}

func (p *productConsole) TotalCount(ctx context.Context) int { return p.ctrl.TotalCount(ctx) }

func (p *productConsole) SetPageSize(ctx context.Context, size int) error {
	return p.ctrl.SetPageSize(ctx, size)
}

func (p *productConsole) SelectAll(ctx context.Context) error { return p.ctrl.SelectAll(ctx) }

func (p *productConsole) SelectGroup(ctx context.Context, group string) error {
	prev := p.ctrl.TotalCount(ctx)
	trigger := types.Chain{
		types.CSS("div.ant-select[data-test='group-filter'] .ant-select-selector"),
		types.XPath("//div[contains(@class,'ant-select')][.//span[contains(@title,'그룹')] or .//input[@role='combobox']][1]"),
	}
	if err := p.ctrl.SelectOption(ctx, trigger, group); err != nil {
		return fmt.Errorf("group %q selection failed: %w", group, err)
	}
	if err := p.ctrl.WaitCountChange(ctx, prev, 8*time.Second); err != nil {
		p.logger.Debugf("Count unchanged after selecting group %q: %v", group, err)
	}
	return nil
}

func (p *productConsole) SelectStatus(ctx context.Context, status string) error {
	return p.ctrl.SelectStatusFilter(ctx, status)
}

func (p *productConsole) SelectMarket(ctx context.Context, label string) error {
	return p.ctrl.SelectMarketCheckbox(ctx, label)
}

func (p *productConsole) RunSearch(ctx context.Context) error {
	search := types.Chain{
		types.XPath("//button[.//span[contains(text(),'검색')]]"),
		types.CSS("button.ant-btn-primary[class*='search']"),
	}
	if err := p.s.Click(ctx, search, p.s.Config().Timeout); err != nil {
		return fmt.Errorf("product search failed: %w", err)
	}
	p.s.Sleep(ctx, p.s.Config().AnimationDelay)
	return nil
}

// DeleteSelected opens the delete modal and runs the bulk delete. On the
// first round the delete-scope option #3 (market upload info only) is
// picked and the 11번가 일반 checkbox ticked; later rounds reuse the
// remembered scope.
func (p *productConsole) DeleteSelected(ctx context.Context, firstRound bool) error {
	open := types.Chain{
		types.XPath("//button[.//span[contains(text(),'삭제')]][not(@disabled)]"),
	}
	if err := p.s.Click(ctx, open, p.s.Config().Timeout); err != nil {
		return fmt.Errorf("delete modal trigger failed: %w", err)
	}
	if _, err := p.modals.WaitAny(ctx, 10*time.Second, modal.ShapeModal); err != nil {
		return fmt.Errorf("delete modal missing: %w", err)
	}

	if firstRound {
		scope := types.Chain{
			types.XPath("//div[contains(@class,'ant-modal')]//label[contains(.,'퍼센티에서 해당 마켓 업로드 정보만 삭제')]"),
			types.XPath("(//div[contains(@class,'ant-modal')]//label[contains(@class,'ant-radio-wrapper')])[3]"),
		}
		if err := p.s.Click(ctx, scope, p.s.Config().Timeout); err != nil {
			return fmt.Errorf("delete scope option failed: %w", err)
		}
		market := types.Chain{
			types.XPath("//div[contains(@class,'ant-modal')]//label[contains(.,'11번가') and contains(.,'일반')]"),
		}
		if err := p.s.Click(ctx, market, p.s.Config().Timeout); err != nil {
			return fmt.Errorf("11번가 일반 checkbox failed: %w", err)
		}
	}

	run := types.Chain{
		types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[contains(text(),'선택 상품 일괄 삭제')]]"),
		types.XPath("//div[contains(@class,'ant-modal')]//button[contains(@class,'ant-btn-dangerous')]"),
	}
	if err := p.s.Click(ctx, run, p.s.Config().Timeout); err != nil {
		return fmt.Errorf("bulk delete trigger failed: %w", err)
	}
	if err := p.modals.WaitCompletionText(ctx, "삭제 완료", 2*time.Minute); err != nil {
		return fmt.Errorf("delete completion not observed: %w", err)
	}
	if err := p.modals.CloseTop(ctx); err != nil {
		p.logger.Warnf("Delete modal close failed: %v", err)
	}
	return nil
}

// UploadSelected opens the upload modal, starts the bulk upload, handles
// the "편집하지 않은 상품" secondary confirmation and polls progress.
// recovered=true means the forced-close path ran after a stall.
func (p *productConsole) UploadSelected(ctx context.Context) (bool, error) {
	open := types.Chain{
		types.XPath("//button[.//span[contains(text(),'업로드')]][not(@disabled)]"),
	}
	if err := p.s.Click(ctx, open, p.s.Config().Timeout); err != nil {
		return false, fmt.Errorf("upload modal trigger failed: %w", err)
	}
	if _, err := p.modals.WaitAny(ctx, 10*time.Second, modal.ShapeModal); err != nil {
		return false, fmt.Errorf("upload modal missing: %w", err)
	}

	run := types.Chain{
		types.XPath("//div[contains(@class,'ant-modal')]//button[.//span[contains(text(),'선택 상품 일괄 업로드')]]"),
		types.XPath("//div[contains(@class,'ant-modal')]//button[contains(@class,'ant-btn-primary')]"),
	}
	if err := p.s.Click(ctx, run, p.s.Config().Timeout); err != nil {
		return false, fmt.Errorf("bulk upload trigger failed: %w", err)
	}

	// Products never opened in the editor raise a secondary confirmation.
	// It renders a beat after the upload click, so give it a bounded wait
	// before concluding it is absent.
	secondary := types.Chain{
		types.XPath("//div[contains(@class,'ant-modal')][contains(.,'편집하지 않은 상품')]//button[.//span[text()='업로드']]"),
	}
	if err := p.s.WaitVisible(ctx, secondary, 5*time.Second); err == nil {
		if err := p.s.Click(ctx, secondary, 5*time.Second); err != nil {
			p.logger.Warnf("Secondary upload confirm failed: %v", err)
		}
	} else {
		p.logger.Debugf("No secondary upload confirmation within 5s: %v", err)
	}

	outcome, err := p.modals.WaitUploadComplete(ctx, p.s.Config().UploadTimeout)
	if err != nil {
		return outcome == modal.UploadForcedClose, err
	}
	if outcome == modal.UploadForcedClose {
		return true, nil
	}
	if err := p.modals.CloseTop(ctx); err != nil {
		p.logger.Warnf("Upload modal close failed: %v", err)
	}
	return false, nil
}

func (p *productConsole) AssignToGroup(ctx context.Context, group string) error {
	return p.ctrl.AssignToGroup(ctx, group)
}

// BatchTranslate opens the batch-translate modal, reads quota and selected
// count once, and either starts the batch or closes the modal and returns
// ErrQuotaInsufficient. The probe is folded into the action so flaky
// quotas are never read twice.
func (p *productConsole) BatchTranslate(ctx context.Context) error {
	open := types.Chain{
		types.XPath("//button[.//span[contains(text(),'일괄 번역')]][not(@disabled)]"),
		types.XPath("//button[contains(.,'번역')][not(@disabled)]"),
	}
	if err := p.s.Click(ctx, open, p.s.Config().Timeout); err != nil {
		return fmt.Errorf("batch-translate modal trigger failed: %w", err)
	}
	if _, err := p.modals.WaitAny(ctx, 10*time.Second, modal.ShapeModal); err != nil {
		return fmt.Errorf("batch-translate modal missing: %w", err)
	}

	body, err := p.s.Text(ctx, types.Chain{
		types.CSS("div.ant-modal .ant-modal-body"),
	}, 5*time.Second)
	if err != nil {
		return fmt.Errorf("batch-translate modal unreadable: %w", err)
	}
	quota := ParseQuota(body)
	selected := ParseSelectedCount(body)
	p.logger.Infof("Batch translate: quota=%d selected=%d", quota, selected)

	if !QuotaAllows(quota, selected) {
		if err := p.modals.CloseTop(ctx); err != nil {
			p.logger.Warnf("Batch-translate modal close failed: %v", err)
		}
		return fmt.Errorf("quota %d < selected %d: %w", quota, selected, types.ErrQuotaInsufficient)
	}

	start := types.Chain{
		types.XPath("//div[contains(@class,'ant-modal')]//button[contains(@class,'ant-btn-primary')]"),
	}
	if err := p.s.Click(ctx, start, p.s.Config().Timeout); err != nil {
		return fmt.Errorf("batch-translate start failed: %w", err)
	}
	if err := p.modals.WaitDismissed(ctx, modal.ShapeModal, 5*time.Minute); err != nil {
		return fmt.Errorf("batch-translate did not finish: %w", err)
	}
	return nil
}
