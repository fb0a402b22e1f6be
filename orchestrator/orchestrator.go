package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/adapters"
	"github.com/onepick2019/percenty-workbench/controls"
	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
	"github.com/onepick2019/percenty-workbench/session"
	"github.com/onepick2019/percenty-workbench/workbook"
)

// Workflow selects which per-group loop the orchestrator runs.
type Workflow int

const (
	// WorkflowUpload is the delete-then-upload rounds workflow.
	WorkflowUpload Workflow = iota
	// WorkflowTranslate is the server-group batch-translation workflow.
	WorkflowTranslate
	// WorkflowImages is the per-product image-translation workflow.
	WorkflowImages
)

// Orchestrator is the top-level per-account state machine.
type Orchestrator struct {
	cfg       *types.Config
	logger    types.Logger
	s         *driver.Session
	ctrl      *controls.Controller
	modals    *modal.Coordinator
	custodian *session.Custodian
	console   ListConsole
	workflow  Workflow

	// cafe24Import enables the optional Cafe24 import of 11st listings at
	// the end of the upload rounds.
	cafe24Import bool
}

// New wires the orchestrator onto one browser session.
func New(s *driver.Session, workflow Workflow, cafe24Import bool) *Orchestrator {
	ctrl := controls.New(s)
	modals := modal.New(s)
	return &Orchestrator{
		cfg:          s.Config(),
		logger:       s.Logger(),
		s:            s,
		ctrl:         ctrl,
		modals:       modals,
		custodian:    session.New(s),
		console:      NewListConsole(s, ctrl, modals),
		workflow:     workflow,
		cafe24Import: cafe24Import,
	}
}

// RunAccount drives the whole per-account workflow: login, per-group row
// processing, rounds loops, completion-group move, logout. No error
// escapes a row's scope; the summary carries per-row outcomes.
func (o *Orchestrator) RunAccount(ctx context.Context, loginID, password string, rows []workbook.Row) []types.RowResult {
	var results []types.RowResult

	if err := o.custodian.Login(ctx, loginID, password); err != nil {
		o.logger.Errorf("Account %s: login failed: %v", loginID, err)
		o.s.Screenshot(ctx, "login-failed")
		return []types.RowResult{{LoginID: loginID, Fatal: err.Error()}}
	}
	defer o.custodian.Logout(ctx)

	groups := workbook.GroupRows(rows)
	for _, group := range groups {
		o.logger.Infof("Account %s: processing group %s (%d row(s))", loginID, group.Name, len(group.Rows))
		for i, row := range group.Rows {
			o.logger.Infof("Group %s: row %d/%d", group.Name, i+1, len(group.Rows))
			results = append(results, o.runRow(ctx, row))
		}
		if o.workflow == WorkflowUpload {
			o.finishGroup(ctx, group.Name)
		}
	}

	switch o.workflow {
	case WorkflowTranslate:
		if err := TranslationRounds(ctx, o.console, o.cfg, o.logger); err != nil {
			o.logger.Errorf("Translation rounds failed: %v", err)
			o.s.Screenshot(ctx, "translation-rounds-failed")
		}
	case WorkflowImages:
		if err := ImageRounds(ctx, o.s, o.console, o.cfg, o.logger); err != nil {
			o.logger.Errorf("Image rounds failed: %v", err)
			o.s.Screenshot(ctx, "image-rounds-failed")
		}
	}
	return results
}

// runRow processes one configuration row. Adapter failures log and
// continue; only navigation-level failures are fatal for the row.
func (o *Orchestrator) runRow(ctx context.Context, row workbook.Row) types.RowResult {
	result := types.RowResult{LoginID: row.LoginID, GroupName: row.GroupName}
	step := func(name string, ok bool, detail string) {
		result.Steps = append(result.Steps, types.StepResult{Name: name, OK: ok, Detail: detail})
	}

	// Translation workflows only touch the product list; the marketplace
	// reconnection phase belongs to the upload workflow.
	if o.workflow == WorkflowUpload {
		if fatal := o.reconnectMarketplaces(ctx, row, step); fatal != "" {
			result.Fatal = fatal
			return result
		}
	}

	if err := o.openRegisteredProducts(ctx); err != nil {
		result.Fatal = fmt.Sprintf("product screen unreachable: %v", err)
		o.s.Screenshot(ctx, "product-screen-failed")
		return result
	}
	if err := o.console.SelectGroup(ctx, row.GroupName); err != nil {
		result.Fatal = fmt.Sprintf("group selection failed: %v", err)
		return result
	}

	if o.workflow == WorkflowUpload {
		if err := DeleteRounds(ctx, o.console, o.cfg, o.logger); err != nil {
			o.logger.Errorf("Delete rounds failed: %v", err)
			o.s.Screenshot(ctx, "delete-rounds-failed")
			step("delete rounds", false, err.Error())
		} else {
			step("delete rounds", true, "")
		}
		if err := UploadRounds(ctx, o.console, o.cfg, o.logger); err != nil {
			o.logger.Errorf("Upload rounds failed: %v", err)
			o.s.Screenshot(ctx, "upload-rounds-failed")
			step("upload rounds", false, err.Error())
		} else {
			step("upload rounds", true, "")
		}

		if o.cafe24Import && row.HasCafe24() {
			flow := adapters.NewCafe24Flow(o.s)
			if err := flow.ImportFromElevenst(ctx, row); err != nil {
				o.logger.Warnf("Cafe24 import failed: %v", err)
				o.s.Screenshot(ctx, "cafe24-import-failed")
				step("cafe24 import", false, err.Error())
			} else {
				step("cafe24 import", true, "")
			}
			if err := o.s.Navigate(ctx, o.cfg.AppURL); err != nil {
				o.logger.Warnf("Return to console after Cafe24 failed: %v", err)
			}
		}
	}
	return result
}

// reconnectMarketplaces runs the settings-screen phase: fixed-order
// disconnects, credential-gated connects and the external journeys. It
// returns a non-empty string when the row cannot proceed at all.
func (o *Orchestrator) reconnectMarketplaces(ctx context.Context, row workbook.Row, step func(string, bool, string)) string {
	if err := o.openMarketSettings(ctx); err != nil {
		o.s.Screenshot(ctx, "market-settings-failed")
		return fmt.Sprintf("market settings unreachable: %v", err)
	}

	// Sever every marketplace in the fixed order before reconnecting.
	for _, m := range adapters.DisconnectOrder {
		a := adapters.New(m, o.s, o.ctrl, o.modals)
		if err := a.SwitchTo(ctx); err != nil {
			o.logger.Warnf("Disconnect %s: %v", a.Name(), err)
			step("disconnect "+a.Name(), false, err.Error())
			continue
		}
		if err := a.Disconnect(ctx); err != nil {
			o.logger.Warnf("Disconnect %s: %v", a.Name(), err)
			step("disconnect "+a.Name(), false, err.Error())
			continue
		}
		step("disconnect "+a.Name(), true, "")
	}

	// Reconnect marketplaces whose credential unit is present.
	for _, m := range adapters.ConnectOrder {
		spec := adapters.SpecFor(m)
		if !spec.HasCredentials(row) {
			continue
		}
		a := adapters.New(m, o.s, o.ctrl, o.modals)
		if err := o.connectMarketplace(ctx, a, row); err != nil {
			o.logger.Warnf("Connect %s failed, continuing with next marketplace: %v", a.Name(), err)
			o.s.Screenshot(ctx, "connect-"+spec.Key)
			step("connect "+a.Name(), false, err.Error())
			continue
		}
		step("connect "+a.Name(), true, "")
	}

	if row.HasSmartstore() {
		if err := adapters.RunSmartstoreDeliveryJob(ctx, o.s, row); err != nil {
			o.logger.Warnf("Smartstore delivery job failed: %v", err)
			step("smartstore delivery job", false, err.Error())
		} else {
			step("smartstore delivery job", true, "")
		}
	}

	if row.HasCoupang() {
		flow := adapters.NewCoupangFlow(o.s, o.modals)
		if err := flow.RotateIntegrator(ctx, row, "퍼센티"); err != nil {
			o.logger.Warnf("Coupang integrator rotation failed: %v", err)
			step("coupang integrator", false, err.Error())
		} else {
			step("coupang integrator", true, "")
		}
		if err := o.s.CloseStrayWindows(ctx); err != nil {
			o.logger.Debugf("Window cleanup after Coupang: %v", err)
		}
	}
	return ""
}

// finishGroup moves the group's for-sale survivors to its completion
// bucket once every row is processed.
func (o *Orchestrator) finishGroup(ctx context.Context, group string) {
	target := CompletionGroup(group)
	if target == "" {
		o.logger.Debugf("Group %s has no completion bucket, leaving in place", group)
		return
	}
	if err := o.console.SelectStatus(ctx, "판매중"); err != nil {
		o.logger.Warnf("Completion move for %s: status filter failed: %v", group, err)
		return
	}
	count := o.console.TotalCount(ctx)
	if count == 0 {
		o.logger.Infof("Group %s has no survivors to move", group)
		return
	}
	if err := o.console.SelectAll(ctx); err != nil {
		o.logger.Warnf("Completion move for %s: select all failed: %v", group, err)
		return
	}
	if err := o.console.AssignToGroup(ctx, target); err != nil {
		o.logger.Warnf("Completion move for %s failed: %v", group, err)
		o.s.Screenshot(ctx, "completion-move-failed")
		return
	}
	o.logger.Infof("Group %s: %d product(s) moved to %s", group, count, target)
}

func (o *Orchestrator) openMarketSettings(ctx context.Context) error {
	o.s.DismissOverlays(ctx)
	if err := o.s.Navigate(ctx, o.cfg.AppURL+"/market-settings"); err != nil {
		return err
	}
	tabs := types.Chain{
		types.CSS("div.ant-tabs"),
	}
	if err := o.s.WaitVisible(ctx, tabs, 20*time.Second); err != nil {
		return fmt.Errorf("marketplace tabs missing: %w", err)
	}
	return nil
}

func (o *Orchestrator) openRegisteredProducts(ctx context.Context) error {
	o.s.DismissOverlays(ctx)
	if err := o.s.Navigate(ctx, o.cfg.AppURL+"/product/registered"); err != nil {
		return err
	}
	table := types.Chain{
		types.CSS("div.ant-table"),
		types.XPath("//span[contains(text(),'개 상품')]"),
	}
	if err := o.s.WaitVisible(ctx, table, 20*time.Second); err != nil {
		return fmt.Errorf("product table missing: %w", err)
	}
	return nil
}

func (o *Orchestrator) connectMarketplace(ctx context.Context, a *adapters.Adapter, row workbook.Row) error {
	if err := a.SwitchTo(ctx); err != nil {
		return err
	}
	if err := a.InputKeys(ctx, row); err != nil {
		return err
	}
	return a.Validate(ctx, row)
}
