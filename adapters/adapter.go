package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/controls"
	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
	"github.com/onepick2019/percenty-workbench/modal"
	"github.com/onepick2019/percenty-workbench/workbook"
)

// Marketplace enumerates the seller-console marketplace tabs.
type Marketplace int

const (
	Smartstore Marketplace = iota
	Coupang
	AuctionGmarket
	ElevenstGeneral
	ElevenstGlobal
	LotteOn
	Kakao
	Cafe24
)

// DisconnectOrder is the fixed sequence every row's marketplaces are
// disconnected in before credentials are re-entered.
var DisconnectOrder = []Marketplace{
	Smartstore, Coupang, AuctionGmarket, ElevenstGeneral, ElevenstGlobal, LotteOn, Kakao,
}

// ConnectOrder is the deterministic order credential-bearing marketplaces
// are connected in.
var ConnectOrder = []Marketplace{
	ElevenstGeneral, ElevenstGlobal, AuctionGmarket, Smartstore, Kakao, Coupang,
}

// Spec is the closed-variant description of one marketplace: its tab key,
// label, panel-id convention, credential selector chains and the optional
// side drawer its validation opens.
type Spec struct {
	Market Marketplace
	Key    string // stable tab key
	Label  string // human label shown on the tab

	// panelID follows the console's tab-panel DOM convention.
	panelID string

	// keyInputs locates each credential input inside the active panel, in
	// the order Keys returns values.
	keyInputs []types.Chain

	// sideDrawer processes the marketplace-specific validation side effect.
	// Nil when validation completes inline.
	sideDrawer func(ctx context.Context, a *Adapter, row workbook.Row) error

	// hasCredentials reports whether the row carries the full credential
	// unit for this marketplace.
	hasCredentials func(row workbook.Row) bool

	// keys extracts the credential values in input order.
	keys func(row workbook.Row) []string
}

// PanelChain returns the chain locating the marketplace's tab panel.
func (sp Spec) PanelChain() types.Chain {
	return types.Chain{
		types.CSS(fmt.Sprintf("div[id$='-panel-%s']", sp.panelID)),
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')]", sp.panelID)),
	}
}

// TabChain returns the chain locating the marketplace's tab handle.
func (sp Spec) TabChain() types.Chain {
	return types.Chain{
		types.XPath(fmt.Sprintf("//div[contains(@class,'ant-tabs-tab')][.//*[normalize-space(text())='%s']]", sp.Label)),
		types.CSS(fmt.Sprintf("div[data-node-key='%s']", sp.Key)),
	}
}

// HasCredentials reports whether the row enables this marketplace.
func (sp Spec) HasCredentials(row workbook.Row) bool {
	if sp.hasCredentials == nil {
		return false
	}
	return sp.hasCredentials(row)
}

// specs is the closed set of marketplaces. Cafe24 and the Coupang Wing
// rotation are external journeys (cafe24.go, coupang.go) and carry no tab
// spec here beyond disconnection.
var specs = map[Marketplace]Spec{
	Smartstore: {
		Market:  Smartstore,
		Key:     "smartstore",
		Label:   "스마트스토어",
		panelID: "smartstore",
		keyInputs: []types.Chain{
			{
				types.CSS("div[id$='-panel-smartstore'] input[placeholder*='API']"),
				types.CSS("div[id$='-panel-smartstore'] input[type='text']"),
			},
		},
		sideDrawer:     smartstoreSideDrawer,
		hasCredentials: workbook.Row.HasSmartstore,
		keys:           func(r workbook.Row) []string { return []string{r.SmartstoreKey} },
	},
	Coupang: {
		Market:  Coupang,
		Key:     "coupang",
		Label:   "쿠팡",
		panelID: "coupang",
		keyInputs: []types.Chain{
			{types.CSS("div[id$='-panel-coupang'] input[placeholder*='아이디']"),
				types.XPath("//div[contains(@id,'-panel-coupang')]//input[1]")},
			{types.CSS("div[id$='-panel-coupang'] input[placeholder*='업체코드']"),
				types.XPath("//div[contains(@id,'-panel-coupang')]//input[2]")},
			{types.CSS("div[id$='-panel-coupang'] input[placeholder*='Access']"),
				types.XPath("//div[contains(@id,'-panel-coupang')]//input[3]")},
			{types.CSS("div[id$='-panel-coupang'] input[placeholder*='Secret']"),
				types.XPath("//div[contains(@id,'-panel-coupang')]//input[4]")},
		},
		hasCredentials: workbook.Row.HasCoupang,
		keys: func(r workbook.Row) []string {
			return []string{r.CoupangID, r.CoupangVendorCode, r.CoupangAccessKey, r.CoupangSecretKey}
		},
	},
	AuctionGmarket: {
		Market:  AuctionGmarket,
		Key:     "esm",
		Label:   "옥션/G마켓",
		panelID: "esm",
		keyInputs: []types.Chain{
			// Sibling-of-label selector with an ordinal fallback: the panel
			// labels its two ID inputs but the labels' classes churn.
			{types.XPath("//div[contains(@id,'-panel-esm')]//label[contains(text(),'옥션')]/following-sibling::*//input"),
				types.XPath("//div[contains(@id,'-panel-esm')]//input[1]")},
			{types.XPath("//div[contains(@id,'-panel-esm')]//label[contains(text(),'G마켓')]/following-sibling::*//input"),
				types.XPath("//div[contains(@id,'-panel-esm')]//input[2]")},
		},
		sideDrawer:     auctionGmarketSideDrawer,
		hasCredentials: workbook.Row.HasAuctionGmarket,
		keys:           func(r workbook.Row) []string { return []string{r.AuctionID, r.GmarketID} },
	},
	ElevenstGeneral: {
		Market:  ElevenstGeneral,
		Key:     "11st-general",
		Label:   "11번가-일반",
		panelID: "11st-general",
		keyInputs: []types.Chain{
			{types.CSS("div[id$='-panel-11st-general'] input[placeholder*='API']"),
				types.CSS("div[id$='-panel-11st-general'] input[type='text']")},
		},
		sideDrawer:     elevenstSideDrawer,
		hasCredentials: workbook.Row.HasElevenstGeneral,
		keys:           func(r workbook.Row) []string { return []string{r.ElevenstGeneralKey} },
	},
	ElevenstGlobal: {
		Market:  ElevenstGlobal,
		Key:     "11st-global",
		Label:   "11번가-글로벌",
		panelID: "11st-global",
		keyInputs: []types.Chain{
			{types.CSS("div[id$='-panel-11st-global'] input[placeholder*='API']"),
				types.CSS("div[id$='-panel-11st-global'] input[type='text']")},
		},
		sideDrawer:     elevenstSideDrawer,
		hasCredentials: workbook.Row.HasElevenstGlobal,
		keys:           func(r workbook.Row) []string { return []string{r.ElevenstGlobalKey} },
	},
	LotteOn: {
		Market:  LotteOn,
		Key:     "lotteon",
		Label:   "롯데온",
		panelID: "lotteon",
	},
	Kakao: {
		Market:  Kakao,
		Key:     "kakao",
		Label:   "톡스토어",
		panelID: "kakao",
		keyInputs: []types.Chain{
			{types.CSS("div[id$='-panel-kakao'] input[placeholder*='API']"),
				types.XPath("//div[contains(@id,'-panel-kakao')]//input[1]")},
			{types.CSS("div[id$='-panel-kakao'] input[placeholder*='주소']"),
				types.XPath("//div[contains(@id,'-panel-kakao')]//input[2]")},
		},
		hasCredentials: workbook.Row.HasKakao,
		keys:           func(r workbook.Row) []string { return []string{r.KakaoKey, r.KakaoStoreURL} },
	},
}

// SpecFor returns the spec for a marketplace.
func SpecFor(m Marketplace) Spec { return specs[m] }

// Adapter drives one marketplace tab of the marketplace-settings screen.
type Adapter struct {
	spec   Spec
	s      *driver.Session
	ctrl   *controls.Controller
	modals *modal.Coordinator
	logger types.Logger
}

// New creates an adapter for the given marketplace.
func New(m Marketplace, s *driver.Session, ctrl *controls.Controller, modals *modal.Coordinator) *Adapter {
	return &Adapter{
		spec:   specs[m],
		s:      s,
		ctrl:   ctrl,
		modals: modals,
		logger: s.Logger(),
	}
}

// Name returns the human label.
func (a *Adapter) Name() string { return a.spec.Label }

// SwitchTo clicks the marketplace tab and waits until its panel is
// populated (a button or form exists inside it).
func (a *Adapter) SwitchTo(ctx context.Context) error {
	a.s.DismissOverlays(ctx)
	if err := a.s.Click(ctx, a.spec.TabChain(), a.s.Config().Timeout); err != nil {
		return fmt.Errorf("failed to open %s tab: %w", a.spec.Label, err)
	}
	populated := types.Chain{
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')][.//button or .//form]", a.spec.panelID)),
	}
	if err := a.s.WaitVisible(ctx, populated, 15*time.Second); err != nil {
		return fmt.Errorf("%s panel did not populate: %w", a.spec.Label, err)
	}
	return nil
}

// InputKeys locates each credential input within the active panel, clears
// it and types the row's value.
func (a *Adapter) InputKeys(ctx context.Context, row workbook.Row) error {
	if a.spec.keys == nil {
		return nil
	}
	values := a.spec.keys(row)
	if len(values) != len(a.spec.keyInputs) {
		return fmt.Errorf("%s: %d values for %d inputs", a.spec.Label, len(values), len(a.spec.keyInputs))
	}
	for i, chain := range a.spec.keyInputs {
		if err := a.s.Type(ctx, chain, values[i], true); err != nil {
			return fmt.Errorf("%s: input %d failed: %w", a.spec.Label, i+1, err)
		}
	}
	a.logger.Infof("%s: %d credential value(s) entered", a.spec.Label, len(values))
	return nil
}

// Validate presses the panel's API 검증 button and processes the
// marketplace-specific side drawer. The invariant is that any side drawer
// opened here is closed, by submit, cancel or forced close, before
// Validate returns.
func (a *Adapter) Validate(ctx context.Context, row workbook.Row) error {
	validate := types.Chain{
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')]//button[.//span[contains(text(),'API 검증')]]", a.spec.panelID)),
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')]//button[contains(.,'검증')]", a.spec.panelID)),
	}
	if err := a.s.Click(ctx, validate, a.s.Config().Timeout); err != nil {
		return fmt.Errorf("%s: validation button not clickable: %w", a.spec.Label, err)
	}
	if a.spec.sideDrawer == nil {
		return nil
	}
	err := a.spec.sideDrawer(ctx, a, row)
	if err != nil {
		// The drawer must not outlive the adapter call.
		if cerr := a.modals.CloseTop(ctx); cerr != nil {
			a.logger.Warnf("%s: side drawer force close failed: %v", a.spec.Label, cerr)
		}
		return fmt.Errorf("%s: side drawer failed: %w", a.spec.Label, err)
	}
	return nil
}

// Disconnect presses API 연결 끊기 and confirms the dangerous-action
// dialog. A missing disconnect button means the marketplace was never
// connected, which is not an error.
func (a *Adapter) Disconnect(ctx context.Context) error {
	disconnect := types.Chain{
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')]//button[.//span[contains(text(),'API 연결 끊기')]]", a.spec.panelID)),
		types.XPath(fmt.Sprintf("//div[contains(@id,'-panel-%s')]//button[contains(.,'연결 끊기')]", a.spec.panelID)),
	}
	if !a.s.Exists(ctx, disconnect) {
		a.logger.Debugf("%s: no disconnect button, nothing connected", a.spec.Label)
		return nil
	}
	if err := a.s.Click(ctx, disconnect, a.s.Config().Timeout); err != nil {
		return fmt.Errorf("%s: disconnect button not clickable: %w", a.spec.Label, err)
	}
	if _, err := a.modals.WaitAny(ctx, 10*time.Second, modal.ShapeConfirm, modal.ShapeModal); err != nil {
		return fmt.Errorf("%s: disconnect confirmation missing: %w", a.spec.Label, err)
	}
	if err := a.modals.ConfirmDanger(ctx); err != nil {
		return fmt.Errorf("%s: disconnect confirm failed: %w", a.spec.Label, err)
	}
	a.logger.Infof("%s: API connection severed", a.spec.Label)
	return nil
}
