package types

import (
	"errors"
	"time"
)

// SelectorKind distinguishes the two selector syntaxes the driver accepts.
type SelectorKind int

const (
	SelCSS SelectorKind = iota
	SelXPath
)

// Selector is one entry of a fallback chain. The target console renames
// classes between releases, so every lookup carries alternatives.
type Selector struct {
	Kind  SelectorKind
	Query string
}

// CSS builds a CSS selector entry.
func CSS(query string) Selector { return Selector{Kind: SelCSS, Query: query} }

// XPath builds an XPath selector entry.
func XPath(query string) Selector { return Selector{Kind: SelXPath, Query: query} }

// Chain is an ordered selector fallback chain. The driver tries entries in
// order and returns on the first match.
type Chain []Selector

// Queries returns the raw query strings, used for error reporting.
func (c Chain) Queries() []string {
	out := make([]string, 0, len(c))
	for _, s := range c {
		out = append(out, s.Query)
	}
	return out
}

// Named outcome errors. Components return these instead of blanket failures
// so the orchestrator can decide continue/skip/abort per step.
var (
	// ErrSelectorExhausted means every selector in a chain missed.
	ErrSelectorExhausted = errors.New("selector chain exhausted")
	// ErrClickIntercepted means all click strategies failed on a found element.
	ErrClickIntercepted = errors.New("click intercepted")
	// ErrModalAbsent means an expected modal never appeared after its trigger.
	ErrModalAbsent = errors.New("modal absent after trigger")
	// ErrQuotaInsufficient is expected control flow: the translation quota is
	// smaller than the selected product count, so the batch is skipped.
	ErrQuotaInsufficient = errors.New("translation quota insufficient")
	// ErrForcedLogin means the console bounced the session to its forced-login
	// page. Fatal for the row after one session reset.
	ErrForcedLogin = errors.New("forced login page detected")
	// ErrTimeout wraps bounded waits that ran out.
	ErrTimeout = errors.New("wait timed out")
	// ErrNothingToDo is returned when a phase finds zero eligible items.
	ErrNothingToDo = errors.New("nothing to do")
)

// Config holds the runtime configuration for a workbench run.
type Config struct {
	AppURL          string        // Percenty console base URL
	LoginURL        string        // login page URL
	Headless        bool
	UserAgent       string
	Timeout         time.Duration // default bound for element waits
	PollInterval    time.Duration // predicate poll spacing
	AnimationDelay  time.Duration // fixed settle for modal animations, kept under 1s
	UploadTimeout   time.Duration // upload progress budget
	TranslateAwait  time.Duration // one-click translation completion bound
	BrowserSpawn    time.Duration // browser creation join budget
	MaxRounds       int           // upload/delete round cap per group
	PageSize        int           // product list page size
	SourceCDN       string        // detail-image source CDN prefix
	CourierName     string        // courier selected in shipping drawers
	ScreenshotDir   string
	LogDir          string
	WorkbookPath    string
	MinOCRConfident float64 // OCR text-block acceptance threshold (0-100)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AppURL:          "https://www.percenty.co.kr",
		LoginURL:        "https://www.percenty.co.kr/signin",
		Headless:        false,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Timeout:         30 * time.Second,
		PollInterval:    500 * time.Millisecond,
		AnimationDelay:  700 * time.Millisecond,
		UploadTimeout:   30 * time.Minute,
		TranslateAwait:  20 * time.Second,
		BrowserSpawn:    60 * time.Second,
		MaxRounds:       10,
		PageSize:        50,
		SourceCDN:       "https://cbu01.alicdn.com/img",
		CourierName:     "롯데택배",
		ScreenshotDir:   "screenshots",
		LogDir:          "logs",
		MinOCRConfident: 30,
	}
}

// Logger defines the logging interface.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// StepResult records one orchestrator step for the run summary.
type StepResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// RowResult aggregates adapter outcomes for one configuration row.
type RowResult struct {
	LoginID   string       `json:"login_id"`
	GroupName string       `json:"group_name"`
	Steps     []StepResult `json:"steps"`
	Fatal     string       `json:"fatal,omitempty"`
}

// RunSummary is the user-visible result of a whole run.
type RunSummary struct {
	Accounts int         `json:"accounts"`
	Rows     []RowResult `json:"rows"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
}
