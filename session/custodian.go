package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onepick2019/percenty-workbench/driver"
	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Outcome classifies the URL the console lands on after a login submit.
type Outcome int

const (
	// OutcomePending means the URL is neither success nor failure yet.
	OutcomePending Outcome = iota
	// OutcomeSuccess means the main console loaded.
	OutcomeSuccess
	// OutcomeForcedLogin means the forced-login page appeared.
	OutcomeForcedLogin
)

// ClassifyPostLoginURL maps a post-submit URL onto an outcome. Landing on
// the main console is success; the forced-login page is fatal; anything
// else is still pending.
func ClassifyPostLoginURL(url, appURL string) Outcome {
	switch {
	case strings.Contains(url, "/forced-login") || strings.Contains(url, "force_login"):
		return OutcomeForcedLogin
	case strings.HasPrefix(url, appURL) && !strings.Contains(url, "/signin") && !strings.Contains(url, "/login"):
		return OutcomeSuccess
	default:
		return OutcomePending
	}
}

// Custodian owns login, post-login cleanup and verified logout for the
// console session.
type Custodian struct {
	s      *driver.Session
	cfg    *types.Config
	logger types.Logger
}

// New binds a custodian to the session.
func New(s *driver.Session) *Custodian {
	return &Custodian{s: s, cfg: s.Config(), logger: s.Logger()}
}

var (
	idInputChain = types.Chain{
		types.CSS("input#email"),
		types.CSS("input[type='email']"),
		types.CSS("form input[type='text']"),
	}
	pwInputChain = types.Chain{
		types.CSS("input#password"),
		types.CSS("input[type='password']"),
	}
	loginButtonChain = types.Chain{
		types.XPath("//button[.//span[contains(text(),'로그인')]]"),
		types.CSS("button[type='submit']"),
	}
	userMenuChain = types.Chain{
		types.CSS("header .ant-dropdown-trigger"),
		types.CSS("header .ant-avatar"),
	}
	logoutItemChain = types.Chain{
		types.XPath("//li[contains(.,'로그아웃')]"),
		types.XPath("//a[contains(.,'로그아웃')]"),
	}
)

// Login submits credentials and inspects the post-submit URL for up to 15
// seconds. A forced-login bounce triggers exactly one cookie+session reset
// and retry; a second bounce aborts the row.
func (c *Custodian) Login(ctx context.Context, id, password string) error {
	if err := c.attempt(ctx, id, password); err == nil {
		c.postLoginCleanup(ctx)
		return nil
	} else if errors.Is(err, types.ErrForcedLogin) {
		c.logger.Warn("Forced-login page detected, resetting session for the single retry")
	} else {
		// Non-forced failure: reset and retry once as well.
		c.logger.Warnf("Login attempt failed (%v), resetting session and retrying", err)
	}

	if err := c.s.ResetSession(ctx); err != nil {
		return err
	}
	if err := c.s.Navigate(ctx, c.cfg.LoginURL); err != nil {
		return err
	}
	if err := c.attempt(ctx, id, password); err != nil {
		return fmt.Errorf("login failed after session reset: %w", types.ErrForcedLogin)
	}
	c.postLoginCleanup(ctx)
	return nil
}

func (c *Custodian) attempt(ctx context.Context, id, password string) error {
	if err := c.s.Navigate(ctx, c.cfg.LoginURL); err != nil {
		return err
	}
	if err := c.s.Type(ctx, idInputChain, id, true); err != nil {
		return fmt.Errorf("id input failed: %w", err)
	}
	if err := c.s.Type(ctx, pwInputChain, password, true); err != nil {
		return fmt.Errorf("password input failed: %w", err)
	}
	if err := c.s.Click(ctx, loginButtonChain, c.cfg.Timeout); err != nil {
		return fmt.Errorf("login submit failed: %w", err)
	}

	var outcome Outcome
	err := c.s.WaitUntil(ctx, "post-login url", 15*time.Second, c.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		url, err := c.s.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		outcome = ClassifyPostLoginURL(url, c.cfg.AppURL)
		return outcome != OutcomePending, nil
	})
	if err != nil {
		return fmt.Errorf("post-login url never settled: %w", err)
	}
	if outcome == OutcomeForcedLogin {
		return types.ErrForcedLogin
	}
	c.logger.Infof("Login succeeded for %s", id)
	return nil
}

// postLoginCleanup dismisses the announcement/consultation modals the
// console shows right after login.
func (c *Custodian) postLoginCleanup(ctx context.Context) {
	c.s.Sleep(ctx, c.cfg.AnimationDelay)
	c.s.DismissOverlays(ctx)
}

// Logout clicks the user menu then the logout affordance and confirms by
// URL. Up to ten attempts interleaved with refreshes; after the final
// failure the run proceeds regardless and the custodian closes the tab.
func (c *Custodian) Logout(ctx context.Context) {
	loggedOut := func(url string) bool {
		return strings.Contains(url, "/signin") || strings.Contains(url, "/login") ||
			strings.Contains(url, "auth.")
	}
	for attempt := 1; attempt <= 10; attempt++ {
		cur, err := c.s.CurrentURL(ctx)
		if err == nil && loggedOut(cur) {
			c.logger.Infof("Logout verified on attempt %d", attempt)
			return
		}
		if err := c.s.Click(ctx, userMenuChain, 3*time.Second); err != nil {
			c.logger.Debugf("Logout attempt %d: user menu missing: %v", attempt, err)
		} else if err := c.s.Click(ctx, logoutItemChain, 3*time.Second); err != nil {
			c.logger.Debugf("Logout attempt %d: logout item missing: %v", attempt, err)
		}
		c.s.Sleep(ctx, c.cfg.PollInterval)
		if attempt%3 == 0 {
			if err := c.s.Navigate(ctx, c.cfg.AppURL); err != nil {
				c.logger.Debugf("Refresh during logout failed: %v", err)
			}
		}
	}
	c.logger.Warn("Logout unverified after 10 attempts, proceeding")
	if err := c.s.CloseStrayWindows(ctx); err != nil {
		c.logger.Debugf("Window cleanup after logout: %v", err)
	}
}
