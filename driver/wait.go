package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// WaitUntil polls predicate every interval until it reports true or the
// timeout elapses. Predicate errors are logged and treated as "not yet":
// the console frequently re-renders mid-poll and a stale probe is normal.
func (s *Session) WaitUntil(ctx context.Context, what string, timeout, interval time.Duration, predicate func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := predicate(ctx)
		if err != nil {
			s.logger.Debugf("Wait %s: probe error: %v", what, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("waiting for %s exceeded %v: %w", what, timeout, types.ErrTimeout)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitGone waits until no selector in the chain matches any element.
func (s *Session) WaitGone(ctx context.Context, chain types.Chain, timeout time.Duration) error {
	return s.WaitUntil(ctx, "element gone", timeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		return !s.Exists(ctx, chain), nil
	})
}

// WaitVisible waits until some selector in the chain matches.
func (s *Session) WaitVisible(ctx context.Context, chain types.Chain, timeout time.Duration) error {
	_, err := s.Find(ctx, chain, timeout)
	return err
}

// WaitURL waits until the current URL satisfies match.
func (s *Session) WaitURL(ctx context.Context, timeout time.Duration, match func(url string) bool) error {
	return s.WaitUntil(ctx, "url change", timeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		url, err := s.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return match(url), nil
	})
}
