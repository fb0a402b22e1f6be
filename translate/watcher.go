package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// ButtonState is the observed state of the one-click-translation button.
type ButtonState int

const (
	StateUnknown ButtonState = iota
	StateLoading
	StateIdle
)

// AwaitIdle watches the translation button until it reads idle on two
// consecutive polls at least minGap apart. The double observation defeats
// the flicker during the button's click-to-loading transition. Bounded by
// timeout.
func AwaitIdle(ctx context.Context, poll func(context.Context) (ButtonState, error), interval, minGap, timeout time.Duration) error {
	if interval < minGap {
		interval = minGap
	}
	deadline := time.Now().Add(timeout)
	consecutiveIdle := 0
	for {
		state, err := poll(ctx)
		if err != nil {
			consecutiveIdle = 0
		} else if state == StateIdle {
			consecutiveIdle++
			if consecutiveIdle >= 2 {
				return nil
			}
		} else {
			consecutiveIdle = 0
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("translation did not complete within %v: %w", timeout, types.ErrTimeout)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
