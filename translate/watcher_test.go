package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

func TestAwaitIdle_RequiresTwoConsecutiveIdles(t *testing.T) {
	// The button flickers: idle once before loading kicks in, then loads,
	// then settles. A single idle reading must not end the wait.
	states := []ButtonState{StateIdle, StateLoading, StateLoading, StateIdle, StateIdle}
	calls := 0
	poll := func(ctx context.Context) (ButtonState, error) {
		state := states[calls]
		if calls < len(states)-1 {
			calls++
		}
		return state, nil
	}

	err := AwaitIdle(context.Background(), poll, time.Millisecond, time.Millisecond, time.Second)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 4)
}

func TestAwaitIdle_Timeout(t *testing.T) {
	poll := func(ctx context.Context) (ButtonState, error) {
		return StateLoading, nil
	}

	err := AwaitIdle(context.Background(), poll, time.Millisecond, time.Millisecond, 30*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTimeout))
}

func TestAwaitIdle_PollErrorResetsStreak(t *testing.T) {
	states := []ButtonState{StateIdle, StateUnknown, StateIdle, StateIdle}
	errs := []error{nil, errors.New("stale node"), nil, nil}
	calls := 0
	poll := func(ctx context.Context) (ButtonState, error) {
		i := calls
		if calls < len(states)-1 {
			calls++
		}
		return states[i], errs[i]
	}

	err := AwaitIdle(context.Background(), poll, time.Millisecond, time.Millisecond, time.Second)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAwaitIdle_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	poll := func(ctx context.Context) (ButtonState, error) {
		return StateLoading, nil
	}

	err := AwaitIdle(ctx, poll, 10*time.Millisecond, time.Millisecond, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
}
