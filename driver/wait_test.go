package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

func testSession() *Session {
	return &Session{cfg: types.DefaultConfig(), logger: logrus.New()}
}

func TestWaitUntil_LateAppearanceIsCaught(t *testing.T) {
	// An element that renders a beat after its trigger must still be seen:
	// the wait keeps polling until the deadline, not just once.
	s := testSession()
	polls := 0
	err := s.WaitUntil(context.Background(), "late element", time.Second, time.Millisecond, func(ctx context.Context) (bool, error) {
		polls++
		return polls >= 4, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, polls)
}

func TestWaitUntil_Timeout(t *testing.T) {
	s := testSession()
	err := s.WaitUntil(context.Background(), "never", 20*time.Millisecond, time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTimeout))
}

func TestWaitUntil_ProbeErrorsAreNotYet(t *testing.T) {
	// A stale probe mid-render is normal; errors must not abort the wait.
	s := testSession()
	polls := 0
	err := s.WaitUntil(context.Background(), "flaky probe", time.Second, time.Millisecond, func(ctx context.Context) (bool, error) {
		polls++
		if polls < 3 {
			return false, errors.New("node detached")
		}
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
}

func TestWaitUntil_ContextCancelled(t *testing.T) {
	s := testSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.WaitUntil(ctx, "cancelled", time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
