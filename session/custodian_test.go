package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

const appURL = "https://www.percenty.co.kr"

func TestClassifyPostLoginURL_Success(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, ClassifyPostLoginURL("https://www.percenty.co.kr/dashboard", appURL))
	assert.Equal(t, OutcomeSuccess, ClassifyPostLoginURL("https://www.percenty.co.kr/product/registered", appURL))
}

func TestClassifyPostLoginURL_ForcedLogin(t *testing.T) {
	assert.Equal(t, OutcomeForcedLogin, ClassifyPostLoginURL("https://www.percenty.co.kr/forced-login", appURL))
	assert.Equal(t, OutcomeForcedLogin, ClassifyPostLoginURL("https://auth.percenty.co.kr/?force_login=1", appURL))
}

func TestClassifyPostLoginURL_Pending(t *testing.T) {
	// Still on the login form, or bounced somewhere unrelated.
	assert.Equal(t, OutcomePending, ClassifyPostLoginURL("https://www.percenty.co.kr/signin", appURL))
	assert.Equal(t, OutcomePending, ClassifyPostLoginURL("https://www.percenty.co.kr/login?next=/dashboard", appURL))
	assert.Equal(t, OutcomePending, ClassifyPostLoginURL("about:blank", appURL))
	assert.Equal(t, OutcomePending, ClassifyPostLoginURL("https://accounts.example.com/sso", appURL))
}

func TestForcedLoginSentinelSurvivesWrapping(t *testing.T) {
	// The retry decision matches with errors.Is, so the sentinel must be
	// recognized through any wrapping the attempt adds.
	assert.ErrorIs(t, types.ErrForcedLogin, types.ErrForcedLogin)
	assert.ErrorIs(t, fmt.Errorf("post-login url never settled: %w", types.ErrForcedLogin), types.ErrForcedLogin)
	assert.NotErrorIs(t, fmt.Errorf("login submit failed: %w", types.ErrTimeout), types.ErrForcedLogin)
}
