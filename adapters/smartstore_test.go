package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsLoginPath(t *testing.T) {
	assert.True(t, containsLoginPath("https://sell.smartstore.naver.com/#/login?returnUrl=x"))
	assert.True(t, containsLoginPath("https://nid.naver.com/nidlogin.login"))
	assert.True(t, containsLoginPath("https://accounts.example.com/signin"))
	assert.False(t, containsLoginPath("https://sell.smartstore.naver.com/#/home/dashboard"))
}
