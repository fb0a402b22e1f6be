package driver

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

func TestIsNotClickable(t *testing.T) {
	assert.True(t, isNotClickable(errors.New("element is not clickable at point (10, 20)")))
	assert.True(t, isNotClickable(errors.New("node is not visible")))
	assert.True(t, isNotClickable(errors.New("click intercepted by overlay")))
	assert.True(t, isNotClickable(errors.New("could not compute box model")))
	assert.True(t, isNotClickable(errors.New("context deadline exceeded")))
}

func TestIsNotClickable_OtherErrors(t *testing.T) {
	assert.False(t, isNotClickable(nil))
	assert.False(t, isNotClickable(errors.New("net::ERR_CONNECTION_REFUSED")))
	assert.False(t, isNotClickable(errors.New("invalid selector")))
}

func TestJsClickScript_CSS(t *testing.T) {
	script := jsClickScript(types.CSS("button.submit"))

	assert.Contains(t, script, "document.querySelector")
	assert.Contains(t, script, `"button.submit"`)
	assert.NotContains(t, script, "document.evaluate")
}

func TestJsClickScript_XPath(t *testing.T) {
	script := jsClickScript(types.XPath("//button[contains(.,'저장')]"))

	assert.Contains(t, script, "document.evaluate")
	assert.True(t, strings.Contains(script, "저장"))
}
