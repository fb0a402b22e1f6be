package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchIntegrator_PercentyAliases(t *testing.T) {
	options := []string{"하미글로벌", "타입비", "기타"}

	idx, ok := MatchIntegrator(options, "퍼센티")

	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestMatchIntegrator_NextEngineAliases(t *testing.T) {
	idx, ok := MatchIntegrator([]string{"NEXT ENGINE"}, "넥스트엔진")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = MatchIntegrator([]string{"하미글로벌"}, "넥스트엔진")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestMatchIntegrator_ExactOnly(t *testing.T) {
	// Substrings of an alias are not matches.
	_, ok := MatchIntegrator([]string{"퍼센티 솔루션", "타입비즈"}, "퍼센티")
	assert.False(t, ok)
}

func TestMatchIntegrator_TrimsWhitespace(t *testing.T) {
	idx, ok := MatchIntegrator([]string{"  퍼센티  "}, "퍼센티")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestMatchIntegrator_UnknownTargetMatchesItself(t *testing.T) {
	idx, ok := MatchIntegrator([]string{"자체연동"}, "자체연동")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = MatchIntegrator([]string{"퍼센티"}, "자체연동")
	assert.False(t, ok)
}

func TestMatchIntegrator_NoOptions(t *testing.T) {
	_, ok := MatchIntegrator(nil, "퍼센티")
	assert.False(t, ok)
}
