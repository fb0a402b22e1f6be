package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionValue_SinglePosition(t *testing.T) {
	actions, err := ParseActionValue("3")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, Exact, actions[0].Kind)
	assert.Equal(t, 3, actions[0].N)
}

func TestParseActionValue_FirstN(t *testing.T) {
	actions, err := ParseActionValue("first:2")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, FirstN, actions[0].Kind)
	assert.Equal(t, 2, actions[0].N)
}

func TestParseActionValue_LastN(t *testing.T) {
	actions, err := ParseActionValue("last:5")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, LastN, actions[0].Kind)
	assert.Equal(t, 5, actions[0].N)
}

func TestParseActionValue_SpecificAll(t *testing.T) {
	actions, err := ParseActionValue("specific:all")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, SpecificAll, actions[0].Kind)
}

func TestParseActionValue_AutoDetect(t *testing.T) {
	actions, err := ParseActionValue("auto_detect_chinese")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AutoDetectChinese, actions[0].Kind)
}

func TestParseActionValue_CommaList(t *testing.T) {
	actions, err := ParseActionValue("1,3,specific:7")

	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, Exact, actions[0].Kind)
	assert.Equal(t, 1, actions[0].N)
	assert.Equal(t, Exact, actions[1].Kind)
	assert.Equal(t, 3, actions[1].N)
	assert.Equal(t, Specific, actions[2].Kind)
	assert.Equal(t, 7, actions[2].N)
}

func TestParseActionValue_Composite(t *testing.T) {
	actions, err := ParseActionValue("first:2/last:9")

	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, FirstN, actions[0].Kind)
	assert.Equal(t, 2, actions[0].N)
	assert.Equal(t, LastN, actions[1].Kind)
	assert.Equal(t, 9, actions[1].N)
}

func TestParseActionValue_Invalid(t *testing.T) {
	_, err := ParseActionValue("first:zero")
	assert.Error(t, err)

	_, err = ParseActionValue("0")
	assert.Error(t, err)

	_, err = ParseActionValue("specific:-1")
	assert.Error(t, err)

	_, err = ParseActionValue("")
	assert.Error(t, err)
}

func TestSequentialAll(t *testing.T) {
	actions, err := ParseActionValue("auto_detect_chinese")
	require.NoError(t, err)
	assert.True(t, SequentialAll(actions))

	actions, err = ParseActionValue("specific:all")
	require.NoError(t, err)
	assert.True(t, SequentialAll(actions))

	actions, err = ParseActionValue("1,first:3")
	require.NoError(t, err)
	assert.False(t, SequentialAll(actions))
}

func TestPositions_OrderAndDedupe(t *testing.T) {
	actions, err := ParseActionValue("3,first:2,3")
	require.NoError(t, err)

	positions := Positions(actions, 10)

	assert.Equal(t, []int{3, 1, 2}, positions)
}

func TestPositions_ClampedToTotal(t *testing.T) {
	actions, err := ParseActionValue("first:5,last:9")
	require.NoError(t, err)

	positions := Positions(actions, 3)

	assert.Equal(t, []int{1, 2, 3}, positions)
}

func TestPositions_LastIsNth(t *testing.T) {
	actions, err := ParseActionValue("last:4")
	require.NoError(t, err)

	positions := Positions(actions, 10)

	assert.Equal(t, []int{4}, positions)
}
