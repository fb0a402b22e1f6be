package controls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTotalCount(t *testing.T) {
	assert.Equal(t, 0, ParseTotalCount("총 0개 상품"))
	assert.Equal(t, 42, ParseTotalCount("총 42개 상품"))
	assert.Equal(t, 1234, ParseTotalCount("총 1,234개 상품"))
	assert.Equal(t, 1234567, ParseTotalCount("총 1,234,567개 상품"))
}

func TestParseTotalCount_WithSurroundingText(t *testing.T) {
	assert.Equal(t, 87, ParseTotalCount("검색 결과 총 87개 상품이 있습니다"))
}

func TestParseTotalCount_Malformed(t *testing.T) {
	assert.Equal(t, -1, ParseTotalCount(""))
	assert.Equal(t, -1, ParseTotalCount("상품이 없습니다"))
	assert.Equal(t, -1, ParseTotalCount("총 개 상품"))
	assert.Equal(t, -1, ParseTotalCount("total 5 products"))
}

func TestFormatTotalCount(t *testing.T) {
	assert.Equal(t, "총 0개 상품", FormatTotalCount(0))
	assert.Equal(t, "총 999개 상품", FormatTotalCount(999))
	assert.Equal(t, "총 1,000개 상품", FormatTotalCount(1000))
	assert.Equal(t, "총 12,345,678개 상품", FormatTotalCount(12345678))
}

func TestParseTotalCount_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 49, 50, 999, 1000, 54321, 1000000} {
		assert.Equal(t, n, ParseTotalCount(FormatTotalCount(n)))
	}
}
