package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionGroup(t *testing.T) {
	assert.Equal(t, "완료A1", CompletionGroup("쇼핑몰A1"))
	assert.Equal(t, "완료B3", CompletionGroup("쇼핑몰B3"))
	assert.Equal(t, "완료C12", CompletionGroup("쇼핑몰C12"))
}

func TestCompletionGroup_Unknown(t *testing.T) {
	assert.Equal(t, "", CompletionGroup("서버1"))
	assert.Equal(t, "", CompletionGroup("쇼핑몰"))
	assert.Equal(t, "", CompletionGroup("완료A1"))
	assert.Equal(t, "", CompletionGroup(""))
}

func TestWaitGroup(t *testing.T) {
	assert.Equal(t, "대기1", WaitGroup("서버1"))
	assert.Equal(t, "대기3", WaitGroup("서버3"))
	assert.Equal(t, "", WaitGroup("쇼핑몰A1"))
	assert.Equal(t, "", WaitGroup("서버"))
}

func TestParseQuota(t *testing.T) {
	assert.Equal(t, 300, ParseQuota("잔여 이미지 번역 300회"))
	assert.Equal(t, 1500, ParseQuota("이번 달 남은 횟수: 1,500회"))
	assert.Equal(t, 0, ParseQuota("잔여 0회"))
	assert.Equal(t, -1, ParseQuota("잔여 횟수 없음"))
	assert.Equal(t, -1, ParseQuota(""))
}

func TestParseSelectedCount(t *testing.T) {
	assert.Equal(t, 120, ParseSelectedCount("선택한 120개 상품을 번역합니다"))
	assert.Equal(t, 2000, ParseSelectedCount("2,000개 선택됨"))
	assert.Equal(t, -1, ParseSelectedCount("선택된 상품 없음"))
}

func TestParseSelectedCount_IgnoresUnrelatedCounts(t *testing.T) {
	// The modal body can carry a "총 N개 상품" line before the selection
	// phrase; only the count next to 선택 is the selection.
	body := "총 500개 상품\n선택한 120개 상품을 번역합니다\n잔여 300회"
	assert.Equal(t, 120, ParseSelectedCount(body))

	body = "총 500개 상품이 있습니다. 2,000개 선택됨"
	assert.Equal(t, 2000, ParseSelectedCount(body))

	// No selection phrase at all: unknown, which never passes the gate.
	assert.Equal(t, -1, ParseSelectedCount("총 500개 상품"))
}

func TestQuotaAllows(t *testing.T) {
	assert.True(t, QuotaAllows(300, 120))
	assert.True(t, QuotaAllows(120, 120))
	assert.True(t, QuotaAllows(0, 0))

	// Quota 100 cannot cover 120 selected products.
	assert.False(t, QuotaAllows(100, 120))

	// Unparsed values never allow a batch start.
	assert.False(t, QuotaAllows(-1, 120))
	assert.False(t, QuotaAllows(300, -1))
	assert.False(t, QuotaAllows(-1, -1))
}
