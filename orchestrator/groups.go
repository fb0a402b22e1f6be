package orchestrator

import (
	"regexp"
	"strconv"
	"strings"
)

// CompletionGroup maps a working group to its terminal bucket:
// 쇼핑몰A1 → 완료A1 and so on. Unknown groups map to "" (no move).
func CompletionGroup(group string) string {
	const prefix = "쇼핑몰"
	if !strings.HasPrefix(group, prefix) {
		return ""
	}
	suffix := strings.TrimPrefix(group, prefix)
	if suffix == "" {
		return ""
	}
	return "완료" + suffix
}

// WaitGroup maps a translation server group to its waiting bucket:
// 서버1 → 대기1.
func WaitGroup(server string) string {
	const prefix = "서버"
	if !strings.HasPrefix(server, prefix) {
		return ""
	}
	suffix := strings.TrimPrefix(server, prefix)
	if suffix == "" {
		return ""
	}
	return "대기" + suffix
}

// TranslationServers is the fixed server-group cycle of the translation
// rounds workflow.
var TranslationServers = []string{"서버1", "서버2", "서버3"}

var quotaRe = regexp.MustCompile(`([\d,]+)\s*회`)

// ParseQuota extracts the remaining translation allowance from the batch
// modal's quota text (e.g. "잔여 300회"). Returns -1 on parse failure.
func ParseQuota(text string) int {
	m := quotaRe.FindStringSubmatch(text)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return -1
	}
	return n
}

// Both phrasings the modal uses: "선택한 N개" and "N개 선택됨". The count
// must sit next to 선택, or an unrelated "총 N개 상품" line would be read.
var (
	selectedAfterRe  = regexp.MustCompile(`선택[^\d]*([\d,]+)\s*개`)
	selectedBeforeRe = regexp.MustCompile(`([\d,]+)\s*개[^\d]*선택`)
)

// ParseSelectedCount extracts the selected-product count from the batch
// modal. Returns -1 on parse failure.
func ParseSelectedCount(text string) int {
	m := selectedAfterRe.FindStringSubmatch(text)
	if m == nil {
		m = selectedBeforeRe.FindStringSubmatch(text)
	}
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return -1
	}
	return n
}

// QuotaAllows is the batch-translate gate: the start action is dispatched
// only when the parsed quota covers the parsed selection at the moment the
// modal is read. Unknown values never allow.
func QuotaAllows(quota, selected int) bool {
	return quota >= 0 && selected >= 0 && quota >= selected
}
