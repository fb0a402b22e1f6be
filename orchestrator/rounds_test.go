package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// fakeConsole simulates the registered-products screen. Counts shrink as
// deletes and uploads run; every mutation is recorded for assertions.
type fakeConsole struct {
	counts       []int // consumed left to right by TotalCount
	countIdx     int
	group        string
	status       string
	market       string
	pageSizes    []int
	selectAlls   int
	searches     int
	deletes      []bool // firstRound flag per call
	uploads      int
	uploadRecov  map[int]bool // upload call number → recovered
	assigns      []string
	translates   int
	translateErr error
	groupCounts  map[string][]int
}

func (f *fakeConsole) TotalCount(ctx context.Context) int {
	if f.groupCounts != nil {
		counts := f.groupCounts[f.group]
		if len(counts) == 0 {
			return 0
		}
		n := counts[0]
		f.groupCounts[f.group] = counts[1:]
		return n
	}
	if f.countIdx >= len(f.counts) {
		return 0
	}
	n := f.counts[f.countIdx]
	f.countIdx++
	return n
}

func (f *fakeConsole) SetPageSize(ctx context.Context, size int) error {
	f.pageSizes = append(f.pageSizes, size)
	return nil
}

func (f *fakeConsole) SelectAll(ctx context.Context) error {
	f.selectAlls++
	return nil
}

func (f *fakeConsole) SelectGroup(ctx context.Context, group string) error {
	f.group = group
	return nil
}

func (f *fakeConsole) SelectStatus(ctx context.Context, status string) error {
	f.status = status
	return nil
}

func (f *fakeConsole) SelectMarket(ctx context.Context, label string) error {
	f.market = label
	return nil
}

func (f *fakeConsole) RunSearch(ctx context.Context) error {
	f.searches++
	return nil
}

func (f *fakeConsole) DeleteSelected(ctx context.Context, firstRound bool) error {
	f.deletes = append(f.deletes, firstRound)
	return nil
}

func (f *fakeConsole) UploadSelected(ctx context.Context) (bool, error) {
	f.uploads++
	return f.uploadRecov[f.uploads], nil
}

func (f *fakeConsole) AssignToGroup(ctx context.Context, group string) error {
	f.assigns = append(f.assigns, group)
	return nil
}

func (f *fakeConsole) BatchTranslate(ctx context.Context) error {
	f.translates++
	return f.translateErr
}

func testConfig() *types.Config {
	cfg := types.DefaultConfig()
	cfg.MaxRounds = 10
	cfg.PageSize = 50
	return cfg
}

func TestDeleteRounds_EmptyListSucceedsImmediately(t *testing.T) {
	console := &fakeConsole{counts: []int{0}}

	err := DeleteRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Empty(t, console.deletes)
	assert.Zero(t, console.selectAlls)
}

func TestDeleteRounds_ScopeOnlyOnFirstRound(t *testing.T) {
	console := &fakeConsole{counts: []int{120, 70, 20, 0}}

	err := DeleteRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, console.deletes)
	assert.Equal(t, 3, console.searches)
	assert.Equal(t, []int{50, 50, 50}, console.pageSizes)
}

func TestDeleteRounds_CapIsHonored(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRounds = 3
	console := &fakeConsole{counts: []int{99, 99, 99, 99, 99}}

	err := DeleteRounds(context.Background(), console, cfg, logrus.New())

	require.NoError(t, err)
	assert.Len(t, console.deletes, 3)
}

func TestUploadRounds_FiltersThenLoops(t *testing.T) {
	console := &fakeConsole{counts: []int{80, 30, 0}}

	err := UploadRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, "미업로드", console.status)
	assert.Equal(t, "11번가", console.market)
	assert.Equal(t, 2, console.uploads)
}

func TestUploadRounds_ForcedCloseEndsLoop(t *testing.T) {
	console := &fakeConsole{
		counts:      []int{80, 60, 40},
		uploadRecov: map[int]bool{2: true},
	}

	err := UploadRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, 2, console.uploads)
}

func TestTranslationRounds_FullCycle(t *testing.T) {
	console := &fakeConsole{
		groupCounts: map[string][]int{
			"서버1": {40},
			"서버2": {25},
			"서버3": {10},
		},
	}

	err := TranslationRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, 3, console.translates)
	assert.Equal(t, []string{"대기1", "대기2", "대기3"}, console.assigns)
	// Select-all runs before the translate and again before the move.
	assert.Equal(t, 6, console.selectAlls)
}

func TestTranslationRounds_EmptyServerSkipped(t *testing.T) {
	console := &fakeConsole{
		groupCounts: map[string][]int{
			"서버1": {0},
			"서버2": {15},
			"서버3": {0},
		},
	}

	err := TranslationRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, 1, console.translates)
	assert.Equal(t, []string{"대기2"}, console.assigns)
}

func TestTranslationRounds_QuotaShortfallIsASkip(t *testing.T) {
	console := &fakeConsole{
		groupCounts: map[string][]int{
			"서버1": {40},
			"서버2": {25},
		},
		translateErr: types.ErrQuotaInsufficient,
	}

	err := TranslationRounds(context.Background(), console, testConfig(), logrus.New())

	require.NoError(t, err)
	assert.Equal(t, 1, console.translates)
	assert.Empty(t, console.assigns)
}

func TestTranslationRounds_OtherErrorPropagates(t *testing.T) {
	boom := errors.New("modal never opened")
	console := &fakeConsole{
		groupCounts:  map[string][]int{"서버1": {40}},
		translateErr: boom,
	}

	err := TranslationRounds(context.Background(), console, testConfig(), logrus.New())

	assert.ErrorIs(t, err, boom)
}
