package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord(t *testing.T) {
	record := []string{
		"seller1@example.com", "쇼핑몰A1",
		"11g-key", "11gl-key",
		"auc-id", "gm-id",
		"kakao-key", "https://store.kakao.com/shop1",
		"ss-key", "ss-id", "ss-pw",
		"cp-id", "cp-vendor", "cp-access", "cp-secret", "cp-pw",
		"서버1", "cafe24-id", "cafe24-pw",
		"zc3ejtp",
	}

	row := FromRecord(record)

	assert.Equal(t, "seller1@example.com", row.LoginID)
	assert.Equal(t, "쇼핑몰A1", row.GroupName)
	assert.Equal(t, "11g-key", row.ElevenstGeneralKey)
	assert.Equal(t, "gm-id", row.GmarketID)
	assert.Equal(t, "https://store.kakao.com/shop1", row.KakaoStoreURL)
	assert.Equal(t, "cp-secret", row.CoupangSecretKey)
	assert.Equal(t, "cafe24-pw", row.Cafe24PW)
	assert.Equal(t, "zc3ejtp", row.ElevenstStoreID)
}

func TestFromRecord_ShortRecord(t *testing.T) {
	row := FromRecord([]string{"seller1@example.com", "쇼핑몰B2", "11g-key"})

	assert.Equal(t, "seller1@example.com", row.LoginID)
	assert.Equal(t, "11g-key", row.ElevenstGeneralKey)
	assert.Empty(t, row.SmartstoreKey)
	assert.Empty(t, row.ElevenstStoreID)
}

func TestFromRecord_TrimsCells(t *testing.T) {
	row := FromRecord([]string{" seller1@example.com ", " 쇼핑몰A1 "})

	assert.Equal(t, "seller1@example.com", row.LoginID)
	assert.Equal(t, "쇼핑몰A1", row.GroupName)
}

func TestGroupRows_PreservesOrder(t *testing.T) {
	rows := []Row{
		{LoginID: "a", GroupName: "쇼핑몰A1"},
		{LoginID: "b", GroupName: "쇼핑몰B1"},
		{LoginID: "c", GroupName: "쇼핑몰A1"},
		{LoginID: "d", GroupName: "쇼핑몰C1"},
	}

	groups := GroupRows(rows)

	require.Len(t, groups, 3)
	assert.Equal(t, "쇼핑몰A1", groups[0].Name)
	assert.Equal(t, "쇼핑몰B1", groups[1].Name)
	assert.Equal(t, "쇼핑몰C1", groups[2].Name)
	require.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "a", groups[0].Rows[0].LoginID)
	assert.Equal(t, "c", groups[0].Rows[1].LoginID)
}

func TestAccountIDs_DistinctFirstSeen(t *testing.T) {
	rows := []Row{
		{LoginID: "b"}, {LoginID: "a"}, {LoginID: "b"}, {LoginID: "c"},
	}

	assert.Equal(t, []string{"b", "a", "c"}, AccountIDs(rows))
}

func TestRowsForAccount(t *testing.T) {
	rows := []Row{
		{LoginID: "a", GroupName: "쇼핑몰A1"},
		{LoginID: "b", GroupName: "쇼핑몰B1"},
		{LoginID: "a", GroupName: "쇼핑몰A2"},
	}

	got := RowsForAccount(rows, "a")

	require.Len(t, got, 2)
	assert.Equal(t, "쇼핑몰A1", got[0].GroupName)
	assert.Equal(t, "쇼핑몰A2", got[1].GroupName)
}

func TestCredentialUnits(t *testing.T) {
	// A partial credential unit disables the marketplace for the row.
	assert.False(t, Row{SmartstoreKey: "k", SmartstoreID: "id"}.HasSmartstore())
	assert.True(t, Row{SmartstoreKey: "k", SmartstoreID: "id", SmartstorePW: "pw"}.HasSmartstore())

	assert.False(t, Row{CoupangID: "id", CoupangVendorCode: "v", CoupangAccessKey: "a", CoupangSecretKey: "s"}.HasCoupang())
	assert.True(t, Row{CoupangID: "id", CoupangVendorCode: "v", CoupangAccessKey: "a", CoupangSecretKey: "s", CoupangPW: "pw"}.HasCoupang())

	assert.False(t, Row{Cafe24Server: "서버1", Cafe24ID: "id"}.HasCafe24())
	assert.True(t, Row{Cafe24Server: "서버1", Cafe24ID: "id", Cafe24PW: "pw"}.HasCafe24())

	assert.False(t, Row{AuctionID: "auc"}.HasAuctionGmarket())
	assert.True(t, Row{AuctionID: "auc", GmarketID: "gm"}.HasAuctionGmarket())

	assert.False(t, Row{KakaoKey: "k"}.HasKakao())
	assert.True(t, Row{KakaoKey: "k", KakaoStoreURL: "url"}.HasKakao())

	assert.True(t, Row{ElevenstGeneralKey: "k"}.HasElevenstGeneral())
	assert.False(t, Row{}.HasElevenstGlobal())
}
