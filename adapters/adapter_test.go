package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepick2019/percenty-workbench/workbook"
)

func TestDisconnectOrder(t *testing.T) {
	expected := []Marketplace{
		Smartstore, Coupang, AuctionGmarket, ElevenstGeneral, ElevenstGlobal, LotteOn, Kakao,
	}
	assert.Equal(t, expected, DisconnectOrder)
}

func TestConnectOrder_SubsetOfSpecs(t *testing.T) {
	for _, m := range ConnectOrder {
		sp := SpecFor(m)
		require.NotEmpty(t, sp.Label, "marketplace %d has no spec", m)
	}
}

func TestSpecHasCredentials_Elevenst(t *testing.T) {
	row := workbook.Row{ElevenstGeneralKey: "key-general"}

	assert.True(t, SpecFor(ElevenstGeneral).HasCredentials(row))
	assert.False(t, SpecFor(ElevenstGlobal).HasCredentials(row))
}

func TestSpecHasCredentials_PartialUnitDisables(t *testing.T) {
	// Auction/Gmarket share one ESM unit; one id alone is not enough.
	row := workbook.Row{AuctionID: "auc1"}
	assert.False(t, SpecFor(AuctionGmarket).HasCredentials(row))

	row.GmarketID = "gm1"
	assert.True(t, SpecFor(AuctionGmarket).HasCredentials(row))
}

func TestSpecHasCredentials_Kakao(t *testing.T) {
	assert.False(t, SpecFor(Kakao).HasCredentials(workbook.Row{KakaoKey: "k"}))
	assert.True(t, SpecFor(Kakao).HasCredentials(workbook.Row{KakaoKey: "k", KakaoStoreURL: "https://store.kakao.com/shop"}))
}

func TestSpecHasCredentials_LotteOnNeverConnects(t *testing.T) {
	// 롯데온 is disconnect-only; no credential unit exists for it.
	assert.False(t, SpecFor(LotteOn).HasCredentials(workbook.Row{}))
}

func TestSpecKeyInputsMatchKeys(t *testing.T) {
	row := workbook.Row{
		ElevenstGeneralKey: "a", ElevenstGlobalKey: "b",
		AuctionID: "c", GmarketID: "d",
		KakaoKey: "e", KakaoStoreURL: "f",
		SmartstoreKey: "g", SmartstoreID: "h", SmartstorePW: "i",
		CoupangID: "j", CoupangVendorCode: "k", CoupangAccessKey: "l", CoupangSecretKey: "m", CoupangPW: "n",
	}
	for _, m := range ConnectOrder {
		sp := SpecFor(m)
		require.NotNil(t, sp.keys, "%s has inputs but no key extractor", sp.Label)
		assert.Len(t, sp.keyInputs, len(sp.keys(row)), "%s input/value arity mismatch", sp.Label)
	}
}
