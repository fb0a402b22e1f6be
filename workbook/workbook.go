package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Sheet names the loader accepts, in preference order.
var sheetNames = []string{"market_id", "cafe24_upload"}

// Row is one configuration record for a (login id, marketplace group) pair.
// Empty fields disable the corresponding marketplace for the row.
type Row struct {
	LoginID   string
	GroupName string

	ElevenstGeneralKey string
	ElevenstGlobalKey  string
	AuctionID          string
	GmarketID          string
	KakaoKey           string
	KakaoStoreURL      string
	SmartstoreKey      string
	SmartstoreID       string
	SmartstorePW       string
	CoupangID          string
	CoupangVendorCode  string
	CoupangAccessKey   string
	CoupangSecretKey   string
	CoupangPW          string
	Cafe24Server       string
	Cafe24ID           string
	Cafe24PW           string
	ElevenstStoreID    string
}

// Group is an ordered bucket of rows sharing a group name.
type Group struct {
	Name string
	Rows []Row
}

// Load reads the configuration workbook and returns rows in sheet order.
// The workbook is read once per run and treated as immutable afterwards.
func Load(path string, logger types.Logger) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheet string
	for _, name := range sheetNames {
		if idx, _ := f.GetSheetIndex(name); idx >= 0 {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has none of the expected sheets %v", sheetNames)
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var rows []Row
	for i, record := range cells {
		if i == 0 {
			// Header row.
			continue
		}
		row := FromRecord(record)
		if row.LoginID == "" {
			logger.Debugf("Skipping sheet row %d: empty login id", i+1)
			continue
		}
		rows = append(rows, row)
	}

	logger.Infof("Loaded %d configuration rows from %s (sheet %s)", len(rows), path, sheet)
	return rows, nil
}

// FromRecord maps the first 20 workbook columns onto a Row. Missing trailing
// cells are treated as empty, matching how spreadsheet readers drop them.
func FromRecord(record []string) Row {
	cell := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return Row{
		LoginID:            cell(0),
		GroupName:          cell(1),
		ElevenstGeneralKey: cell(2),
		ElevenstGlobalKey:  cell(3),
		AuctionID:          cell(4),
		GmarketID:          cell(5),
		KakaoKey:           cell(6),
		KakaoStoreURL:      cell(7),
		SmartstoreKey:      cell(8),
		SmartstoreID:       cell(9),
		SmartstorePW:       cell(10),
		CoupangID:          cell(11),
		CoupangVendorCode:  cell(12),
		CoupangAccessKey:   cell(13),
		CoupangSecretKey:   cell(14),
		CoupangPW:          cell(15),
		Cafe24Server:       cell(16),
		Cafe24ID:           cell(17),
		Cafe24PW:           cell(18),
		ElevenstStoreID:    cell(19),
	}
}

// RowsForAccount filters rows belonging to one login id, preserving order.
func RowsForAccount(rows []Row, loginID string) []Row {
	var out []Row
	for _, r := range rows {
		if r.LoginID == loginID {
			out = append(out, r)
		}
	}
	return out
}

// AccountIDs returns the distinct login ids in first-seen order.
func AccountIDs(rows []Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.LoginID] {
			seen[r.LoginID] = true
			out = append(out, r.LoginID)
		}
	}
	return out
}

// GroupRows buckets rows by group name preserving insertion order, both of
// groups and of rows within a group.
func GroupRows(rows []Row) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range rows {
		i, ok := index[r.GroupName]
		if !ok {
			i = len(groups)
			index[r.GroupName] = i
			groups = append(groups, Group{Name: r.GroupName})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Credential presence queries. Marketplace credentials are a unit: a partial
// set disables the marketplace for the row.

func (r Row) HasElevenstGeneral() bool { return r.ElevenstGeneralKey != "" }
func (r Row) HasElevenstGlobal() bool  { return r.ElevenstGlobalKey != "" }

func (r Row) HasAuctionGmarket() bool {
	return r.AuctionID != "" && r.GmarketID != ""
}

func (r Row) HasKakao() bool {
	return r.KakaoKey != "" && r.KakaoStoreURL != ""
}

func (r Row) HasSmartstore() bool {
	return r.SmartstoreKey != "" && r.SmartstoreID != "" && r.SmartstorePW != ""
}

func (r Row) HasCoupang() bool {
	return r.CoupangID != "" && r.CoupangVendorCode != "" &&
		r.CoupangAccessKey != "" && r.CoupangSecretKey != "" && r.CoupangPW != ""
}

func (r Row) HasCafe24() bool {
	return r.Cafe24Server != "" && r.Cafe24ID != "" && r.Cafe24PW != ""
}
