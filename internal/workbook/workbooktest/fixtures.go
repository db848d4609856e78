// Package workbooktest builds in-memory spreadsheet fixtures for tests.
package workbooktest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is a fixture sheet. A nil value leaves the cell empty.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// XLSX renders sheets, in order, into xlsx bytes.
func XLSX(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// ConstructionWorkbook is the two-sheet Materials/Labor workbook used across
// pipeline tests. The Sand row has no quantity.
func ConstructionWorkbook(t testing.TB) []byte {
	t.Helper()
	return XLSX(t,
		Sheet{Name: "Materials", Rows: [][]interface{}{
			{"Material", "Quantity", "Unit"},
			{"Cement", 10, "bag"},
			{"Sand", nil, "m3"},
		}},
		Sheet{Name: "Labor", Rows: [][]interface{}{
			{"Trade", "Hours", "Unit"},
			{"Mason", 5, "hour"},
		}},
	)
}

// ConstructionDocument is the flattened text of ConstructionWorkbook.
const ConstructionDocument = "\n\n--- Sheet: Materials ---\n\nCement | 10 | bag\nSand | m3\n\n\n--- Sheet: Labor ---\n\nMason | 5 | hour\n"
