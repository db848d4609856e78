package workbook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/workbook/workbooktest"
)

func TestOpenXLSX(t *testing.T) {
	wb, err := Open("estimate.xlsx", workbooktest.ConstructionWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, "estimate.xlsx", wb.Name())
	assert.Equal(t, FormatXLSX, wb.Format())
	assert.Equal(t, []string{"Materials", "Labor"}, wb.SheetNames())
}

func TestReadSheetWithHeader(t *testing.T) {
	wb, err := Open("estimate.xlsx", workbooktest.ConstructionWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	table, err := wb.ReadSheet("Materials", ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Materials", table.Sheet)
	assert.Equal(t, []string{"Material", "Quantity", "Unit"}, table.Columns)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"Cement", "10", "bag"}, table.Values(0))
	assert.Equal(t, []string{"Sand", "m3"}, table.Values(1))
	assert.True(t, table.Rows[1][1].Missing())

	for i, row := range table.Rows {
		assert.Len(t, row, len(table.Columns), "row %d", i)
	}
}

func TestReadSheetNoHeader(t *testing.T) {
	wb, err := Open("estimate.xlsx", workbooktest.ConstructionWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	table, err := wb.ReadSheet("Labor", ReadOptions{NoHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "2"}, table.Columns)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"Trade", "Hours", "Unit"}, table.Values(0))
}

func TestReadSheetPreview(t *testing.T) {
	rows := [][]interface{}{{"Item", "Qty"}}
	for i := 0; i < 50; i++ {
		rows = append(rows, []interface{}{"Brick", i + 1})
	}
	data := workbooktest.XLSX(t, workbooktest.Sheet{Name: "Bricks", Rows: rows})

	wb, err := Open("bricks.xlsx", data)
	require.NoError(t, err)
	defer wb.Close()

	head, err := wb.ReadSheet("Bricks", ReadOptions{MaxRows: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, head.NumRows())
	assert.Equal(t, []string{"Brick", "5"}, head.Values(4))

	full, err := wb.ReadSheet("Bricks", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 50, full.NumRows())
}

func TestReadSheetShapes(t *testing.T) {
	data := workbooktest.XLSX(t, workbooktest.Sheet{Name: "Ragged", Rows: [][]interface{}{
		nil,
		{"Item", nil, "Unit"},
		{"Tile", 3, "m2", "extra"},
		nil,
		{"Grout"},
		nil,
		nil,
	}})

	wb, err := Open("ragged.xlsx", data)
	require.NoError(t, err)
	defer wb.Close()

	table, err := wb.ReadSheet("Ragged", ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Item", "Unnamed: 1", "Unit", "Unnamed: 3"}, table.Columns)
	require.Equal(t, 3, table.NumRows(), "interior blank row kept, trailing blanks dropped")
	assert.Equal(t, []string{"Tile", "3", "m2", "extra"}, table.Values(0))
	assert.Empty(t, table.Values(1))
	assert.Equal(t, []string{"Grout"}, table.Values(2))
}

func TestReadSheetNotFound(t *testing.T) {
	wb, err := Open("estimate.xlsx", workbooktest.ConstructionWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.ReadSheet("Plumbing", ReadOptions{})

	var sheetErr *SheetReadError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, "Plumbing", sheetErr.Sheet)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestOpenInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"empty", "empty.xlsx", nil},
		{"binary garbage", "garbage.bin", []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe, 0x00, 0x10}},
		{"zip without workbook", "archive.xlsx", []byte("PK\x03\x04 definitely not a workbook")},
		{"ole header only", "legacy.xls", append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)},
		{"plain text with wrong extension", "notes.docx", []byte("just some notes\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := Open(tt.file, tt.data)
			assert.Nil(t, wb)

			var formatErr *FileFormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.Equal(t, tt.file, formatErr.Name)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	xlsx := workbooktest.ConstructionWorkbook(t)

	tests := []struct {
		name string
		file string
		data []byte
		want Format
	}{
		{"xlsx content", "estimate.xlsx", xlsx, FormatXLSX},
		{"csv by extension", "items.csv", []byte("a\nb\n"), FormatCSV},
		{"csv content", "items.csv", []byte("item,qty,unit\ncement,10,bag\nsand,2,m3\n"), FormatCSV},
		{"text without csv extension", "readme.md", []byte("hello\n"), FormatUnknown},
		{"empty", "estimate.xlsx", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, tt.data))
		})
	}
}
