package core

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/cost-analyzer/internal/workbook"
	"github.com/dhabedank/cost-analyzer/internal/workbook/workbooktest"
)

// fakeWorkbook serves prepared tables; sheets listed in broken fail to read.
type fakeWorkbook struct {
	names  []string
	tables map[string]*workbook.Table
	broken map[string]bool
}

func (f *fakeWorkbook) Name() string            { return "fake.xlsx" }
func (f *fakeWorkbook) Format() workbook.Format { return workbook.FormatXLSX }
func (f *fakeWorkbook) SheetNames() []string    { return f.names }
func (f *fakeWorkbook) Close() error            { return nil }

func (f *fakeWorkbook) ReadSheet(name string, opts workbook.ReadOptions) (*workbook.Table, error) {
	if f.broken[name] {
		return nil, &workbook.SheetReadError{Sheet: name, Err: errors.New("corrupt sheet")}
	}
	t, ok := f.tables[name]
	if !ok {
		return nil, &workbook.SheetReadError{Sheet: name, Err: workbook.ErrSheetNotFound}
	}
	return t, nil
}

func cells(values ...string) []workbook.Cell {
	row := make([]workbook.Cell, len(values))
	for i, v := range values {
		if v != "" {
			row[i] = workbook.Cell{Value: v, Present: true}
		}
	}
	return row
}

func TestFlattenConstructionWorkbook(t *testing.T) {
	wb, err := workbook.Open("estimate.xlsx", workbooktest.ConstructionWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	doc, err := Flatten(wb, workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, workbooktest.ConstructionDocument, doc)
}

func TestFlattenLegacyWorkbooks(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{
			file: "lorem.xls",
			want: "\n\n--- Sheet: Test sheet 1 ---\n\nAvocado | 1 | 2\n3 | 5\n4 | 7\n" +
				"\n\n--- Sheet: Test sheet 2 ---\n\n" +
				"\n\n--- Sheet: Sheet3 ---\n\n",
		},
		{
			file: "estimate.xls",
			want: "\n\n--- Sheet: Materials ---\n\n" +
				"Béton C25/30 | 12 | 95.5 | 1146 | 2024-05-01 | Łukasz Bud\n" +
				"Rebar B500 | 2.5 | 780 | 1950 | 2024-05-02 12:00:00\n" +
				"Discount | -150 | FALSE | #N/A\n" +
				"Total cost | #DIV/0! | 2946 | TRUE | checked ✓\n" +
				"\n\n--- Sheet: Labor ---\n\n" +
				"Mason | 40 | 38.75\nElectrician | 16 | 52\nPlumber | 12 | 49.5\nCarpenter | 24 | 41.25\nRoofer | 8 | 45\n" +
				"\n\n--- Sheet: Notes ---\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			wb, err := workbook.OpenFile(filepath.Join("..", "workbook", "testdata", tt.file))
			require.NoError(t, err)
			defer wb.Close()

			doc, err := Flatten(wb, workbook.ReadOptions{MaxRows: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	data := workbooktest.ConstructionWorkbook(t)

	var docs []string
	for i := 0; i < 2; i++ {
		wb, err := workbook.Open("estimate.xlsx", data)
		require.NoError(t, err)
		doc, err := Flatten(wb, workbook.ReadOptions{})
		require.NoError(t, err)
		require.NoError(t, wb.Close())
		docs = append(docs, doc)
	}
	assert.Equal(t, docs[0], docs[1])
}

func TestFlattenSectionOrder(t *testing.T) {
	names := []string{"Zeta", "Alpha", "Mid sheet"}
	wb := &fakeWorkbook{names: names, tables: map[string]*workbook.Table{}}
	for _, n := range names {
		wb.tables[n] = &workbook.Table{Sheet: n, Columns: []string{"a"}, Rows: [][]workbook.Cell{cells("x")}}
	}

	doc, err := Flatten(wb, workbook.ReadOptions{})
	require.NoError(t, err)

	last := -1
	for _, n := range names {
		idx := strings.Index(doc, "--- Sheet: "+n+" ---")
		require.NotEqual(t, -1, idx, "missing section %s", n)
		assert.Greater(t, idx, last, "section %s out of order", n)
		last = idx
	}
}

func TestFlattenOmitsMissingCells(t *testing.T) {
	rows := [][]workbook.Cell{
		cells("a", "", "c", ""),
		cells("", "", "", "d"),
		cells("", "", "", ""),
		cells("1", "2", "3", "4"),
	}
	table := &workbook.Table{Sheet: "S", Columns: []string{"w", "x", "y", "z"}, Rows: rows}

	doc := FlattenTable(table)
	lines := strings.Split(strings.TrimPrefix(doc, "\n\n--- Sheet: S ---\n\n"), "\n")
	require.Len(t, lines, len(rows)+1) // trailing newline leaves an empty tail

	want := []string{"a | c", "d", "", "1 | 2 | 3 | 4"}
	for i, row := range rows {
		assert.Equal(t, want[i], lines[i])

		present := 0
		for _, c := range row {
			if c.Present {
				present++
			}
		}
		got := 0
		if lines[i] != "" {
			got = len(strings.Split(lines[i], cellSeparator))
		}
		assert.Equal(t, present, got, "row %d", i)
	}
}

func TestFlattenEmptyWorkbook(t *testing.T) {
	doc, err := Flatten(&fakeWorkbook{}, workbook.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", doc)
}

func TestFlattenSkipsUnreadableSheets(t *testing.T) {
	wb := &fakeWorkbook{
		names: []string{"Materials", "Chart", "Labor"},
		tables: map[string]*workbook.Table{
			"Materials": {Sheet: "Materials", Columns: []string{"a"}, Rows: [][]workbook.Cell{cells("Cement")}},
			"Labor":     {Sheet: "Labor", Columns: []string{"a"}, Rows: [][]workbook.Cell{cells("Mason")}},
		},
		broken: map[string]bool{"Chart": true},
	}

	doc, err := Flatten(wb, workbook.ReadOptions{})

	assert.Equal(t, "\n\n--- Sheet: Materials ---\n\nCement\n\n\n--- Sheet: Labor ---\n\nMason\n", doc)
	var sheetErr *workbook.SheetReadError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, "Chart", sheetErr.Sheet)
}

func TestRawPreview(t *testing.T) {
	assert.Equal(t, "abc", RawPreview("abc", 5))
	assert.Equal(t, "abcde", RawPreview("abcde", 5))
	assert.Equal(t, "ab...", RawPreview("abcde", 2))
	assert.Equal(t, "Bé...", RawPreview("Béton", 2))

	long := strings.Repeat("x", DefaultRawPreviewChars+10)
	assert.Equal(t, strings.Repeat("x", DefaultRawPreviewChars)+"...", RawPreview(long, 0))
}
