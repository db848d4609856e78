package workbook

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/record"
	"github.com/shakinm/xlsReader/xls/structure"
	"golang.org/x/text/encoding/charmap"
)

// xlsWorkbook reads legacy BIFF workbooks. Shared strings come from the
// xlsReader cell model; every other value comes from the record scan in
// biff.go, which also decodes the cached results of formula cells.
type xlsWorkbook struct {
	name   string
	book   xls.Workbook
	biff   *biffBook
	sheets []string
}

// openXLS recovers from parser panics: the cell model indexes records
// without bounds checks and panics on truncated or corrupt streams.
func openXLS(name string, data []byte) (wb Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = &FileFormatError{Name: name, Format: FormatXLS, Err: fmt.Errorf("corrupt workbook: %v", r)}
		}
	}()

	stream, err := workbookStream(data)
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatXLS, Err: err}
	}
	biff, err := scanBIFF(stream)
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatXLS, Err: err}
	}
	if len(biff.sheets) == 0 {
		return nil, &FileFormatError{Name: name, Format: FormatXLS, Err: fmt.Errorf("workbook has no sheets")}
	}

	book, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatXLS, Err: err}
	}
	if n := book.GetNumberSheets(); n != len(biff.sheets) {
		return nil, &FileFormatError{Name: name, Format: FormatXLS,
			Err: fmt.Errorf("read %d of %d sheets", n, len(biff.sheets))}
	}

	w := &xlsWorkbook{name: name, book: book, biff: biff}
	for _, s := range biff.sheets {
		w.sheets = append(w.sheets, s.name)
	}
	return w, nil
}

func (w *xlsWorkbook) Name() string         { return w.name }
func (w *xlsWorkbook) Format() Format       { return FormatXLS }
func (w *xlsWorkbook) SheetNames() []string { return append([]string(nil), w.sheets...) }

func (w *xlsWorkbook) ReadSheet(name string, opts ReadOptions) (t *Table, err error) {
	pos := sheetIndex(w.sheets, name)
	if pos == -1 {
		return nil, &SheetReadError{Sheet: name, Err: ErrSheetNotFound}
	}

	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = &SheetReadError{Sheet: name, Err: fmt.Errorf("corrupt sheet: %v", r)}
		}
	}()

	values, err := w.biff.scanSheet(pos)
	if err != nil {
		return nil, &SheetReadError{Sheet: name, Err: err}
	}

	sheet := &w.book.GetSheets()[pos]
	rows := max(sheet.GetNumberRows(), values.maxRow+1)

	b := newTableBuilder(name, opts)
	for r := 0; r < rows; r++ {
		row, err := sheet.GetRow(r)
		if err != nil {
			return nil, &SheetReadError{Sheet: name, Err: err}
		}
		if b.add(values.fill(r, sharedStrings(row.GetCols()))) {
			break
		}
	}

	return b.table(), nil
}

func (w *xlsWorkbook) Close() error {
	return nil
}

// sharedStrings keeps the LABELSST cells of a row; the record scan
// supplies the rest.
func sharedStrings(cells []structure.CellData) []string {
	cols := make([]string, len(cells))
	for i, c := range cells {
		if _, ok := c.(*record.LabelSSt); ok {
			cols[i] = latin1(c.GetString())
		}
	}
	return cols
}

// latin1 repairs compressed shared strings, which the cell model returns
// as raw Latin-1 bytes.
func latin1(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}
