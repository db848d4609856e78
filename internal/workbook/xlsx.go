package workbook

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// xlsxWorkbook reads Office Open XML workbooks with excelize.
type xlsxWorkbook struct {
	name   string
	file   *excelize.File
	sheets []string
}

func openXLSX(name string, data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatXLSX, Err: err}
	}
	return &xlsxWorkbook{
		name:   name,
		file:   f,
		sheets: f.GetSheetList(),
	}, nil
}

func (w *xlsxWorkbook) Name() string         { return w.name }
func (w *xlsxWorkbook) Format() Format       { return FormatXLSX }
func (w *xlsxWorkbook) SheetNames() []string { return append([]string(nil), w.sheets...) }

// ReadSheet streams rows through excelize's row iterator so a bounded
// preview stops without loading the rest of the sheet.
func (w *xlsxWorkbook) ReadSheet(name string, opts ReadOptions) (*Table, error) {
	if sheetIndex(w.sheets, name) == -1 {
		return nil, &SheetReadError{Sheet: name, Err: ErrSheetNotFound}
	}

	rows, err := w.file.Rows(name)
	if err != nil {
		return nil, &SheetReadError{Sheet: name, Err: err}
	}
	defer rows.Close()

	b := newTableBuilder(name, opts)
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, &SheetReadError{Sheet: name, Err: err}
		}
		if b.add(cols) {
			break
		}
	}
	if err := rows.Error(); err != nil {
		return nil, &SheetReadError{Sheet: name, Err: err}
	}

	return b.table(), nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}
