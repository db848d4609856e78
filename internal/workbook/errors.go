package workbook

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates the requested sheet is not part of the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// FileFormatError reports an upload that cannot be parsed as a spreadsheet.
// The caller must ask for a new file; retrying the same bytes cannot succeed.
type FileFormatError struct {
	Name   string // uploaded file name
	Format Format // detected container, FormatUnknown if sniffing failed
	Err    error
}

func (e *FileFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: not a recognized spreadsheet file (supported: xlsx, xlsm, xls, csv)", e.Name)
	}
	return fmt.Sprintf("%s: cannot read %s workbook: %v", e.Name, e.Format, e.Err)
}

func (e *FileFormatError) Unwrap() error {
	return e.Err
}

// SheetReadError reports a sheet that is absent or cannot be read.
// It only concerns that sheet; other sheets of the workbook stay readable.
type SheetReadError struct {
	Sheet string
	Err   error
}

func (e *SheetReadError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetReadError) Unwrap() error {
	return e.Err
}
