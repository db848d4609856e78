// Package workbook opens uploaded spreadsheets and reads their sheets as
// rectangular tables.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies a spreadsheet container.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatXLSX    Format = "xlsx" // Office Open XML (xlsx, xlsm)
	FormatXLS     Format = "xls"  // legacy BIFF inside an OLE container
	FormatCSV     Format = "csv"  // delimited text, one sheet
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeZIP  = "application/zip"
	mimeOLE  = "application/x-ole-storage"
	mimeCSV  = "text/csv"
	mimeText = "text/plain"
)

// Workbook is an opened, read-only spreadsheet.
type Workbook interface {
	// Name returns the file name the workbook was uploaded as.
	Name() string

	// Format returns the container format the workbook was parsed from.
	Format() Format

	// SheetNames lists the sheets in workbook order.
	SheetNames() []string

	// ReadSheet reads one sheet into a Table.
	// Returns a *SheetReadError if the sheet is missing or unreadable.
	ReadSheet(name string, opts ReadOptions) (*Table, error)

	// Close releases the underlying parser resources.
	Close() error
}

// ReadOptions controls how a sheet is normalized into a Table.
type ReadOptions struct {
	// NoHeader treats the first row as data and names columns 0..n-1.
	NoHeader bool

	// MaxRows bounds the number of data rows read (0 reads the whole sheet).
	// Reading stops as soon as the bound is reached.
	MaxRows int
}

// Open parses an uploaded spreadsheet. The format is sniffed from the content;
// the file extension only disambiguates generic containers.
// Returns a *FileFormatError if the bytes are not a supported spreadsheet.
func Open(name string, data []byte) (Workbook, error) {
	switch format := DetectFormat(name, data); format {
	case FormatXLSX:
		return openXLSX(name, data)
	case FormatXLS:
		return openXLS(name, data)
	case FormatCSV:
		return openCSV(name, data)
	default:
		return nil, &FileFormatError{Name: name, Format: format}
	}
}

// OpenFile reads and parses a spreadsheet from disk.
func OpenFile(path string) (Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return Open(filepath.Base(path), data)
}

// DetectFormat sniffs the container format of data.
func DetectFormat(name string, data []byte) Format {
	if len(data) == 0 {
		return FormatUnknown
	}
	ext := strings.ToLower(filepath.Ext(name))

	// Walk from the most specific type up to its ancestors.
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeXLSX):
			return FormatXLSX
		case m.Is(mimeXLS):
			return FormatXLS
		case m.Is(mimeCSV):
			return FormatCSV
		case m.Is(mimeZIP):
			if ext == ".xlsx" || ext == ".xlsm" {
				return FormatXLSX
			}
			return FormatUnknown
		case m.Is(mimeOLE):
			if ext == ".xls" {
				return FormatXLS
			}
			return FormatUnknown
		case m.Is(mimeText):
			if ext == ".csv" {
				return FormatCSV
			}
			return FormatUnknown
		}
	}
	return FormatUnknown
}

// sheetIndex returns the position of name in names, or -1.
func sheetIndex(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
