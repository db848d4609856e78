package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// csvWorkbook exposes a delimited text file as a single-sheet workbook.
type csvWorkbook struct {
	name    string
	sheet   string
	records [][]string
}

func openCSV(name string, data []byte) (Workbook, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatCSV, Err: err}
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &FileFormatError{Name: name, Format: FormatCSV, Err: err}
	}

	sheet := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if sheet == "" || sheet == "." {
		sheet = "Sheet1"
	}

	return &csvWorkbook{name: name, sheet: sheet, records: records}, nil
}

func (w *csvWorkbook) Name() string         { return w.name }
func (w *csvWorkbook) Format() Format       { return FormatCSV }
func (w *csvWorkbook) SheetNames() []string { return []string{w.sheet} }

func (w *csvWorkbook) ReadSheet(name string, opts ReadOptions) (*Table, error) {
	if name != w.sheet {
		return nil, &SheetReadError{Sheet: name, Err: ErrSheetNotFound}
	}

	b := newTableBuilder(name, opts)
	for _, record := range w.records {
		if b.add(record) {
			break
		}
	}
	return b.table(), nil
}

func (w *csvWorkbook) Close() error {
	return nil
}

// decodeText converts data to UTF-8. A byte order mark selects UTF-8 or
// UTF-16; otherwise invalid UTF-8 is read as Windows-1252, the default
// code page of spreadsheet exports on western European systems.
func decodeText(data []byte) (string, error) {
	if !hasBOM(data) && !utf8.Valid(data) {
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
		if err != nil {
			return "", fmt.Errorf("decode windows-1252: %w", err)
		}
		return string(out), nil
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// sniffDelimiter picks between comma, semicolon and tab from the first line.
// Semicolons are common where the comma is the decimal separator.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
