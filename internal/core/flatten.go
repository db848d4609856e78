package core

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/dhabedank/cost-analyzer/internal/workbook"
)

const (
	sheetHeaderFormat = "\n\n--- Sheet: %s ---\n\n"
	cellSeparator     = " | "
)

// Flatten renders every sheet of wb, in workbook order, as pipe-delimited
// text. Missing cells are dropped from their line, so values of one line no
// longer line up with the columns of another.
//
// A sheet that cannot be read is skipped; its *workbook.SheetReadError is
// returned in the aggregated error alongside the text of the other sheets.
func Flatten(wb workbook.Workbook, opts workbook.ReadOptions) (string, error) {
	opts.MaxRows = 0

	var doc strings.Builder
	var errs *multierror.Error
	for _, name := range wb.SheetNames() {
		table, err := wb.ReadSheet(name, opts)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		writeTable(&doc, table)
	}
	return doc.String(), errs.ErrorOrNil()
}

// FlattenTable renders a single table with its sheet header.
func FlattenTable(t *workbook.Table) string {
	var doc strings.Builder
	writeTable(&doc, t)
	return doc.String()
}

func writeTable(doc *strings.Builder, t *workbook.Table) {
	fmt.Fprintf(doc, sheetHeaderFormat, t.Sheet)
	for i := range t.Rows {
		doc.WriteString(strings.Join(t.Values(i), cellSeparator))
		doc.WriteByte('\n')
	}
}

// RawPreview returns the first limit characters of doc for display, marked
// with "..." when cut. limit <= 0 uses DefaultRawPreviewChars.
func RawPreview(doc string, limit int) string {
	if limit <= 0 {
		limit = DefaultRawPreviewChars
	}
	head, cut := truncateChars(doc, limit)
	if cut {
		return head + "..."
	}
	return head
}
