package workbook

import "strconv"

// Cell is one table cell. A cell without a value is missing.
type Cell struct {
	Value   string
	Present bool
}

// Missing reports whether the cell holds no value.
func (c Cell) Missing() bool {
	return !c.Present
}

// Table is a rectangular view of a sheet: every row has len(Columns) cells.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]Cell
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Values returns the non-missing values of row i in column order.
func (t *Table) Values(i int) []string {
	values := make([]string, 0, len(t.Rows[i]))
	for _, cell := range t.Rows[i] {
		if cell.Present {
			values = append(values, cell.Value)
		}
	}
	return values
}

// tableBuilder accumulates raw string rows from any reader and shapes them
// into a Table. Empty strings are missing values.
type tableBuilder struct {
	sheet     string
	opts      ReadOptions
	header    []string
	hasHeader bool
	rows      [][]string
}

func newTableBuilder(sheet string, opts ReadOptions) *tableBuilder {
	return &tableBuilder{sheet: sheet, opts: opts}
}

// add appends one raw row. It returns true once MaxRows data rows are held
// and the caller can stop reading.
func (b *tableBuilder) add(raw []string) bool {
	if !b.opts.NoHeader && !b.hasHeader {
		// Leading blank rows never become the header.
		if isBlank(raw) {
			return false
		}
		b.header = append([]string(nil), raw...)
		b.hasHeader = true
		return b.full()
	}

	b.rows = append(b.rows, append([]string(nil), raw...))
	return b.full()
}

func (b *tableBuilder) full() bool {
	return b.opts.MaxRows > 0 && len(b.rows) >= b.opts.MaxRows
}

// table finalizes the Table, dropping trailing blank rows and padding short rows.
func (b *tableBuilder) table() *Table {
	rows := b.rows
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	width := len(b.header)
	for _, r := range rows {
		if n := trimmedLen(r); n > width {
			width = n
		}
	}

	columns := make([]string, width)
	for i := range columns {
		switch {
		case b.opts.NoHeader:
			columns[i] = strconv.Itoa(i)
		case i < len(b.header) && b.header[i] != "":
			columns[i] = b.header[i]
		default:
			columns[i] = "Unnamed: " + strconv.Itoa(i)
		}
	}

	t := &Table{Sheet: b.sheet, Columns: columns, Rows: make([][]Cell, len(rows))}
	for i, raw := range rows {
		cells := make([]Cell, width)
		for j := 0; j < width && j < len(raw); j++ {
			if raw[j] != "" {
				cells[j] = Cell{Value: raw[j], Present: true}
			}
		}
		t.Rows[i] = cells
	}
	return t
}

func isBlank(raw []string) bool {
	return trimmedLen(raw) == 0
}

// trimmedLen is the length of raw without trailing empty cells.
func trimmedLen(raw []string) int {
	n := len(raw)
	for n > 0 && raw[n-1] == "" {
		n--
	}
	return n
}
