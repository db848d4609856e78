package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dhabedank/cost-analyzer/internal/workbook"
)

// maxCellWidth bounds a rendered cell so wide sheets stay readable.
const maxCellWidth = 32

// RenderSheetTable draws a sheet preview with its column names as header.
func RenderSheetTable(t *workbook.Table) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = clip(c)
	}
	tbl.Headers(headers...)

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = clip(c.Value)
		}
		tbl.Row(cells...)
	}
	return tbl.String()
}

// RenderSheetHeading is the title line above a sheet table.
func RenderSheetHeading(name string, shown int) string {
	return fmt.Sprintf("%s  %s", SheetStyle.Render(name), HelpStyle.Render(fmt.Sprintf("first %d rows", shown)))
}

func clip(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= maxCellWidth {
		return s
	}
	r := []rune(s)
	return string(r[:maxCellWidth-1]) + "…"
}
