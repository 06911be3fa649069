package output

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// SheetName is the worksheet holding the offers.
const SheetName = "Offers"

const (
	headerFill     = "E0E0E0"
	emptyCellWidth = 10
	maxColumnWidth = 100
)

// ColumnWidths returns the width of each column: the longest cell plus two,
// capped at 100. Empty cells count as 10 characters.
func ColumnWidths(header []string, rows [][]string) []float64 {
	longest := make([]int, len(header))
	measure := func(i int, s string) {
		n := utf8.RuneCountInString(s)
		if s == "" {
			n = emptyCellWidth
		}
		if n > longest[i] {
			longest[i] = n
		}
	}

	for i, h := range header {
		measure(i, h)
	}
	for _, row := range rows {
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			measure(i, cell)
		}
	}

	widths := make([]float64, len(header))
	for i, n := range longest {
		widths[i] = float64(min(n+2, maxColumnWidth))
	}
	return widths
}

// WriteXLSX writes records as a single-sheet workbook with a bold, shaded
// header row and fitted column widths.
func WriteXLSX(path string, records []core.CanonicalRecord, src core.Source) error {
	header := core.HeaderFor(src)
	rows := Rows(records, src)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return fmt.Errorf("xlsx header style: %w", err)
	}

	// Column widths must be set before the first row is streamed.
	for i, w := range ColumnWidths(header, rows) {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return fmt.Errorf("xlsx column width: %w", err)
		}
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = excelize.Cell{StyleID: style, Value: h}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for r, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("xlsx row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx flush: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}
	return nil
}
