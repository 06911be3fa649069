// Package output writes conversion results: the flat CSV, the styled
// workbook, and the plain-text reports next to them.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
)

// QuoteField wraps a field in double quotes, doubling inner quotes, when it
// contains a comma, a quote or a newline. Other fields are written as is.
func QuoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EncodeCSV renders a header and rows as comma-separated lines joined by
// "\n", without a trailing newline.
func EncodeCSV(header []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, encodeLine(header))
	for _, row := range rows {
		lines = append(lines, encodeLine(row))
	}
	return strings.Join(lines, "\n")
}

func encodeLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = QuoteField(f)
	}
	return strings.Join(quoted, ",")
}

// Rows returns the records' values in header order for the given source.
func Rows(records []core.CanonicalRecord, src core.Source) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values(src)
	}
	return rows
}

// WriteCSV writes records to path using the column set of src.
func WriteCSV(path string, records []core.CanonicalRecord, src core.Source) error {
	content := EncodeCSV(core.HeaderFor(src), Rows(records, src))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
