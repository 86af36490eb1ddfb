// Package export writes table views as CSV and XLSX documents.
package export

import (
	"io"
	"strings"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// CSV renders a header row plus one row per record. Every field is quoted,
// embedded quotes are doubled and lines are joined by "\n" without a trailing newline,
// so N records always produce N+1 lines.
func CSV(headers []string, rows [][]string) string {
	var b strings.Builder
	writeLine(&b, headers)
	for _, row := range rows {
		b.WriteByte('\n')
		writeLine(&b, row)
	}
	return b.String()
}

func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	_, err := io.WriteString(w, CSV(headers, rows))
	return err
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
