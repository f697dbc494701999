package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bvbrcdata/src/internal/sanitize"
	"bvbrcdata/src/internal/solr"
)

// MaxCellWidth caps a table cell, in runes.
const MaxCellWidth = 60

// Table writes an aligned text table with a dashed separator under the headers.
func Table(w io.Writer, headers []string, rows [][]string) {
	widths := computeColWidths(headers, rows)
	writeColumns(w, headers, widths)
	writeSeparator(w, widths)
	for _, r := range rows {
		writeColumns(w, r, widths)
	}
}

// RecordsTable lays records out one per row. columns picks and orders the
// fields; when empty every field seen is used, sorted.
func RecordsTable(w io.Writer, records []solr.Record, columns []string) {
	if len(columns) == 0 {
		seen := map[string]bool{}
		for _, r := range records {
			for k := range r {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			cell := strings.Join(strings.Fields(Value(r[c], false)), " ")
			row[i] = sanitize.CleanString(cell, MaxCellWidth)
		}
		rows = append(rows, row)
	}
	Table(w, columns, rows)
}

func computeColWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, r := range rows {
		for i := range headers {
			if i < len(r) {
				if l := len([]rune(r[i])); l > widths[i] {
					widths[i] = l
				}
			}
		}
	}
	return widths
}

func writeSeparator(w io.Writer, widths []int) {
	cols := make([]string, len(widths))
	for i, width := range widths {
		cols[i] = strings.Repeat("-", width)
	}
	writeColumns(w, cols, widths)
}

func writeColumns(w io.Writer, cols []string, widths []int) {
	for i, width := range widths {
		val := ""
		if i < len(cols) {
			val = cols[i]
		}
		if i == len(widths)-1 {
			_, _ = fmt.Fprint(w, val)
			break
		}
		_, _ = fmt.Fprint(w, val, strings.Repeat(" ", width-len([]rune(val))), "  ")
	}
	_, _ = fmt.Fprint(w, "\n")
}
