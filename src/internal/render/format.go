// Package render turns query results into text for people and tools.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bvbrcdata/src/internal/solr"
)

// DefaultMaxItems is how many records FormatResult shows by default.
const DefaultMaxItems = 10

// FormatResult summarizes records as numbered blocks of "key: value" lines.
// Keys are sorted; lists and objects are shown as indented JSON.
func FormatResult(records []solr.Record, maxItems int) string {
	if len(records) == 0 {
		return "No results found."
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	total := len(records)
	shown := min(total, maxItems)
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d result(s). Showing first %d:\n\n", total, shown)
	for i, rec := range records[:shown] {
		fmt.Fprintf(&b, "Result %d:\n", i+1)
		for _, k := range SortedKeys(rec) {
			fmt.Fprintf(&b, "  %s: %s\n", k, Value(rec[k], true))
		}
		b.WriteString("\n")
	}
	if total > maxItems {
		fmt.Fprintf(&b, "... and %d more results.\n", total-maxItems)
	}
	return b.String()
}

// SortedKeys returns the record's field names in lexical order.
func SortedKeys(rec solr.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value renders one field value. Scalars print bare; lists and objects are
// JSON, indented when indent is set.
func Value(v any, indent bool) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case []any, map[string]any:
		var b []byte
		var err error
		if indent {
			b, err = json.MarshalIndent(x, "", "  ")
		} else {
			b, err = json.Marshal(x)
		}
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
