package dates

import (
	"fmt"
	"strings"
	"time"
)

// SolrLayout is the ISO-8601 form Solr date fields accept.
const SolrLayout = "2006-01-02T15:04:05Z"

// partial layouts, most specific first
var layouts = []struct {
	layout string
	step   func(time.Time) time.Time
}{
	{time.RFC3339Nano, nil},
	{"2006-01-02T15:04:05", nil},
	{"2006-01-02 15:04:05", nil},
	{"2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{"2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
	{"2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
}

// NormalizeSolrDate converts a caller-supplied date bound into Solr form.
// Partial dates expand to the start of the period, or to its last second
// when upper is true, so "2020" as an upper bound covers the whole year.
// "*" and date math starting with NOW pass through unchanged; empty means "*".
func NormalizeSolrDate(s string, upper bool) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return "*", nil
	}
	if strings.HasPrefix(strings.ToUpper(s), "NOW") {
		return strings.ToUpper(s), nil
	}
	for _, l := range layouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		if upper && l.step != nil {
			t = l.step(t).Add(-time.Second)
		}
		return t.Format(SolrLayout), nil
	}
	return "", fmt.Errorf("unrecognized date %q (want YYYY, YYYY-MM, YYYY-MM-DD or RFC 3339)", s)
}
