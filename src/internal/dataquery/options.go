package dataquery

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bvbrcdata/src/internal/sanitize"
	"bvbrcdata/src/internal/solr"
)

// Options are the per-call knobs shared by every accessor.
type Options struct {
	Limit      int      // page size sent as rows
	Select     []string // field projection
	Sort       string
	MaxResults int // stop after this many records, 0 for all
	BaseURL    string
	Headers    map[string]string
}

// Rows is Limit, or def when Limit is unset.
func (o Options) Rows(def int) int {
	if o.Limit > 0 {
		return o.Limit
	}
	if def > 0 {
		return def
	}
	return solr.DefaultRows
}

func (o Options) overrides() solr.Overrides {
	return solr.Overrides{BaseURL: o.BaseURL, Headers: o.Headers}
}

// OptionsFromMap reads loosely typed tool arguments. "limit" (or "rows")
// becomes the page size; "select" may be a comma list or an array.
func OptionsFromMap(m map[string]any) (Options, error) {
	var o Options
	var err error
	for _, k := range []string{"limit", "rows"} {
		if v, ok := m[k]; ok && v != nil {
			if o.Limit, err = toInt(k, v); err != nil {
				return o, err
			}
			break
		}
	}
	if v, ok := m["max_results"]; ok && v != nil {
		if o.MaxResults, err = toInt("max_results", v); err != nil {
			return o, err
		}
	}
	switch v := m["select"].(type) {
	case nil:
	case string:
		o.Select = sanitize.CleanFields([]string{v})
	case []any:
		fields := make([]string, 0, len(v))
		for _, f := range v {
			s, ok := f.(string)
			if !ok {
				return o, fmt.Errorf("select: want strings, got %T", f)
			}
			fields = append(fields, s)
		}
		o.Select = sanitize.CleanFields(fields)
	case []string:
		o.Select = sanitize.CleanFields(v)
	default:
		return o, fmt.Errorf("select: want string or list, got %T", v)
	}
	if v, ok := m["sort"].(string); ok {
		o.Sort = strings.TrimSpace(v)
	}
	if v, ok := m["base_url"].(string); ok {
		o.BaseURL = strings.TrimSpace(v)
	}
	switch h := m["headers"].(type) {
	case map[string]any:
		o.Headers = make(map[string]string, len(h))
		for k, v := range h {
			o.Headers[k] = fmt.Sprint(v)
		}
	case map[string]string:
		o.Headers = h
	}
	return o, nil
}

// maxCount bounds limit and max_results.
const maxCount = math.MaxInt32

func toInt(name string, v any) (int, error) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: not a number: %q", name, x)
		}
		f = n
	default:
		return 0, fmt.Errorf("%s: want integer, got %T", name, v)
	}
	switch {
	case f != math.Trunc(f):
		return 0, fmt.Errorf("%s: not an integer: %v", name, v)
	case f < 0:
		return 0, fmt.Errorf("%s: must not be negative", name)
	case f > maxCount:
		return 0, fmt.Errorf("%s: out of range: %v", name, v)
	}
	return int(f), nil
}
