package qexpr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Filter is one field=value condition.
type Filter struct {
	Field string
	Value any
}

// Filters is an ordered set of conditions combined with AND.
type Filters []Filter

// Clause renders a single filter: strings are quoted phrases, other scalars
// are bare, and lists become an OR group over their elements.
func (f Filter) Clause() (string, error) {
	if err := checkField(f.Field); err != nil {
		return "", err
	}
	switch v := f.Value.(type) {
	case nil:
		return "", fmt.Errorf("filter %s: %w", f.Field, ErrNilValue)
	case string:
		return Phrase(f.Field, v)
	case map[string]any:
		return "", fmt.Errorf("filter %s: %w: nested object", f.Field, ErrUnsupportedValue)
	case []any:
		return listClause(f.Field, v)
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return listClause(f.Field, items)
	default:
		return Exact(f.Field, v)
	}
}

// Expression renders the filters in order, joined with AND.
func (fs Filters) Expression() (string, error) {
	if len(fs) == 0 {
		return "", ErrEmptyFilters
	}
	clauses := make([]string, 0, len(fs))
	for _, f := range fs {
		c, err := f.Clause()
		if err != nil {
			return "", err
		}
		clauses = append(clauses, c)
	}
	return And(clauses...), nil
}

// ParseFilters decodes a JSON object into filters, keeping the object's key order.
func ParseFilters(data []byte) (Filters, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("filters: want a JSON object")
	}
	var out Filters
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("filters: %w", err)
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("filters: %s: %w", key, err)
		}
		out = append(out, Filter{Field: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("filters: trailing data after object")
	}
	return out, nil
}

// ParseAssignments reads key=value pairs as given on a command line.
// Values that look like JSON scalars (numbers, true/false) stay unquoted.
func ParseAssignments(pairs []string) (Filters, error) {
	out := make(Filters, 0, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("filter %q: want key=value", p)
		}
		out = append(out, Filter{Field: k, Value: scalar(strings.TrimSpace(v))})
	}
	return out, nil
}

func scalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if isNumber(s) {
		return json.Number(s)
	}
	return s
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil && !strings.ContainsAny(s, `"`)
}

func listClause(field string, items []any) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("filter %s: empty list", field)
	}
	terms := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			return "", fmt.Errorf("filter %s: %w", field, ErrNilValue)
		}
		s, err := Format(it)
		if err != nil {
			return "", fmt.Errorf("filter %s: %w", field, err)
		}
		if _, ok := it.(string); ok {
			terms = append(terms, `"`+EscapePhrase(s)+`"`)
		} else {
			terms = append(terms, s)
		}
	}
	if len(terms) == 1 {
		return field + ":" + terms[0], nil
	}
	return field + ":(" + strings.Join(terms, " OR ") + ")", nil
}
