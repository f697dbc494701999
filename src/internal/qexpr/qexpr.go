// Package qexpr renders Solr query expressions for the BV-BRC data API.
//
// Values are escaped with Solr's query-parser rules before they are
// interpolated, so caller input can only ever become a term or a phrase.
package qexpr

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"bvbrcdata/src/internal/dates"
)

// MatchAll selects every document in a core.
const MatchAll = "*:*"

var (
	ErrEmptyField   = errors.New("qexpr: empty field name")
	ErrEmptyFilters = errors.New("qexpr: no filters")
	ErrNilValue     = errors.New("qexpr: nil value")

	// ErrUnsupportedValue is returned for objects, nested lists and other
	// values that have no clause form.
	ErrUnsupportedValue = errors.New("qexpr: unsupported value")
)

// solrSpecial are the characters the standard query parser treats as syntax.
const solrSpecial = `+-&|!(){}[]^"~*?:\/`

// EscapeTerm backslash-escapes Solr syntax characters and whitespace in a bare term.
func EscapeTerm(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(solrSpecial, r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapePhrase escapes the characters that would terminate a quoted phrase.
func EscapePhrase(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Exact renders field:value. Strings are escaped as bare terms; numbers and
// booleans are written as-is.
func Exact(field string, v any) (string, error) {
	if err := checkField(field); err != nil {
		return "", err
	}
	s, err := bare(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return field + ":" + s, nil
}

// Phrase renders field:"value".
func Phrase(field string, v any) (string, error) {
	if err := checkField(field); err != nil {
		return "", err
	}
	s, err := Format(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return field + `:"` + EscapePhrase(s) + `"`, nil
}

// Keyword renders the *value* wildcard used for free-text search.
func Keyword(v any) (string, error) {
	s, err := Format(v)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return MatchAll, nil
	}
	return "*" + EscapeTerm(s) + "*", nil
}

// Bool renders field:true or field:false. Strings such as "yes" or "1" are accepted.
func Bool(field string, v any) (string, error) {
	if err := checkField(field); err != nil {
		return "", err
	}
	b, err := ParseBool(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return field + ":" + strconv.FormatBool(b), nil
}

// Range renders field:[min TO max]. typ "date" normalizes both bounds to
// Solr dates; empty bounds become "*".
func Range(field string, min, max any, typ string) (string, error) {
	if err := checkField(field); err != nil {
		return "", err
	}
	lo, err := bound(min, typ, false)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	hi, err := bound(max, typ, true)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return field + ":[" + lo + " TO " + hi + "]", nil
}

// Span applies the same range to every field and ANDs the clauses, e.g.
// start:[1 TO 9] AND end:[1 TO 9].
func Span(fields []string, min, max any, typ string) (string, error) {
	if len(fields) == 0 {
		return "", ErrEmptyField
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		c, err := Range(f, min, max, typ)
		if err != nil {
			return "", err
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, " AND "), nil
}

// And joins clauses with AND, parenthesizing each only when there is more than one.
func And(clauses ...string) string {
	switch len(clauses) {
	case 0:
		return MatchAll
	case 1:
		return clauses[0]
	}
	var b strings.Builder
	for i, c := range clauses {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString("(" + c + ")")
	}
	return b.String()
}

// Format turns a scalar into its textual query form.
func Format(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", ErrNilValue
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float32:
		return formatFloat(float64(t))
	case float64:
		return formatFloat(t)
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// ParseBool accepts booleans and their common textual spellings.
func ParseBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case nil:
		return false, ErrNilValue
	}
	s, err := Format(v)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number %v", f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func bare(v any) (string, error) {
	s, err := Format(v)
	if err != nil {
		return "", err
	}
	if _, ok := v.(string); ok {
		return EscapeTerm(s), nil
	}
	return s, nil
}

func bound(v any, typ string, upper bool) (string, error) {
	if v == nil {
		return "*", nil
	}
	s, err := Format(v)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return "*", nil
	}
	if typ == "date" {
		return dates.NormalizeSolrDate(s, upper)
	}
	if _, isString := v.(string); !isString {
		return s, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s, nil
	}
	return `"` + EscapePhrase(s) + `"`, nil
}

func checkField(field string) error {
	if strings.TrimSpace(field) == "" {
		return ErrEmptyField
	}
	return nil
}
