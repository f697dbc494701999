package qexpr

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestClauseShapes(t *testing.T) {
	check := func(name, got string, err error, want string) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: want %q, got %q", name, want, got)
		}
	}
	got, err := Exact("taxon_id", 562)
	check("exact int", got, err, "taxon_id:562")
	got, err = Exact("epitope_id", "12345")
	check("exact string", got, err, "epitope_id:12345")
	got, err = Phrase("genome_name", "Escherichia coli")
	check("phrase", got, err, `genome_name:"Escherichia coli"`)
	got, err = Keyword("kinase")
	check("keyword", got, err, "*kinase*")
	got, err = Range("length", 100, 2000, "integer")
	check("range", got, err, "length:[100 TO 2000]")
	got, err = Range("date_inserted", "2020", "2021-06", "date")
	check("date range", got, err, "date_inserted:[2020-01-01T00:00:00Z TO 2021-06-30T23:59:59Z]")
	got, err = Range("prevalence", nil, 0.5, "number")
	check("open range", got, err, "prevalence:[* TO 0.5]")
	got, err = Span([]string{"start", "end"}, 10, 500, "integer")
	check("span", got, err, "start:[10 TO 500] AND end:[10 TO 500]")
	got, err = Bool("public", true)
	check("bool", got, err, "public:true")
	got, err = Bool("is_public", "no")
	check("bool string", got, err, "is_public:false")
}

func TestEscaping(t *testing.T) {
	got, _ := Phrase("product", `say "hi" \ bye`)
	if want := `product:"say \"hi\" \\ bye"`; got != want {
		t.Fatalf("phrase escape: want %q, got %q", want, got)
	}
	got, _ = Exact("gene", "a:b OR c")
	if want := `gene:a\:b\ OR\ c`; got != want {
		t.Fatalf("term escape: want %q, got %q", want, got)
	}
	got, _ = Keyword("beta lactamase*")
	if want := `*beta\ lactamase\**`; got != want {
		t.Fatalf("keyword escape: want %q, got %q", want, got)
	}
	got, _ = Range("strain", "A 1", "B 2", "string")
	if want := `strain:["A 1" TO "B 2"]`; got != want {
		t.Fatalf("string range: want %q, got %q", want, got)
	}
}

func TestKeywordEmptyMatchesAll(t *testing.T) {
	if got, _ := Keyword("  "); got != MatchAll {
		t.Fatalf("blank keyword: %q", got)
	}
}

func TestInvalidInputs(t *testing.T) {
	if _, err := Exact("", "x"); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("empty field: %v", err)
	}
	if _, err := Phrase("f", nil); !errors.Is(err, ErrNilValue) {
		t.Fatalf("nil phrase: %v", err)
	}
	if _, err := Bool("f", "maybe"); err == nil {
		t.Fatalf("expected bool parse error")
	}
	if _, err := Range("d", "yesterday", "*", "date"); err == nil {
		t.Fatalf("expected date error")
	}
	if _, err := Span(nil, 1, 2, ""); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("span without fields: %v", err)
	}
}

func TestAnd(t *testing.T) {
	if got := And(); got != MatchAll {
		t.Fatalf("And(): %q", got)
	}
	if got := And("a:1"); got != "a:1" {
		t.Fatalf("And single: %q", got)
	}
	if got := And("a:1", "b:2", "c:3"); got != "(a:1) AND (b:2) AND (c:3)" {
		t.Fatalf("And multi: %q", got)
	}
}

func TestFiltersExpression(t *testing.T) {
	fs := Filters{{Field: "a", Value: "x"}, {Field: "b", Value: 5}}
	got, err := fs.Expression()
	if err != nil {
		t.Fatal(err)
	}
	if want := `(a:"x") AND (b:5)`; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	got, _ = Filters{{Field: "a", Value: "x"}}.Expression()
	if got != `a:"x"` {
		t.Fatalf("single filter should not be parenthesized: %q", got)
	}
	if _, err := (Filters{}).Expression(); !errors.Is(err, ErrEmptyFilters) {
		t.Fatalf("empty filters: %v", err)
	}
	if _, err := (Filters{{Field: "a"}}).Expression(); !errors.Is(err, ErrNilValue) {
		t.Fatalf("nil filter value: %v", err)
	}
}

func TestFilterLists(t *testing.T) {
	got, err := Filters{{Field: "genome_id", Value: []any{"1.1", "2.2"}}}.Expression()
	if err != nil {
		t.Fatal(err)
	}
	if want := `genome_id:("1.1" OR "2.2")`; got != want {
		t.Fatalf("list: want %q, got %q", want, got)
	}
	got, _ = Filters{{Field: "taxon_id", Value: []string{"562"}}}.Expression()
	if got != `taxon_id:"562"` {
		t.Fatalf("single element list: %q", got)
	}
}

func TestNestedValuesRejected(t *testing.T) {
	fs, err := ParseFilters([]byte(`{"a": {"b": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, err := fs.Expression(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("nested object: got %q, %v", got, err)
	}
	if _, err := (Filters{{Field: "a", Value: []any{[]any{1}}}}).Expression(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("nested list: %v", err)
	}
	if _, err := Exact("a", struct{ B int }{1}); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("struct value: %v", err)
	}
	if got, err := Exact("a", int16(7)); err != nil || got != "a:7" {
		t.Fatalf("int16: %q %v", got, err)
	}
}

func TestParseFiltersKeepsOrder(t *testing.T) {
	fs, err := ParseFilters([]byte(`{"z": "last", "a": 5, "m": true, "f": 1.5}`))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := fs.Expression()
	if want := `(z:"last") AND (a:5) AND (m:true) AND (f:1.5)`; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if _, err := ParseFilters([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object")
	}
	if _, err := ParseFilters([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestParseAssignments(t *testing.T) {
	fs, err := ParseAssignments([]string{"genome_status=Complete", "taxon_id=562", "public=true"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fs[1].Value.(json.Number); !ok {
		t.Fatalf("numeric value should stay a number: %T", fs[1].Value)
	}
	got, _ := fs.Expression()
	if want := `(genome_status:"Complete") AND (taxon_id:562) AND (public:true)`; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if _, err := ParseAssignments([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing =")
	}
}
