package catalog

import (
	"errors"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(c.Collections); got != 33 {
		t.Fatalf("collections: want 33, got %d", got)
	}
	for _, name := range []string{"genome", "epitope", "taxonomy", "surveillance", "antibiotics"} {
		if _, err := c.Lookup(name); err != nil {
			t.Fatalf("Lookup(%s): %v", name, err)
		}
	}
	names := c.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names not sorted: %v", names)
		}
	}
}

func TestEpitopeAccessors(t *testing.T) {
	col, err := MustLoad().Lookup("epitope")
	if err != nil {
		t.Fatal(err)
	}
	if col.Family != FamilyStream || col.Key != "epitope_id" {
		t.Fatalf("epitope family/key: %+v", col)
	}
	a, err := col.Accessor("id")
	if err != nil {
		t.Fatal(err)
	}
	if a.Field != "epitope_id" || a.Match != MatchExact || a.Arity() != 1 {
		t.Fatalf("id accessor: %+v", a)
	}
	a, _ = col.Accessor("host_name")
	if a.Match != MatchPhrase || a.Field != "host_name" || a.ValueType() != TypeString {
		t.Fatalf("host_name accessor: %+v", a)
	}
	a, _ = col.Accessor("date_inserted_range")
	if a.Match != MatchRange || a.Arity() != 2 || a.ValueType() != TypeDate {
		t.Fatalf("date range accessor: %+v", a)
	}
	if _, err := col.Accessor("nope"); !errors.Is(err, ErrUnknownAccessor) {
		t.Fatalf("expected ErrUnknownAccessor, got %v", err)
	}
}

func TestSpanAndBool(t *testing.T) {
	col, _ := MustLoad().Lookup("protein_feature")
	a, err := col.Accessor("position_range")
	if err != nil {
		t.Fatal(err)
	}
	if a.Match != MatchSpan || len(a.Fields) != 2 || a.Fields[0] != "start" || a.Fields[1] != "end" {
		t.Fatalf("span accessor: %+v", a)
	}
	col, _ = MustLoad().Lookup("pathway")
	a, err = col.Accessor("public_status")
	if err != nil {
		t.Fatal(err)
	}
	if a.Match != MatchBool || a.Field != "public" || a.ValueType() != TypeBoolean {
		t.Fatalf("bool accessor: %+v", a)
	}
}

func TestDelegateFamily(t *testing.T) {
	col, _ := MustLoad().Lookup("genome")
	if col.Family != FamilyDelegate || col.Key != "genome_id" {
		t.Fatalf("genome: %+v", col)
	}
	a, _ := col.Accessor("taxon_id")
	if a.Match != MatchExact || a.ValueType() != TypeInteger {
		t.Fatalf("taxon_id: %+v", a)
	}
}

func TestUnknownCollection(t *testing.T) {
	if _, err := MustLoad().Lookup("genomes"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestParseRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"dup collection": "collections:\n  - {name: a, accessors: []}\n  - {name: a, accessors: []}\n",
		"dup accessor":   "collections:\n  - name: a\n    accessors:\n      - {name: x, match: exact}\n      - {name: x, match: phrase}\n",
		"bad match":      "collections:\n  - name: a\n    accessors:\n      - {name: x, match: fuzzy}\n",
		"short span":     "collections:\n  - name: a\n    accessors:\n      - {name: x, match: span, fields: [start]}\n",
		"bad family":     "collections:\n  - {name: a, family: batch}\n",
		"bad type":       "collections:\n  - name: a\n    accessors:\n      - {name: x, match: exact, type: uuid}\n",
		"same params":    "collections:\n  - name: a\n    accessors:\n      - {name: r, match: range, min_param: v, max_param: v}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("collections:\n  - name: a\n    accessors:\n      - {name: x, match: exact}\n"))
	if err != nil {
		t.Fatal(err)
	}
	col, _ := c.Lookup("a")
	if col.Family != FamilyStream || col.Key != "id" {
		t.Fatalf("defaults: %+v", col)
	}
	a, _ := col.Accessor("x")
	if a.Field != "x" || a.Param != "x" {
		t.Fatalf("field default: %+v", a)
	}
}

func TestParamNames(t *testing.T) {
	c, err := Parse([]byte("collections:\n  - name: a\n    accessors:\n      - {name: r, match: range}\n      - {name: id, field: a_id, match: exact, param: a_id}\n"))
	if err != nil {
		t.Fatal(err)
	}
	col, _ := c.Lookup("a")
	r, _ := col.Accessor("r")
	if p := r.Params(); len(p) != 2 || p[0] != "min" || p[1] != "max" {
		t.Fatalf("range params: %v", p)
	}
	id, _ := col.Accessor("id")
	if p := id.Params(); len(p) != 1 || p[0] != "a_id" {
		t.Fatalf("id params: %v", p)
	}

	genome, _ := MustLoad().Lookup("genome")
	a, _ := genome.Accessor("id")
	if a.Param != "genome_id" {
		t.Fatalf("genome id param: %q", a.Param)
	}
	epitope, _ := MustLoad().Lookup("epitope")
	a, _ = epitope.Accessor("position_range")
	if p := a.Params(); p[0] != "min_start" || p[1] != "max_end" {
		t.Fatalf("epitope position params: %v", p)
	}
	antibiotics, _ := MustLoad().Lookup("antibiotics")
	a, _ = antibiotics.Accessor("date_range")
	if p := a.Params(); p[0] != "start_date" || p[1] != "end_date" {
		t.Fatalf("antibiotics date params: %v", p)
	}
}
