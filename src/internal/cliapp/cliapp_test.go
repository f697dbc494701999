package cliapp

import (
	"testing"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/qexpr"
	"bvbrcdata/src/internal/tools"
)

func TestParseHeaders(t *testing.T) {
	h, err := ParseHeaders([]string{"Authorization=Bearer x", "X-Trace: 7"})
	if err != nil {
		t.Fatalf("ParseHeaders: %v", err)
	}
	if h["Authorization"] != "Bearer x" || h["X-Trace"] != "7" {
		t.Fatalf("headers: %v", h)
	}
	if _, err := ParseHeaders([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestLoadAppliesFlags(t *testing.T) {
	root := &cobra.Command{Use: "bvbrc", RunE: func(*cobra.Command, []string) error { return nil }}
	AddPersistentFlags(root)
	if err := root.ParseFlags([]string{"--base-url", "https://mirror.example.org/api/", "--header", "X-A=1", "--log-level", "DEBUG"}); err != nil {
		t.Fatal(err)
	}
	rt, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rt.Client.BaseURL() != "https://mirror.example.org/api" || rt.Config.Headers["X-A"] != "1" || rt.Config.Log.Level != "DEBUG" {
		t.Fatalf("runtime: base=%s cfg=%+v", rt.Client.BaseURL(), rt.Config)
	}
	if rt.Service.DefaultLimit() != rt.Config.DefaultLimit {
		t.Fatalf("default limit not wired: %d", rt.Service.DefaultLimit())
	}
}

func TestSelectorExpression(t *testing.T) {
	root := &cobra.Command{Use: "x"}
	rt, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := []struct {
		sel  Selector
		want string
	}{
		{Selector{Kind: tools.KindBy, Collection: "genome", Accessor: "genome_name", Args: []any{"E. coli"}}, `genome_name:"E. coli"`},
		{Selector{Kind: tools.KindFilters, Filters: qexpr.Filters{{Field: "a", Value: "x"}}}, `a:"x"`},
		{Selector{Kind: tools.KindKeyword, Keyword: "  "}, "*:*"},
		{Selector{Kind: tools.KindAll}, "*:*"},
		{Selector{Kind: tools.KindDirect, RQL: "eq(a,b)"}, "eq(a,b)"},
	}
	for _, c := range cases {
		got, err := c.sel.Expression(rt.Service)
		if err != nil || got != c.want {
			t.Fatalf("%+v: want %q, got %q (%v)", c.sel, c.want, got, err)
		}
	}
	if _, err := (Selector{Kind: "bogus"}).Expression(rt.Service); err == nil {
		t.Fatalf("expected error for unknown selector kind")
	}
}

func TestSelectorCommands(t *testing.T) {
	var got []Selector
	cmds := SelectorCommands(func(_ *cobra.Command, sel Selector) error {
		got = append(got, sel)
		return nil
	})
	if len(cmds) != 5 {
		t.Fatalf("want 5 subcommands, got %d", len(cmds))
	}
	parent := &cobra.Command{Use: "query"}
	parent.AddCommand(cmds...)
	parent.SetArgs([]string{"by", "epitope", "position_range", "1", "9"})
	if err := parent.Execute(); err != nil {
		t.Fatal(err)
	}
	parent.SetArgs([]string{"filters", "genome", "--filters-json", `{"b":1,"a":"x"}`})
	if err := parent.Execute(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Kind != tools.KindBy || len(got[0].Args) != 2 {
		t.Fatalf("by selector: %+v", got)
	}
	if got[1].Filters[0].Field != "b" || got[1].Filters[1].Field != "a" {
		t.Fatalf("filters order: %+v", got[1].Filters)
	}
}
