package cliapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/dataquery"
	"bvbrcdata/src/internal/qexpr"
	"bvbrcdata/src/internal/tools"
)

// Selector names what to fetch: an accessor call, filters, keyword, all,
// or a direct RQL query.
type Selector struct {
	Kind       tools.Kind
	Collection string
	Accessor   string
	Args       []any
	Filters    qexpr.Filters
	Keyword    string
	RQL        string
}

// Expression renders the query without calling the API.
func (s Selector) Expression(svc *dataquery.Service) (string, error) {
	switch s.Kind {
	case tools.KindBy:
		return svc.Expression(s.Collection, s.Accessor, s.Args)
	case tools.KindFilters:
		return s.Filters.Expression()
	case tools.KindKeyword:
		return qexpr.Keyword(s.Keyword)
	case tools.KindAll:
		return qexpr.MatchAll, nil
	case tools.KindDirect:
		return s.RQL, nil
	}
	return "", fmt.Errorf("unsupported selector %q", s.Kind)
}

// Run executes the selection.
func (s Selector) Run(ctx context.Context, svc *dataquery.Service, opts dataquery.Options) (*dataquery.Result, error) {
	switch s.Kind {
	case tools.KindBy:
		return svc.By(ctx, s.Collection, s.Accessor, s.Args, opts)
	case tools.KindFilters:
		return svc.ByFilters(ctx, s.Collection, s.Filters, opts)
	case tools.KindKeyword:
		return svc.ByKeyword(ctx, s.Collection, s.Keyword, opts)
	case tools.KindAll:
		return svc.All(ctx, s.Collection, opts)
	case tools.KindDirect:
		return svc.Direct(ctx, s.Collection, s.RQL, opts)
	}
	return nil, fmt.Errorf("unsupported selector %q", s.Kind)
}

// QueryFlags are the paging and projection flags shared by query and export.
type QueryFlags struct {
	Limit  int
	Select []string
	Sort   string
	Max    int
}

// Bind registers the flags as persistent flags of cmd.
func (q *QueryFlags) Bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.IntVar(&q.Limit, "limit", 0, "rows per page (default from config, 1000)")
	pf.StringSliceVar(&q.Select, "select", nil, "fields to return (comma-separated)")
	pf.StringVar(&q.Sort, "sort", "", `sort clause, e.g. "genome_name asc"`)
	pf.IntVar(&q.Max, "max", 0, "stop after this many records (0 for all)")
}

// Options converts the flags into per-call options.
func (q *QueryFlags) Options() dataquery.Options {
	return dataquery.Options{Limit: q.Limit, Select: q.Select, Sort: q.Sort, MaxResults: q.Max}
}

// RunFunc receives a parsed selector.
type RunFunc func(cmd *cobra.Command, sel Selector) error

// SelectorCommands returns the by, filters, keyword, all and direct
// subcommands, each handing its parsed selector to run.
func SelectorCommands(run RunFunc) []*cobra.Command {
	var filterPairs []string
	var filtersJSON string
	by := &cobra.Command{
		Use:   "by <collection> <accessor> <value> [max]",
		Short: "Query a collection by one of its fields (ranges take min and optional max)",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := make([]any, 0, 2)
			for _, a := range args[2:] {
				vals = append(vals, a)
			}
			return run(cmd, Selector{Kind: tools.KindBy, Collection: args[0], Accessor: args[1], Args: vals})
		},
	}
	filters := &cobra.Command{
		Use:   "filters <collection>",
		Short: "Query a collection by field=value filters combined with AND",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fs qexpr.Filters
			var err error
			switch {
			case strings.TrimSpace(filtersJSON) != "" && len(filterPairs) > 0:
				return fmt.Errorf("use either --filter or --filters-json, not both")
			case strings.TrimSpace(filtersJSON) != "":
				fs, err = qexpr.ParseFilters([]byte(filtersJSON))
			default:
				fs, err = qexpr.ParseAssignments(filterPairs)
			}
			if err != nil {
				return err
			}
			return run(cmd, Selector{Kind: tools.KindFilters, Collection: args[0], Filters: fs})
		},
	}
	filters.Flags().StringArrayVar(&filterPairs, "filter", nil, "field=value condition (repeatable)")
	filters.Flags().StringVar(&filtersJSON, "filters-json", "", `filters as a JSON object, e.g. '{"genus":"Mycobacterium"}'`)
	keyword := &cobra.Command{
		Use:   "keyword <collection> <keyword>",
		Short: "Search a collection for a keyword",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, Selector{Kind: tools.KindKeyword, Collection: args[0], Keyword: strings.Join(args[1:], " ")})
		},
	}
	all := &cobra.Command{
		Use:   "all <collection>",
		Short: "Fetch every record of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, Selector{Kind: tools.KindAll, Collection: args[0]})
		},
	}
	direct := &cobra.Command{
		Use:   "direct <core> [rql]",
		Short: `Pass an RQL filter straight to a core, e.g. "eq(genome_id,83332.12)"`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := Selector{Kind: tools.KindDirect, Collection: args[0]}
			if len(args) == 2 {
				sel.RQL = args[1]
			}
			return run(cmd, sel)
		},
	}
	return []*cobra.Command{by, filters, keyword, all, direct}
}
