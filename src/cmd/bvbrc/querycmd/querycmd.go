package querycmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/catalog"
	"bvbrcdata/src/internal/cliapp"
	"bvbrcdata/src/internal/dataquery"
	"bvbrcdata/src/internal/render"
	"bvbrcdata/src/internal/tools"
)

// New returns the query command with by, filters, keyword, all and direct subcommands.
func New() *cobra.Command {
	var qf cliapp.QueryFlags
	var format string
	var show int
	var exprOnly bool
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a BV-BRC collection and print the results",
	}
	qf.Bind(cmd)
	cmd.PersistentFlags().StringVar(&format, "format", "text", "output format: text, table, json or yaml")
	cmd.PersistentFlags().IntVar(&show, "show", render.DefaultMaxItems, "records shown in text format")
	cmd.PersistentFlags().BoolVar(&exprOnly, "expr-only", false, "print the query expression without calling the API")

	run := func(cmd *cobra.Command, sel cliapp.Selector) error {
		if err := checkFormat(format); err != nil {
			return err
		}
		rt, err := cliapp.Load(cmd)
		if err != nil {
			return err
		}
		if exprOnly {
			expr, err := sel.Expression(rt.Service)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), expr)
			return err
		}
		res, err := sel.Run(cmd.Context(), rt.Service, qf.Options())
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), res, sel, format, show, qf.Select)
	}
	for _, sub := range cliapp.SelectorCommands(run) {
		cmd.AddCommand(sub)
	}
	return cmd
}

func checkFormat(f string) error {
	switch f {
	case "text", "table", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q", f)
}

func write(w io.Writer, res *dataquery.Result, sel cliapp.Selector, format string, show int, columns []string) error {
	switch format {
	case "json":
		return render.JSON(w, res)
	case "yaml":
		return render.YAML(w, res)
	case "table":
		render.RecordsTable(w, res.Records, columns)
		return nil
	}
	// stream collections report a count line like their tool counterparts
	if sel.Kind != tools.KindDirect && res.Family == catalog.FamilyStream {
		if _, err := fmt.Fprintf(w, "count: %d\n", res.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, render.FormatResult(res.Records, show))
	return err
}
