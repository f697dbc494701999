package collectionscmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/catalog"
	"bvbrcdata/src/internal/render"
	"bvbrcdata/src/internal/tools"
)

// New returns the collections command listing the catalog or one collection's accessors.
func New() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "collections [name]",
		Short: "List collections, or the accessors and tool names of one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return listCollections(cmd, cat, format)
			}
			col, err := cat.Lookup(args[0])
			if err != nil {
				return err
			}
			return showCollection(cmd, col, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or yaml")
	return cmd
}

func listCollections(cmd *cobra.Command, cat *catalog.Catalog, format string) error {
	switch format {
	case "json":
		return render.JSON(cmd.OutOrStdout(), cat.Collections)
	case "yaml":
		return render.YAML(cmd.OutOrStdout(), cat)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	headers := []string{"collection", "family", "key", "accessors", "description"}
	rows := make([][]string, 0, len(cat.Collections))
	for _, name := range cat.Names() {
		col, _ := cat.Lookup(name)
		rows = append(rows, []string{col.Name, string(col.Family), col.Key, strconv.Itoa(len(col.Accessors)), col.Description})
	}
	render.Table(cmd.OutOrStdout(), headers, rows)
	return nil
}

func showCollection(cmd *cobra.Command, col *catalog.Collection, format string) error {
	switch format {
	case "json":
		return render.JSON(cmd.OutOrStdout(), col)
	case "yaml":
		return render.YAML(cmd.OutOrStdout(), col)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s (%s, key %s): %s\n\n", col.Name, col.Family, col.Key, col.Description)
	headers := []string{"accessor", "field", "match", "type", "args", "tool"}
	rows := make([][]string, 0, len(col.Accessors)+3)
	for _, a := range col.Accessors {
		field := a.Field
		if a.Match == catalog.MatchSpan {
			field = fmt.Sprint(a.Fields)
		}
		rows = append(rows, []string{a.Name, field, string(a.Match), a.ValueType(), strings.Join(a.Params(), ","), tools.ByName(col.Name, a.Name)})
	}
	rows = append(rows,
		[]string{"filters", "", "", "", "filters_json", tools.FiltersName(col.Name)},
		[]string{"keyword", "", "", "", "keyword", tools.KeywordName(col.Name)},
		[]string{"all", "", "", "", "", tools.AllName(col.Name)},
	)
	render.Table(out, headers, rows)
	return nil
}
