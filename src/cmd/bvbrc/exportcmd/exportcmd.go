package exportcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/cliapp"
	"bvbrcdata/src/internal/export"
)

// New returns the export command writing a full result set to a file.
func New() *cobra.Command {
	var qf cliapp.QueryFlags
	var out, format, compression string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch a result set and write it to a file (json, ndjson, yaml, msgpack; gzip or zstd)",
	}
	qf.Bind(cmd)
	cmd.PersistentFlags().StringVarP(&out, "output", "o", "", "output file; format and compression follow the extension unless set")
	cmd.PersistentFlags().StringVar(&format, "format", "", "json, ndjson, yaml or msgpack")
	cmd.PersistentFlags().StringVar(&compression, "compress", "", "none, gzip or zstd")

	run := func(cmd *cobra.Command, sel cliapp.Selector) error {
		if strings.TrimSpace(out) == "" {
			return fmt.Errorf("--output is required")
		}
		opts := export.Infer(out)
		if format != "" {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
		}
		if compression != "" {
			c, err := export.ParseCompression(compression)
			if err != nil {
				return err
			}
			opts.Compression = c
		}
		rt, err := cliapp.Load(cmd)
		if err != nil {
			return err
		}
		res, err := sel.Run(cmd.Context(), rt.Service, qf.Options())
		if err != nil {
			return err
		}
		if err := export.WriteFile(out, res, opts); err != nil {
			return err
		}
		rt.Logger.Debug("export written", "path", out, "format", opts.Format, "compression", opts.Compression)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d record(s) to %s\n", res.Count, out)
		return err
	}
	for _, sub := range cliapp.SelectorCommands(run) {
		cmd.AddCommand(sub)
	}
	return cmd
}
