package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bvbrcdata/src/cmd/bvbrc/collectionscmd"
	"bvbrcdata/src/cmd/bvbrc/exportcmd"
	"bvbrcdata/src/cmd/bvbrc/querycmd"
	"bvbrcdata/src/cmd/bvbrc/servecmd"
	"bvbrcdata/src/internal/cliapp"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bvbrc",
		Short:         "Query BV-BRC data collections and serve them as MCP tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cliapp.AddPersistentFlags(root)
	root.AddCommand(collectionscmd.New())
	root.AddCommand(querycmd.New())
	root.AddCommand(exportcmd.New())
	root.AddCommand(servecmd.New(version))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
