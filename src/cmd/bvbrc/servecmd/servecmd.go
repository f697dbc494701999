package servecmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/cliapp"
	"bvbrcdata/src/internal/config"
	"bvbrcdata/src/internal/mcp"
	"bvbrcdata/src/internal/render"
	"bvbrcdata/src/internal/tools"
)

// New returns the serve command running the MCP tool server.
func New(version string) *cobra.Command {
	var transport, host string
	var port, ratePerMinute, maxItems int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every accessor as an MCP tool over stdio or HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != "stdio" && transport != "http" {
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
			rt, err := cliapp.Load(cmd)
			if err != nil {
				return err
			}
			reg := tools.NewRegistry(rt.Service, tools.WithMaxItems(maxItems), tools.WithLogger(rt.Logger))
			srv := mcp.NewServer(reg, mcp.WithVersion(version), mcp.WithLogger(rt.Logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if transport == "stdio" {
				return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			addr, httpCfg, err := listenSettings(cmd, rt.Config, host, port, ratePerMinute)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr, httpCfg)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "stdio or http")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (default mcp_url from config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (default port from config, 8059)")
	cmd.Flags().IntVar(&ratePerMinute, "rate-per-minute", 0, "per-client request limit for HTTP, 0 disables")
	cmd.Flags().IntVar(&maxItems, "show", render.DefaultMaxItems, "records shown in text tool results")
	return cmd
}

// listenSettings applies the HTTP flags on top of cfg.
func listenSettings(cmd *cobra.Command, cfg *config.Config, host string, port, ratePerMinute int) (string, mcp.HTTPConfig, error) {
	if host != "" {
		cfg.MCPURL = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if cmd.Flags().Changed("rate-per-minute") {
		cfg.Server.RatePerMinute = ratePerMinute
	}
	if err := cfg.Validate(); err != nil {
		return "", mcp.HTTPConfig{}, err
	}
	return cfg.Addr(), mcp.HTTPConfig{RatePerMinute: cfg.Server.RatePerMinute, Burst: cfg.Server.Burst}, nil
}
