// Package cliapp holds what the bvbrc subcommands share: persistent flags,
// the configured service, and the selector subcommands used by both query
// and export.
package cliapp

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bvbrcdata/src/internal/catalog"
	"bvbrcdata/src/internal/config"
	"bvbrcdata/src/internal/dataquery"
	"bvbrcdata/src/internal/httpx"
	"bvbrcdata/src/internal/logging"
	"bvbrcdata/src/internal/solr"
	"bvbrcdata/src/internal/stringsx"
)

var client httpx.Doer

// SetHTTPClient injects the HTTP client used for API calls (tests).
func SetHTTPClient(c httpx.Doer) { client = c }

// AddPersistentFlags registers the root flags shared by every subcommand.
func AddPersistentFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./bvbrc.yaml if present)")
	pf.String("base-url", "", "BV-BRC data API base URL")
	pf.StringArray("header", nil, "extra request header as name=value (repeatable)")
	pf.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	pf.String("log-format", "", "log format: text or json")
}

// Runtime is the configured toolkit for one command invocation.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *solr.Client
	Service *dataquery.Service
}

func flagString(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func flagHeaders(cmd *cobra.Command) ([]string, error) {
	if cmd.Flags().Lookup("header") == nil {
		return nil, nil
	}
	return cmd.Flags().GetStringArray("header")
}

// ParseHeaders turns name=value (or name:value) pairs into a header map.
func ParseHeaders(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := stringsx.CutAny(p, "=:")
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: want name=value", p)
		}
		out[name] = value
	}
	return out, nil
}

// Load reads configuration, applies root flag overrides, installs the
// logger and builds the client and service.
func Load(cmd *cobra.Command) (*Runtime, error) {
	cfg, err := config.Load(flagString(cmd, "config"))
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = stringsx.FirstNonEmpty(flagString(cmd, "base-url"), cfg.BaseURL)
	cfg.Log.Level = stringsx.FirstNonEmpty(flagString(cmd, "log-level"), cfg.Log.Level)
	cfg.Log.Format = stringsx.FirstNonEmpty(flagString(cmd, "log-format"), cfg.Log.Format)
	pairs, err := flagHeaders(cmd)
	if err != nil {
		return nil, err
	}
	extra, err := ParseHeaders(pairs)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range extra {
			cfg.Headers[k] = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	opts := []solr.Option{solr.WithLogger(logger)}
	if client != nil {
		opts = append(opts, solr.WithDoer(client))
	}
	c, err := solr.New(solr.Config{
		BaseURL:   cfg.BaseURL,
		Headers:   cfg.Headers,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}, opts...)
	if err != nil {
		return nil, err
	}
	svc := dataquery.New(cat, c, dataquery.WithDefaultLimit(cfg.DefaultLimit), dataquery.WithLogger(logger))
	return &Runtime{Config: cfg, Logger: logger, Client: c, Service: svc}, nil
}
