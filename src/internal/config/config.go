// Package config loads toolkit settings. BVBRC_* environment variables
// override the config file, which overrides the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bvbrcdata/src/internal/sanitize"
)

// EnvPrefix prefixes every environment override, e.g. BVBRC_BASE_URL.
const EnvPrefix = "BVBRC"

type Config struct {
	BaseURL      string            `mapstructure:"base_url"`
	MCPURL       string            `mapstructure:"mcp_url"`
	Port         int               `mapstructure:"port"`
	DefaultLimit int               `mapstructure:"default_limit"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	RateLimit    float64           `mapstructure:"rate_limit"`
	Burst        int               `mapstructure:"burst"`
	Headers      map[string]string `mapstructure:"headers"`
	Log          Log               `mapstructure:"log"`
	Server       Server            `mapstructure:"server"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Server struct {
	RatePerMinute int `mapstructure:"rate_per_minute"`
	Burst         int `mapstructure:"burst"`
}

var defaults = map[string]any{
	"base_url":               "https://www.bv-brc.org/api",
	"mcp_url":                "127.0.0.1",
	"port":                   8059,
	"default_limit":          1000,
	"timeout":                "60s",
	"rate_limit":             0,
	"burst":                  1,
	"headers":                map[string]string{},
	"log.level":              "INFO",
	"log.format":             "text",
	"server.rate_per_minute": 600,
	"server.burst":           60,
}

// Default returns the built-in settings.
func Default() *Config {
	c, _ := decode(newViper())
	return c
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when given (YAML or JSON by extension), otherwise an
// optional bvbrc.yaml/bvbrc.json in the working directory.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bvbrc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}
	c, err := decode(v)
	if err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	return &c, nil
}

// Validate rejects settings the client or server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if sanitize.CleanURL(c.BaseURL) == "" {
		errs = append(errs, fmt.Errorf("base_url: not an http(s) url: %q", c.BaseURL))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("default_limit: must be positive, got %d", c.DefaultLimit))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port: out of range: %d", c.Port))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout: must be positive, got %s", c.Timeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit: must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the host:port the HTTP transport listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.MCPURL, strconv.Itoa(c.Port))
}
