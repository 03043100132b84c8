package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const _MetadataConfig = "config"

// Config holds defaults for flags that were not set on the command line.
type Config struct {
	URL      string            `toml:"url"`
	Listen   string            `toml:"listen"`
	LogLevel string            `toml:"log_level"`
	Headers  map[string]string `toml:"headers"`
}

// LoadConfig decodes the toml file at path. An empty path yields an empty
// Config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	if _, err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply sets the app level flags that were left unset on ctx.
func (c *Config) Apply(ctx *cli.Context) error {
	if c.URL != "" && !ctx.IsSet("url") {
		if err := ctx.Set("url", c.URL); err != nil {
			return err
		}
	}

	if len(c.Headers) > 0 && !ctx.IsSet("headers") {
		names := make([]string, 0, len(c.Headers))
		for name := range c.Headers {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := ctx.Set("headers", name+"="+c.Headers[name]); err != nil {
				return err
			}
		}
	}

	return nil
}

// Level picks the level from --trace, --verbose or --quiet, then from
// log_level, and defaults to info.
func (c *Config) Level(ctx *cli.Context) (logrus.Level, error) {
	switch {
	case ctx.Bool(_FlagTrace.Name):
		return logrus.TraceLevel, nil
	case ctx.Bool(_FlagVerbose.Name):
		return logrus.DebugLevel, nil
	case ctx.Bool(_FlagQuiet.Name):
		return logrus.WarnLevel, nil
	case c.LogLevel != "":
		level, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return logrus.InfoLevel, fmt.Errorf("invalid log_level: %w", err)
		}
		return level, nil
	default:
		return logrus.InfoLevel, nil
	}
}

func configFromContext(ctx *cli.Context) *Config {
	if cfg, ok := ctx.App.Metadata[_MetadataConfig].(*Config); ok {
		return cfg
	}
	return &Config{}
}
