package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/config"
	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/sdf"
)

// defaultConfigPath is consulted when --config is not given.
const defaultConfigPath = "sdfio.yaml"

// loadConfig resolves the effective configuration: an explicit --config
// path must exist; the default path is optional.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}

// readerOptions merges config defaults with command flags. Flags win.
func readerOptions(c *cli.Context, cfg *config.Config, logger *log.Logger) sdf.Options {
	return sdf.Options{
		Lenient:    c.Bool("lenient") || cfg.Reader.Lenient,
		StoreLog:   c.Bool("store-log") || cfg.Reader.StoreLog,
		IndexCache: c.Bool("index-cache") || cfg.Reader.IndexCache,
		Logger:     logger,
	}
}

// inputArg returns the single positional input path.
func inputArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one input file, got %d arguments", c.NArg())
	}
	return c.Args().First(), nil
}
