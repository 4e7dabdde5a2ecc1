package config

import (
	"fmt"
	"time"
)

// Config represents an sdfio.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	Reader ReaderConfig `yaml:"reader"`
	Output OutputConfig `yaml:"output"`
	Browse BrowseConfig `yaml:"browse"`
}

// ReaderConfig holds parsing defaults from the config file.
type ReaderConfig struct {
	// Lenient retries empty V2000 counts lines with the V3000 parser.
	Lenient bool `yaml:"lenient"`
	// StoreLog attaches captured parser diagnostics to molecule metadata.
	StoreLog bool `yaml:"store_log"`
	// IndexCache persists byte-offset tables in sidecar files.
	IndexCache bool `yaml:"index_cache"`
	// ProgressInterval is how often long-running commands log progress.
	// Zero disables progress logging.
	ProgressInterval Duration `yaml:"progress_interval"`
}

// OutputConfig holds rendering and serialization defaults.
type OutputConfig struct {
	// Format is the report format: json, table, yaml.
	Format string `yaml:"format"`
	// SDFVersion selects the molblock dialect written by convert:
	// v2000 or v3000.
	SDFVersion string `yaml:"sdf_version"`
}

// BrowseConfig holds interactive browser defaults.
type BrowseConfig struct {
	// MetaRows caps the metadata rows shown per record. Zero means all.
	MetaRows int `yaml:"meta_rows"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Output: OutputConfig{SDFVersion: "v2000"},
	}
}

// Validate checks enumerated fields. Empty values are allowed; they mean
// "use the built-in default".
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "", "json", "table", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q (must be json, table, or yaml)", c.Output.Format)
	}
	switch c.Output.SDFVersion {
	case "", "v2000", "v3000":
	default:
		return fmt.Errorf("invalid output.sdf_version %q (must be v2000 or v3000)", c.Output.SDFVersion)
	}
	if c.Browse.MetaRows < 0 {
		return fmt.Errorf("browse.meta_rows must not be negative")
	}
	return nil
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
