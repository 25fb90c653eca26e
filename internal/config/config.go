// Package config loads the tool configuration: log directory, record
// sink backend, the distance pass toggle, and the item filter lists.
// The hard-coded filter defaults are part of the interface contract;
// a configuration file may extend them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rbrinfo/rbrinfo/internal/extract"
	"github.com/rbrinfo/rbrinfo/internal/rerr"
)

// Sink selects the record writer backend
type Sink string

// Writer backends
const (
	SinkFile   Sink = "file"
	SinkMemory Sink = "memory"
)

// Config is the loaded tool configuration
type Config struct {
	LogDir   string      `yaml:"log_dir"`
	Sink     Sink        `yaml:"sink"`
	Distance bool        `yaml:"distance"`
	Filters  FilterLists `yaml:"filters"`
}

// FilterLists extends the built-in filter lists
type FilterLists struct {
	PathSubstrings []string `yaml:"path_substrings"`
	ImplPaths      []string `yaml:"impl_paths"`
	FnNames        []string `yaml:"fn_names"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		LogDir:   "rbrinfo-logs",
		Sink:     SinkFile,
		Distance: true,
	}
}

// Load reads a YAML configuration file. A missing file yields the
// defaults; a corrupted file is fatal.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, rerr.Newf(rerr.DRV004, "config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rerr.Newf(rerr.DRV004, "config %s: %v", path, err)
	}
	if cfg.Sink == "" {
		cfg.Sink = SinkFile
	}
	return cfg, nil
}

// ExtractFilters merges the configured extensions onto the built-in
// lists. Configuration extends the defaults; it never narrows them.
func (c *Config) ExtractFilters() extract.Filters {
	f := extract.DefaultFilters()
	f.PathSubstrings = append(f.PathSubstrings, c.Filters.PathSubstrings...)
	f.ImplPaths = append(f.ImplPaths, c.Filters.ImplPaths...)
	f.FnNames = append(f.FnNames, c.Filters.FnNames...)
	return f
}
