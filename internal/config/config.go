// Package config layers hunt settings from defaults, an optional YAML file,
// CLONEHUNT_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix      = "CLONEHUNT"
	DefaultThreads = 8
	DefaultDepth   = 10
)

var ErrConflictingOptions = errors.New("conflicting options")

// Hunt is the raw, unvalidated hunt configuration. Sizes stay strings so
// they can be written as "150 KiB" anywhere. Environment names are the
// prefix plus the split field name, e.g. CLONEHUNT_MAX_DEPTH.
type Hunt struct {
	Path        string `yaml:"path"         split_words:"true"`
	MaxDepth    int    `yaml:"max_depth"    split_words:"true"`
	Unbounded   bool   `yaml:"unbounded"    split_words:"true"`
	Extensions  string `yaml:"extensions"   split_words:"true"`
	MinSize     string `yaml:"min_size"     split_words:"true"`
	MaxSize     string `yaml:"max_size"     split_words:"true"`
	Checksum    bool   `yaml:"checksum"     split_words:"true"`
	Threads     int    `yaml:"threads"      split_words:"true"`
	Verbose     bool   `yaml:"verbose"      split_words:"true"`
	SortBy      string `yaml:"sort_by"      split_words:"true"`
	OrderBy     string `yaml:"order_by"     split_words:"true"`
	OutputFile  string `yaml:"output_file"  split_words:"true"`
	OutputStyle string `yaml:"output_style" split_words:"true"`
	TopDirs     int    `yaml:"top_dirs"     split_words:"true"`
}

// Default returns the built-in settings.
func Default() Hunt {
	return Hunt{
		MaxDepth: DefaultDepth,
		Threads:  DefaultThreads,
		SortBy:   "file-type",
	}
}

// Load applies the YAML file at path (or $CLONEHUNT_CONFIG when path is
// empty) and then the environment on top of the defaults. A missing file
// is only an error when it was asked for explicitly.
func Load(path string) (Hunt, error) {
	h := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.UnmarshalWithOptions(data, &h, yaml.Strict()); err != nil {
				return Hunt{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case explicit || !os.IsNotExist(err):
			return Hunt{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &h); err != nil {
		return Hunt{}, fmt.Errorf("parsing environment variables: %w", err)
	}
	return h, nil
}
