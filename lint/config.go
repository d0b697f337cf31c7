package lint

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnoverse/ccheck/internal"
)

// Config is the content of .ccheck.yaml.
type Config struct {
	Name string `yaml:"name"`
	// InheritContracts defaults to true.
	InheritContracts *bool `yaml:"inherit_contracts,omitempty"`
	// Methods selects the methods to verify by pattern; empty means all.
	Methods []string `yaml:"methods,omitempty"`
	// Skip excludes methods by pattern.
	Skip []string `yaml:"skip,omitempty"`
	// CacheDir enables the result cache.
	CacheDir string       `yaml:"cache_dir,omitempty"`
	Report   ReportConfig `yaml:"report"`
}

type ReportConfig struct {
	JSON bool `yaml:"json"`
}

// DefaultConfig returns the configuration written by "ccheck init".
func DefaultConfig() Config {
	inherit := true
	return Config{
		Name:             "ccheck",
		InheritContracts: &inherit,
	}
}

func (c Config) inheritContracts() bool {
	return c.InheritContracts == nil || *c.InheritContracts
}

func (c Config) engineOptions(configurationPath string) internal.Options {
	opts := internal.Options{
		InheritContracts: c.inheritContracts(),
		Methods:          c.Methods,
		Skip:             c.Skip,
	}
	if c.CacheDir != "" {
		opts.CacheDir = c.CacheDir
		if !filepath.IsAbs(opts.CacheDir) && configurationPath != "" {
			opts.CacheDir = filepath.Join(filepath.Dir(configurationPath), opts.CacheDir)
		}
		if configurationPath != "" {
			opts.Dependencies = []string{configurationPath}
		}
	}
	return opts
}

// LoadConfig reads a configuration file. A missing file yields the
// default configuration.
func LoadConfig(configurationPath string) (Config, error) {
	config, err := parseConfigurationFile(configurationPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return config, err
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	// an empty file keeps the defaults
	if err := yaml.NewDecoder(f).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

// WriteConfig writes config to path in YAML.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
