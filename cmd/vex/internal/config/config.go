package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project root
const FileName = "vex.yaml"

// Config represents the vex.yaml configuration
type Config struct {
	// Builder package used by generated code
	Builder *BuilderConfig `yaml:"builder,omitempty"`

	// Stringer applied to text and attribute values
	Stringer *StringerConfig `yaml:"stringer,omitempty"`

	// Emit /*line*/ directives pointing back into .vex files
	LineDirectives bool `yaml:"lineDirectives,omitempty"`

	// Directories searched when no files are given
	SearchDirs []string `yaml:"searchDirs,omitempty"`

	// Generation cache
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// BuilderConfig names the runtime builder package
type BuilderConfig struct {
	// Import path added to generated files
	Import string `yaml:"import,omitempty"`

	// Identifier generated code refers to the package by
	Name string `yaml:"name,omitempty"`
}

// StringerConfig selects the function converting values to strings
type StringerConfig struct {
	// Function called on every value, e.g. "fmt.Sprint". "none" passes
	// values through unchanged.
	Func string `yaml:"func,omitempty"`

	// Import path providing Func
	Import string `yaml:"import,omitempty"`
}

// CacheConfig contains generation cache settings
type CacheConfig struct {
	// Whether the cache is enabled
	Enabled bool `yaml:"enabled"`

	// Cache directory, default $HOME/.cache/vex
	Dir string `yaml:"dir,omitempty"`

	// Entries kept before least recently used ones are evicted
	MaxEntries int `yaml:"maxEntries,omitempty"`
}

// Load loads configuration from vex.yaml in projectPath
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	// Return default config if no file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", configPath)
	}
	return Parse(data)
}

// Parse decodes a vex.yaml document and fills in defaults
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "parsing "+FileName)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	if config.Builder == nil {
		config.Builder = &BuilderConfig{}
	}
	if config.Builder.Import == "" {
		config.Builder.Import = "github.com/recera/vex/pkg/vex/builder"
	}
	if config.Builder.Name == "" {
		config.Builder.Name = filepath.Base(config.Builder.Import)
	}

	if config.Stringer == nil {
		config.Stringer = &StringerConfig{}
	}
	if config.Stringer.Func == "" {
		config.Stringer.Func = "fmt.Sprint"
		if config.Stringer.Import == "" {
			config.Stringer.Import = "fmt"
		}
	}

	if len(config.SearchDirs) == 0 {
		config.SearchDirs = []string{"."}
	}

	if config.Cache == nil {
		config.Cache = &CacheConfig{Enabled: true}
	}
	if config.Cache.MaxEntries == 0 {
		config.Cache.MaxEntries = 1024
	}
}

// Validate reports settings that cannot produce compilable code
func (c *Config) Validate() error {
	if c.Stringer.Func == "none" && c.Stringer.Import != "" {
		return errors.New("stringer.import is set but stringer.func is none")
	}
	if strings.Contains(c.Stringer.Func, ".") && c.Stringer.Import == "" {
		return errors.Errorf("stringer.func %s is package-qualified but stringer.import is not set", c.Stringer.Func)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.Errorf("cache.maxEntries must not be negative, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// StringerFunc returns the stringer for generated code, empty meaning none
func (c *Config) StringerFunc() string {
	if c.Stringer.Func == "none" {
		return ""
	}
	return c.Stringer.Func
}
