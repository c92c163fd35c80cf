// Package config loads the optional bestbefore project file.
//
// The file is looked up from the working directory upwards. bestbefore.toml
// wins over .bestbefore.yaml and bestbefore.yaml when several exist in the
// same directory. Command-line flags always override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bestbefore/internal/calendar"
)

// FileNames lists the recognised config file names in lookup order.
var FileNames = []string{"bestbefore.toml", ".bestbefore.yaml", "bestbefore.yaml"}

// Formats lists the report formats accepted by [check].format.
var Formats = []string{"pretty", "short", "json", "msgpack", "sarif"}

// Config models bestbefore.toml.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Root is the directory containing Path.
	Root string `toml:"-" yaml:"-"`

	Check CheckConfig `toml:"check" yaml:"check"`
	Date  DateConfig  `toml:"date" yaml:"date"`
}

// CheckConfig holds defaults for the check command. Nil pointers mean unset.
type CheckConfig struct {
	Exclude          []string `toml:"exclude" yaml:"exclude"`
	Tests            *bool    `toml:"tests" yaml:"tests"`
	Jobs             *int     `toml:"jobs" yaml:"jobs"`
	WarningsAsErrors *bool    `toml:"warnings_as_errors" yaml:"warnings_as_errors"`
	NoWarnings       *bool    `toml:"no_warnings" yaml:"no_warnings"`
	Format           string   `toml:"format" yaml:"format"`
	MaxDiagnostics   *int     `toml:"max_diagnostics" yaml:"max_diagnostics"`
}

// DateConfig controls how the effective date is obtained.
type DateConfig struct {
	// Env names the override variable, BESTBEFORE_DATE when empty.
	Env string `toml:"env" yaml:"env"`
	// Now pins the date for every run using this config.
	Now string `toml:"now" yaml:"now"`
}

// Find walks up from startDir and returns the first config file found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover finds and loads the config for startDir. It returns an empty
// config and false when there is none.
func Discover(startDir string) (*Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return &Config{}, false, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load reads the config file at path. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = FromTOML(data)
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		return nil, fmt.Errorf("%s: unsupported config format (want .toml or .yaml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// FromTOML parses and validates TOML config. Unknown keys are rejected.
func FromTOML(data []byte) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromYAML parses and validates YAML config. Unknown keys are rejected.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and the pinned date.
func (c *Config) Validate() error {
	if c.Check.Jobs != nil && *c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", *c.Check.Jobs)
	}
	if c.Check.MaxDiagnostics != nil && *c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must be >= 0, got %d", *c.Check.MaxDiagnostics)
	}
	if c.Check.Format != "" && !slices.Contains(Formats, c.Check.Format) {
		return fmt.Errorf("[check].format must be one of %s, got %q", strings.Join(Formats, "|"), c.Check.Format)
	}
	if isSet(c.Check.WarningsAsErrors) && isSet(c.Check.NoWarnings) {
		return fmt.Errorf("[check].warnings_as_errors and [check].no_warnings are mutually exclusive")
	}
	for _, pattern := range c.Check.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("[check].exclude: bad pattern %q: %w", pattern, err)
		}
	}
	if env := c.Date.Env; env != "" && strings.ContainsAny(env, "= \t") {
		return fmt.Errorf("[date].env: invalid variable name %q", env)
	}
	if c.Date.Now != "" {
		if _, err := calendar.Parse(c.Date.Now); err != nil {
			return fmt.Errorf("[date].now: %w", err)
		}
	}
	return nil
}

func isSet(b *bool) bool { return b != nil && *b }
