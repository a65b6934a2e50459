// Package config loads nonek settings from a TOML or YAML file, a .env file
// and NONEK_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"nonek/pkg/compiler"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NONEK_"

// DefaultPaths are tried in order when no config path is given.
var DefaultPaths = []string{"nonek.toml", "nonek.yaml", "nonek.yml"}

type Config struct {
	LogLevel   string           `toml:"log_level" yaml:"log_level"`
	Generator  GeneratorConfig  `toml:"generator" yaml:"generator"`
	Batch      BatchConfig      `toml:"batch" yaml:"batch"`
	Playground PlaygroundConfig `toml:"playground" yaml:"playground"`

	path string
}

// GeneratorConfig holds Python generator settings
type GeneratorConfig struct {
	Indent        string `toml:"indent" yaml:"indent"`
	Lenient       bool   `toml:"lenient" yaml:"lenient"`
	FoldConstants bool   `toml:"fold_constants" yaml:"fold_constants"`
}

// BatchConfig holds settings of the directory compiler
type BatchConfig struct {
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	Extension string `toml:"extension" yaml:"extension"`
	Workers   int    `toml:"workers" yaml:"workers"`
	Render    string `toml:"render" yaml:"render"`
}

// PlaygroundConfig holds the websocket playground settings
type PlaygroundConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Format represents the configuration file format
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// detectFormat determines the configuration format from file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, or the first existing DefaultPaths entry when path is
// empty, then applies environment overrides. A missing default file is not
// an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, p := range DefaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	c := &Config{}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := c.decode(content, detectFormat(path)); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		c.path = path
	}

	c.applyDefaults()
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses content in the given format without touching the
// environment.
func LoadString(content string, format Format) (*Config, error) {
	c := &Config{}
	if err := c.decode([]byte(content), format); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, c.Validate()
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. Variables already set win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(content []byte, format Format) error {
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(c); err != nil {
			return fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, c); err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Generator.Indent == "" {
		c.Generator.Indent = "\t"
	}
	if c.Batch.OutputDir == "" {
		c.Batch.OutputDir = "out"
	}
	if c.Batch.Extension == "" {
		c.Batch.Extension = ".txt"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
	if c.Playground.Addr == "" {
		c.Playground.Addr = "localhost:8080"
	}
}

// applyEnv overrides settings from NONEK_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":  &c.LogLevel,
		"INDENT":     &c.Generator.Indent,
		"OUTPUT_DIR": &c.Batch.OutputDir,
		"EXTENSION":  &c.Batch.Extension,
		"RENDER":     &c.Batch.Render,
		"ADDR":       &c.Playground.Addr,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"LENIENT":        &c.Generator.Lenient,
		"FOLD_CONSTANTS": &c.Generator.FoldConstants,
	}
	for key, dst := range bools {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		c.Batch.Workers = n
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Batch.Render != "" && strings.TrimSpace(c.Batch.Render) == "" {
		return fmt.Errorf("batch render command must not be blank, got %q", c.Batch.Render)
	}
	if !strings.HasPrefix(c.Batch.Extension, ".") {
		return fmt.Errorf("batch extension must start with a dot, got %q", c.Batch.Extension)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// CompilerOptions maps generator settings onto compiler.Options.
func (c *Config) CompilerOptions() compiler.Options {
	return compiler.Options{
		Indent:            c.Generator.Indent,
		LenientOperations: c.Generator.Lenient,
		FoldConstants:     c.Generator.FoldConstants,
	}
}

// FilePath is the file the config was read from, empty for defaults.
func (c *Config) FilePath() string { return c.path }
