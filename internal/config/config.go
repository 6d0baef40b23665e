package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsonshaper
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Parser      ParserConfig      `yaml:"parser"`
	Restructure RestructureConfig `yaml:"restructure"`
	Schema      SchemaConfig      `yaml:"schema"`
	Dev         DevConfig         `yaml:"dev"`
}

// OutputConfig controls serialization of results
type OutputConfig struct {
	Indent int    `yaml:"indent"`
	File   string `yaml:"file"`
}

// ParserConfig controls JSON decoding
type ParserConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// RestructureConfig controls the schema-directed rebuild
type RestructureConfig struct {
	MaxDepth int `yaml:"max_depth"`
	Workers  int `yaml:"workers"`
}

// SchemaConfig controls schema loading and auto-population
type SchemaConfig struct {
	// KeyCase renames auto-populated keys: "", "snake", "camel",
	// "lower_camel", "kebab" or "screaming_snake".
	KeyCase     string            `yaml:"key_case"`
	KeyMappings map[string]string `yaml:"key_mappings"`
	// DefaultSchema is used when no schema file is given on the command line.
	DefaultSchema string `yaml:"default_schema"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

var keyCases = map[string]struct{}{
	"":                {},
	"snake":           {},
	"camel":           {},
	"lower_camel":     {},
	"kebab":           {},
	"screaming_snake": {},
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Indent: 2,
		},
		Parser: ParserConfig{
			MaxDepth: 10000,
		},
		Restructure: RestructureConfig{
			MaxDepth: 512,
			Workers:  0,
		},
		Schema: SchemaConfig{
			KeyMappings: make(map[string]string),
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A relative default schema is relative to the config file, which may
	// have been found in a parent directory.
	if p := cfg.Schema.DefaultSchema; p != "" && !filepath.IsAbs(p) {
		cfg.Schema.DefaultSchema = filepath.Join(filepath.Dir(path), p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges that YAML decoding cannot.
func (c *Config) Validate() error {
	if c.Output.Indent < 0 || c.Output.Indent > 16 {
		return fmt.Errorf("output.indent must be between 0 and 16, got %d", c.Output.Indent)
	}
	if c.Parser.MaxDepth < 1 {
		return fmt.Errorf("parser.max_depth must be positive, got %d", c.Parser.MaxDepth)
	}
	if c.Restructure.MaxDepth < 1 {
		return fmt.Errorf("restructure.max_depth must be positive, got %d", c.Restructure.MaxDepth)
	}
	if c.Restructure.Workers < 0 {
		return fmt.Errorf("restructure.workers must not be negative, got %d", c.Restructure.Workers)
	}
	if _, ok := keyCases[strings.ToLower(c.Schema.KeyCase)]; !ok {
		return fmt.Errorf("unknown schema.key_case %q", c.Schema.KeyCase)
	}
	return nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonshaper.yml", ".jsonshaper.yaml", "jsonshaper.yml", "jsonshaper.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// CLIOverrides carries flag values that take precedence over the file.
// Zero values mean "not set"; Indent is a pointer because zero is a valid width.
type CLIOverrides struct {
	Output  string
	Indent  *int
	Workers int
	Debug   bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Output != "" {
		cfg.Output.File = cli.Output
	}
	if cli.Indent != nil {
		cfg.Output.Indent = *cli.Indent
	}
	if cli.Workers > 0 {
		cfg.Restructure.Workers = cli.Workers
	}
	// Debug can only be switched on from the command line.
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
