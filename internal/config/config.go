package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults fetched when nothing else is configured.
const (
	DefaultRepository  = "ftp://ftp.imp.fu-berlin.de/pub/cmb-data/"
	DefaultOutput      = "notebooks/data"
	DefaultDescription = "Fetching data"
)

// DefaultPatterns are the datasets fetched when no patterns are configured.
var DefaultPatterns = []string{
	"pentapeptide*",
	"alanine*",
	"hmm-doublewell-2d-100k.npz",
}

// Config defines configuration for the mdfetch CLI.
type Config struct {
	Repository  string        `yaml:"repository"`
	Output      string        `yaml:"output"`
	Patterns    []string      `yaml:"patterns"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Timeout     time.Duration `yaml:"timeout"`
	Description string        `yaml:"description"`
	Quiet       bool          `yaml:"quiet"`
	NoChecksum  bool          `yaml:"no_checksum"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	patterns := make([]string, len(DefaultPatterns))
	copy(patterns, DefaultPatterns)

	return Config{
		Repository:  DefaultRepository,
		Output:      DefaultOutput,
		Patterns:    patterns,
		Timeout:     30 * time.Second,
		Description: DefaultDescription,
	}
}

// yamlConfig is used for YAML unmarshaling with a string timeout.
type yamlConfig struct {
	Repository  string   `yaml:"repository"`
	Output      string   `yaml:"output"`
	Patterns    []string `yaml:"patterns"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Timeout     string   `yaml:"timeout"`
	Description string   `yaml:"description"`
	Quiet       bool     `yaml:"quiet"`
	NoChecksum  bool     `yaml:"no_checksum"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Repository != "" {
		cfg.Repository = yc.Repository
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if len(yc.Patterns) > 0 {
		cfg.Patterns = yc.Patterns
	}
	if yc.Username != "" {
		cfg.Username = yc.Username
	}
	if yc.Password != "" {
		cfg.Password = yc.Password
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Description != "" {
		cfg.Description = yc.Description
	}
	cfg.Quiet = yc.Quiet
	cfg.NoChecksum = yc.NoChecksum

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the MDFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MDFETCH_REPOSITORY"); v != "" {
		c.Repository = v
	}
	if v := os.Getenv("MDFETCH_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("MDFETCH_PATTERNS"); v != "" {
		c.Patterns = splitList(v)
	}
	if v := os.Getenv("MDFETCH_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("MDFETCH_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("MDFETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MDFETCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("MDFETCH_DESCRIPTION"); v != "" {
		c.Description = v
	}
	if v := os.Getenv("MDFETCH_QUIET"); v != "" {
		c.Quiet = v == "true" || v == "1"
	}
	if v := os.Getenv("MDFETCH_NO_CHECKSUM"); v != "" {
		c.NoChecksum = v == "true" || v == "1"
	}

	return nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Repository == "" {
		return errors.New("config: repository is required")
	}
	u, err := url.Parse(c.Repository)
	if err != nil {
		return fmt.Errorf("config: invalid repository: %w", err)
	}
	switch u.Scheme {
	case "ftp", "http", "https":
	default:
		return fmt.Errorf("config: repository scheme must be ftp, http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("config: repository host is required")
	}
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if len(c.Patterns) == 0 {
		return errors.New("config: at least one pattern is required")
	}
	for _, p := range c.Patterns {
		if p == "" {
			return errors.New("config: empty pattern")
		}
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Repository != "" {
		c.Repository = override.Repository
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if len(override.Patterns) > 0 {
		c.Patterns = override.Patterns
	}
	if override.Username != "" {
		c.Username = override.Username
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Description != "" {
		c.Description = override.Description
	}
	if override.Quiet {
		c.Quiet = override.Quiet
	}
	if override.NoChecksum {
		c.NoChecksum = override.NoChecksum
	}
	return c
}
