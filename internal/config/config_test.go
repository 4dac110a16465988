package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	require.Equal(t, "ftp://ftp.imp.fu-berlin.de/pub/cmb-data/", cfg.Repository)
	require.Equal(t, "notebooks/data", cfg.Output)
	require.Equal(t, []string{"pentapeptide*", "alanine*", "hmm-doublewell-2d-100k.npz"}, cfg.Patterns)
	require.Equal(t, "Fetching data", cfg.Description)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate(), "default config must be valid")

	// Defaults must not share the package-level slice.
	cfg.Patterns[0] = "changed"
	require.Equal(t, "pentapeptide*", DefaultPatterns[0])
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
repository: https://mirror.example.org/cmb-data/
output: /data/md
patterns:
  - alanine*
timeout: 2m
quiet: true
no_checksum: true
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	require.Equal(t, "https://mirror.example.org/cmb-data/", cfg.Repository)
	require.Equal(t, "/data/md", cfg.Output)
	require.Equal(t, []string{"alanine*"}, cfg.Patterns)
	require.Equal(t, 2*time.Minute, cfg.Timeout)
	require.True(t, cfg.Quiet)
	require.True(t, cfg.NoChecksum)
	require.Equal(t, "Fetching data", cfg.Description, "default description kept")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MDFETCH_REPOSITORY", "ftp://ftp.example.org/pub/")
	t.Setenv("MDFETCH_OUTPUT", "out")
	t.Setenv("MDFETCH_PATTERNS", "alanine*, ,*.npz")
	t.Setenv("MDFETCH_USERNAME", "alice")
	t.Setenv("MDFETCH_PASSWORD", "secret")
	t.Setenv("MDFETCH_TIMEOUT", "500ms")
	t.Setenv("MDFETCH_QUIET", "1")
	t.Setenv("MDFETCH_NO_CHECKSUM", "true")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	require.Equal(t, "ftp://ftp.example.org/pub/", cfg.Repository)
	require.Equal(t, "out", cfg.Output)
	require.Equal(t, []string{"alanine*", "*.npz"}, cfg.Patterns)
	require.Equal(t, "alice", cfg.Username)
	require.Equal(t, "secret", cfg.Password)
	require.Equal(t, 500*time.Millisecond, cfg.Timeout)
	require.True(t, cfg.Quiet)
	require.True(t, cfg.NoChecksum)
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("MDFETCH_TIMEOUT", "soon")

	cfg := Default()
	require.Error(t, cfg.LoadFromEnv())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MDFETCH_OUTPUT=from-dotenv\n"), 0644))

	// Register cleanup for the variable godotenv is about to set.
	t.Setenv("MDFETCH_OUTPUT", "")
	os.Unsetenv("MDFETCH_OUTPUT")

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-dotenv", os.Getenv("MDFETCH_OUTPUT"))
}

func TestLoadDotEnvMissing(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "missing .env must not be an error")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Repository: "ftp://ftp.imp.fu-berlin.de/pub/cmb-data/",
			Output:     "notebooks/data",
			Patterns:   []string{"alanine*"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"http mirror", func(c *Config) { c.Repository = "https://example.org/data/" }, false},
		{"missing repository", func(c *Config) { c.Repository = "" }, true},
		{"unsupported scheme", func(c *Config) { c.Repository = "sftp://example.org/data" }, true},
		{"missing host", func(c *Config) { c.Repository = "ftp:///data" }, true},
		{"missing output", func(c *Config) { c.Output = "" }, true},
		{"no patterns", func(c *Config) { c.Patterns = nil }, true},
		{"empty pattern", func(c *Config) { c.Patterns = []string{"alanine*", ""} }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()

	merged := base.Merge(Config{
		Output:   "elsewhere",
		Patterns: []string{"alanine*"},
		Quiet:    true,
	})

	// Zero fields keep the base values.
	require.Equal(t, DefaultRepository, merged.Repository)
	require.Equal(t, 30*time.Second, merged.Timeout)

	require.Equal(t, "elsewhere", merged.Output)
	require.Equal(t, []string{"alanine*"}, merged.Patterns)
	require.True(t, merged.Quiet)
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
}

func TestLoadYAMLInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644))

	_, err := LoadFromFile(configPath)
	require.Error(t, err)
}
