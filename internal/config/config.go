// Package config loads cmakepick settings. Every default reproduces
// the stock selection run, so a bare `cmakepick select` needs no
// configuration at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wysaid/cmakepick/internal/sampler"
	"github.com/wysaid/cmakepick/internal/scanner"
)

// Config holds all configuration settings.
type Config struct {
	// Source repository to sample from
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Selection thresholds and targets
	Selection SelectionConfig `mapstructure:"selection" yaml:"selection"`

	// Output locations
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Run store location
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

type SourceConfig struct {
	RepoURL   string   `mapstructure:"repo_url" yaml:"repo_url"`
	WorkDir   string   `mapstructure:"work_dir" yaml:"work_dir"`
	CloneName string   `mapstructure:"clone_name" yaml:"clone_name"`
	SparseDir string   `mapstructure:"sparse_dir" yaml:"sparse_dir"`
	Patterns  []string `mapstructure:"patterns" yaml:"patterns"`
}

type SelectionConfig struct {
	Buckets []sampler.Bucket `mapstructure:"buckets" yaml:"buckets"`
	Cap     int              `mapstructure:"cap" yaml:"cap"`
}

type OutputConfig struct {
	FixtureDir string `mapstructure:"fixture_dir" yaml:"fixture_dir"`
}

type StorageConfig struct {
	LocalPath string `mapstructure:"local_path" yaml:"local_path"`
}

// CloneDir returns the full clone destination path.
func (c *Config) CloneDir() string {
	return filepath.Join(c.Source.WorkDir, c.Source.CloneName)
}

// ScanRoot returns the directory the scanner walks.
func (c *Config) ScanRoot() string {
	return filepath.Join(c.CloneDir(), c.Source.SparseDir)
}

// Default returns the stock configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Source: SourceConfig{
			RepoURL:   "https://github.com/Kitware/CMake.git",
			WorkDir:   filepath.Join(os.TempDir(), "cmake-tests"),
			CloneName: "CMake",
			SparseDir: "Tests",
			Patterns:  scanner.DefaultPatterns,
		},
		Selection: SelectionConfig{
			Buckets: sampler.DefaultBuckets(),
			Cap:     sampler.DefaultCap,
		},
		Output: OutputConfig{
			FixtureDir: filepath.Join("test", "datasets", "cmake-official"),
		},
		Storage: StorageConfig{
			LocalPath: filepath.Join(homeDir, ".cmakepick", "runs.db"),
		},
	}
}

// Load loads configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("source", cfg.Source)
	v.SetDefault("selection", cfg.Selection)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("storage", cfg.Storage)

	v.SetEnvPrefix("CMAKEPICK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".cmakepick")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".cmakepick"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Source.RepoURL == "" {
		return fmt.Errorf("source.repo_url must not be empty")
	}
	if c.Selection.Cap <= 0 {
		return fmt.Errorf("selection.cap must be positive, got %d", c.Selection.Cap)
	}
	if len(c.Selection.Buckets) == 0 {
		return fmt.Errorf("selection.buckets must not be empty")
	}
	for _, b := range c.Selection.Buckets {
		if b.Name == "" {
			return fmt.Errorf("every selection bucket needs a name")
		}
		if b.Target <= 0 {
			return fmt.Errorf("bucket %q: target must be positive, got %d", b.Name, b.Target)
		}
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
}
