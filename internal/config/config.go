// Package config handles configuration loading and validation for irag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config represents the complete irag configuration.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Export   ExportConfig   `mapstructure:"export"`
}

// BackendConfig locates the retrieval backend.
type BackendConfig struct {
	URL         string `mapstructure:"url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// DefaultsConfig holds the processing and query parameters used when flags
// don't override them. No client-side range validation is applied to chunk
// size or overlap; the backend decides what it accepts.
type DefaultsConfig struct {
	Model          string `mapstructure:"model"`
	ChunkingMethod string `mapstructure:"chunking_method"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	TopK           int    `mapstructure:"top_k"`
}

// ExportConfig configures archive delivery.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Global configuration instance
var cfg *Config

// Get returns the current configuration.
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         DefaultBackendURL,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		Defaults: DefaultsConfig{
			Model:          DefaultModel,
			ChunkingMethod: DefaultChunkingMethod,
			ChunkSize:      DefaultChunkSize,
			ChunkOverlap:   DefaultChunkOverlap,
			TopK:           DefaultTopK,
		},
		Export: ExportConfig{
			Dir: DefaultExportDir(),
		},
	}
}

// Load reads configuration from file and environment variables.
func Load(configFile string) error {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(DefaultConfigDir())
		viper.AddConfigPath(".")

		// Also check for .iragrc.yaml in current directory and parents
		if rcPath := findRCFile(); rcPath != "" {
			viper.SetConfigFile(rcPath)
		}
	}

	viper.SetEnvPrefix("IRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debug("Loaded config from", "file", viper.ConfigFileUsed())
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	return nil
}

// setDefaults sets default values in viper.
func setDefaults() {
	viper.SetDefault("backend.url", DefaultBackendURL)
	viper.SetDefault("backend.timeout_secs", DefaultTimeoutSecs)

	viper.SetDefault("defaults.model", DefaultModel)
	viper.SetDefault("defaults.chunking_method", DefaultChunkingMethod)
	viper.SetDefault("defaults.chunk_size", DefaultChunkSize)
	viper.SetDefault("defaults.chunk_overlap", DefaultChunkOverlap)
	viper.SetDefault("defaults.top_k", DefaultTopK)

	viper.SetDefault("export.dir", DefaultExportDir())
}

// findRCFile searches for .iragrc.yaml starting from current directory.
func findRCFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		rcPath := filepath.Join(dir, ".iragrc.yaml")
		if _, err := os.Stat(rcPath); err == nil {
			return rcPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// ConfigFilePath returns the path of the loaded config file, or empty string if none.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
