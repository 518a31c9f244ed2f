package config

import (
	"os"
	"path/filepath"
)

// Default configuration values
const (
	// Backend defaults
	DefaultBackendURL  = "http://localhost:8000"
	DefaultTimeoutSecs = 60

	// Processing defaults, mirroring the backend's own form defaults
	DefaultModel          = "all-MiniLM-L6-v2"
	DefaultChunkingMethod = "fixed_size"
	DefaultChunkSize      = 500
	DefaultChunkOverlap   = 50

	// Query defaults
	DefaultTopK = 5
)

// DefaultConfigDir returns the default configuration directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/irag"
	}
	return filepath.Join(home, ".config", "irag")
}

// DefaultExportDir is where export archives land unless overridden.
func DefaultExportDir() string {
	return "."
}
