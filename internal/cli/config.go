package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var configShowPath bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Display current configuration settings and config file locations.

Examples:
  # Show current configuration
  irag config

  # Show config file paths
  irag config --path`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "show config file paths")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configShowPath {
		fmt.Println(ui.SectionTitle.Render("Configuration Paths"))
		fmt.Println()
		fmt.Printf("Global config: %s\n", config.GlobalConfigPath())
		fmt.Printf("Local config:  .iragrc.yaml (searched from cwd upward)\n")
		fmt.Printf("Active config: %s\n", config.ConfigFilePath())
		return nil
	}

	cfg := config.Get()

	fmt.Println(ui.SectionTitle.Render("Current Configuration"))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Backend:"))
	fmt.Printf("  URL: %s\n", cfg.Backend.URL)
	fmt.Printf("  Timeout: %ds\n", cfg.Backend.TimeoutSecs)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Defaults:"))
	fmt.Printf("  Model: %s\n", cfg.Defaults.Model)
	fmt.Printf("  Chunking Method: %s\n", cfg.Defaults.ChunkingMethod)
	fmt.Printf("  Chunk Size: %d\n", cfg.Defaults.ChunkSize)
	fmt.Printf("  Chunk Overlap: %d\n", cfg.Defaults.ChunkOverlap)
	fmt.Printf("  Top-K: %d\n", cfg.Defaults.TopK)
	fmt.Println()

	fmt.Println(ui.Bold.Render("Export:"))
	fmt.Printf("  Directory: %s\n", cfg.Export.Dir)

	return nil
}
