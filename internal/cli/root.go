// Package cli implements the command-line interface for irag.
package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var (
	// Version information set at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile    string
	debug      bool
	backendURL string
	assumeYes  bool
)

// SetVersionInfo sets the version information from build flags.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "irag",
	Short: "Client for the Interactive RAG backend",
	Long: `irag manages document collections on an Interactive RAG backend:
ingest PDF documents, run top-k similarity queries, edit or delete individual
retrieved chunks, and export or import whole vector stores as archives.

Examples:
  # Ingest a document into the default store
  irag ingest paper.pdf --chunk-size 500 --chunk-overlap 50

  # Query the default store
  irag query "photosynthesis" -k 5

  # Query a named vector store
  irag query "photosynthesis" --store 4f1c...

  # Browse and edit results interactively
  irag browse`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			ui.SetDebug(true)
			log.Debug("Debug logging enabled")
		}

		if err := config.Load(cfgFile); err != nil {
			log.Warn("Failed to load config", "error", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize UI styles and logger
	ui.InitLogger()

	// A .env next to the working directory may carry IRAG_* overrides.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/irag/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "assume yes for confirmation prompts")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend"))

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fixMappingsCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("irag %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// newClient builds the transport client from the effective configuration.
func newClient() *api.Client {
	cfg := config.Get()
	url := cfg.Backend.URL
	if backendURL != "" {
		url = backendURL
	}
	return api.New(url, time.Duration(cfg.Backend.TimeoutSecs)*time.Second)
}
