package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/ui"
)

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show default index status and health",
	Long: `Display the default store's index statistics and the backend's
consistency report between index, mappings and metadata.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client := newClient()

	stats, err := client.IndexStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Println(ui.Header.Render("Index Status"))
	fmt.Println()
	fmt.Printf("  %s %d vectors\n", ui.Dim.Render("Index:"), stats.IndexSize)
	fmt.Printf("  %s %d\n", ui.Dim.Render("Mappings:"), stats.MappingsCount)
	if stats.Model != "" {
		fmt.Printf("  %s %s (%d dimensions)\n", ui.Dim.Render("Model:"), stats.Model, stats.Dimension)
	}

	health, err := client.HealthCheck(ctx)
	if err != nil {
		// Status alone is still useful when the health endpoint fails.
		log.Warn("Health check failed", "error", err)
		return nil
	}

	fmt.Println()
	if health.IsConsistent {
		fmt.Printf("  %s %s\n", ui.Dim.Render("Health:"), ui.Success.Render(health.Status))
	} else {
		fmt.Printf("  %s %s\n", ui.Dim.Render("Health:"), ui.Warning.Render(health.Status))
		fmt.Printf("  %s index=%d mappings=%d metadata=%d\n",
			ui.Dim.Render("Counts:"), health.IndexSize, health.MappingsCount, health.MetadataCount)
		fmt.Println()
		fmt.Println(ui.Warning.Render("Index and metadata disagree. 'irag fix-mappings' can rebuild the mappings."))
	}
	return nil
}
