package cli

import (
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/config"
)

var exportDir string

// exportCmd represents the export command for the default store.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the default store as an archive",
	Long: `Download a snapshot of the default store's index and chunk metadata
as rag_export.zip. The archive can be re-imported with 'irag store import' or
validated offline with 'irag verify'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := exportDir
		if dir == "" {
			dir = config.Get().Export.Dir
		}
		ctx, cancel := signalContext()
		defer cancel()
		return runExportFlow(ctx, "", dir)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (defaults from config)")
}
