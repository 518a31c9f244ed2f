package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/session"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var verifyTopK int

// verifyCmd represents the verify command (offline export validation).
var verifyCmd = &cobra.Command{
	Use:   "verify <archive.zip> <query>",
	Short: "Validate an exported archive with a test query",
	Long: `Upload an export archive to the backend's scratch index and run a
query against it, without touching any live store. Use this to check that an
archive round-trips before relying on it as a backup.

Examples:
  irag verify rag_export.zip "photosynthesis"
  irag verify vector_store_4f1c.zip "chlorophyll" -k 3`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().IntVarP(&verifyTopK, "top-k", "k", 0, "number of results (3, 5, 10, 15 or 20)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	path, query := args[0], args[1]
	k := verifyTopK
	if k == 0 {
		k = config.Get().Defaults.TopK
	}
	if !session.ValidK(k) {
		return fmt.Errorf("top-k must be one of %v, got %d", session.TopKPresets, k)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	ctx, cancel := signalContext()
	defer cancel()

	results, err := newClient().TestExport(ctx, f, filepath.Base(path), query, k)
	if err != nil {
		return describeQueryError(err)
	}

	if len(results) == 0 {
		fmt.Println(ui.Warning.Render("Archive loaded but the test query returned no results."))
		return nil
	}
	fmt.Println(ui.Success.Render("Archive is queryable."))
	fmt.Println()
	displayChunks(results, false)
	return nil
}
