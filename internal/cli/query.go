package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/session"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var (
	queryStore string
	queryTopK  int
	queryText  bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a top-k similarity query",
	Long: `Query the default store, or a named vector store with --store.

Results are ranked by descending relevance score and carry the source
document, page and chunk text.

Examples:
  # Query the default store for the 5 best chunks
  irag query "how does photosynthesis work"

  # Ask for more results
  irag query "chlorophyll absorption" -k 10

  # Query a named vector store
  irag query "photosynthesis" --store 4f1c9be2-...`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryStore, "store", "", "vector store id (default store if omitted)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (3, 5, 10, 15 or 20)")
	queryCmd.Flags().BoolVar(&queryText, "full-text", false, "print full chunk text instead of a preview")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := args[0]
	k := queryTopK
	if k == 0 {
		k = config.Get().Defaults.TopK
	}
	if !session.ValidK(k) {
		return fmt.Errorf("top-k must be one of %v, got %d", session.TopKPresets, k)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := newClient()
	sess := session.New(queryStore)

	log.Debug("Submitting query", "store", queryStore, "k", k)
	token := sess.Submit(text, k)
	results, err := client.Query(ctx, queryStore, text, k)
	if err != nil {
		sess.Reject(token, err)
		return describeQueryError(err)
	}
	sess.Resolve(token, results)

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	displayChunks(results, queryText)
	return nil
}

// describeQueryError keeps the server's validation detail verbatim and adds
// an actionable hint when the failure is an embedding-model mismatch.
func describeQueryError(err error) error {
	if api.IsModelMismatch(err) {
		return fmt.Errorf("%s\n%s", err.Error(),
			ui.Warning.Render("The store was indexed with a different embedding model. Run 'irag reset' (default store) or pick the matching model."))
	}
	return err
}

// displayChunks prints a ranked result listing.
func displayChunks(results []api.Chunk, fullText bool) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%s %s %s\n",
			ui.Highlight.Render(fmt.Sprintf("[%d]", i+1)),
			ui.FormatProvenance(r.Document, r.Page),
			ui.FormatScore(r.ScoreValue()),
		)
		fmt.Printf("    %s\n", ui.ChunkID.Render("id: "+r.ChunkID))
		if r.Model != "" {
			fmt.Printf("    %s\n", ui.Dim.Render(fmt.Sprintf("model: %s  chunking: %s", r.Model, r.ChunkingMethod)))
		}
		text := r.Text
		if !fullText {
			text = preview(text, 240)
		}
		fmt.Printf("    %s\n\n", text)
	}
}

// preview truncates text for the listing; full text is available with
// --full-text or in browse mode.
func preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted")
		cancel()
	}()
	return ctx, cancel
}
