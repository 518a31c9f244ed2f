package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/tui"
)

var browseStoreID string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively query and edit the index",
	Long: `Browse opens a full-screen session against the backend: pick a vector
store, run similarity queries, walk the results and edit, delete or insert
chunks in place. Mutations re-run the last query so the view always reflects
the index.`,
	Example: `  irag browse
  irag browse --store 2f6c1a`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		timeout := time.Duration(cfg.Backend.TimeoutSecs) * time.Second
		model := tui.New(newClient(), browseStoreID, timeout)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("browse session: %w", err)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseStoreID, "store", "", "vector store id (omit for the default store)")
}
