package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/mutation"
	"github.com/BevinV/Interactive-Rag/internal/registry"
	"github.com/BevinV/Interactive-Rag/internal/session"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

// resetCmd represents the reset command.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the default store's index",
	Long: `Delete every document in the default store so a different embedding
model can be used. Named vector stores are not affected. Irrevocable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		coord := mutation.New(newClient(), confirmer(), session.New(""), registry.New())
		msg, err := coord.ResetIndex(ctx)
		if err != nil {
			if errors.Is(err, mutation.ErrCancelled) {
				fmt.Println("Cancelled.")
				return nil
			}
			return err
		}
		fmt.Println(ui.Success.Render(msg))
		return nil
	},
}

// fixMappingsCmd rebuilds the default index's id mappings from metadata.
var fixMappingsCmd = &cobra.Command{
	Use:   "fix-mappings",
	Short: "Rebuild index id mappings from metadata",
	Long: `Ask the backend to rebuild the mapping between index positions and
chunk ids from the metadata store. Use when 'irag status' reports an
inconsistent index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		coord := mutation.New(newClient(), confirmer(), session.New(""), registry.New())
		resp, err := coord.FixMappings(ctx)
		if err != nil {
			if errors.Is(err, mutation.ErrCancelled) {
				fmt.Println("Cancelled.")
				return nil
			}
			return err
		}
		fmt.Println(ui.Success.Render(resp.Message))
		fmt.Printf("  Before: %d vectors, %d mappings\n", resp.StatsBefore.IndexSize, resp.StatsBefore.MappingsCount)
		fmt.Printf("  After:  %d vectors, %d mappings\n", resp.StatsAfter.IndexSize, resp.StatsAfter.MappingsCount)
		return nil
	},
}
