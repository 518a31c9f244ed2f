package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/export"
	"github.com/BevinV/Interactive-Rag/internal/ingest"
	"github.com/BevinV/Interactive-Rag/internal/mutation"
	"github.com/BevinV/Interactive-Rag/internal/registry"
	"github.com/BevinV/Interactive-Rag/internal/session"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var (
	storeImportModel   string
	storeExportDir     string
	addChunkText       string
	addChunkDocument   string
	addChunkPage       int
	addChunkStartIndex int
)

// storeCmd groups the named vector store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage named vector stores",
	Long: `List, import, export and delete named vector stores, and insert
manually authored chunks into them.

Examples:
  irag store list
  irag store import backup.zip --model all-MiniLM-L6-v2
  irag store export 4f1c9be2-...
  irag store delete 4f1c9be2-...
  irag store add 4f1c9be2-... --text "Annotation text" --document notes`,
}

func init() {
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeAddCmd)

	storeImportCmd.Flags().StringVar(&storeImportModel, "model", "", "embedding model the archive was built with")
	storeExportCmd.Flags().StringVar(&storeExportDir, "out", "", "output directory (defaults from config)")
	storeAddCmd.Flags().StringVar(&addChunkText, "text", "", "chunk text (required)")
	storeAddCmd.Flags().StringVar(&addChunkDocument, "document", "custom", "document name to attribute the chunk to")
	storeAddCmd.Flags().IntVar(&addChunkPage, "page", 1, "page number to attribute the chunk to")
	storeAddCmd.Flags().IntVar(&addChunkStartIndex, "start-index", 0, "character offset within the document")
	_ = storeAddCmd.MarkFlagRequired("text")
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List named vector stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		reg := registry.New()
		stores, err := newClient().ListStores(ctx)
		if err != nil {
			return err
		}
		reg.Replace(stores)

		if reg.Len() == 0 {
			fmt.Println("No vector stores available.")
			fmt.Println("\nRun 'irag store import <archive.zip>' to create one.")
			return nil
		}

		fmt.Println(ui.Header.Render("Vector Stores"))
		fmt.Println()
		for _, id := range reg.IDs() {
			s, _ := reg.Get(id)
			fmt.Printf("%s\n", ui.Highlight.Render(id))
			fmt.Printf("  Model:    %s\n", s.ModelName)
			created := s.CreatedAt
			if t := s.CreatedTime(); !t.IsZero() {
				created = t.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("  Created:  %s\n", created)
			fmt.Println()
		}
		fmt.Println(ui.Dim.Render(fmt.Sprintf("Total: %d stores", reg.Len())))
		return nil
	},
}

var storeImportCmd = &cobra.Command{
	Use:   "import <archive.zip>",
	Short: "Import an exported archive as a new vector store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", path, err)
		}
		defer f.Close()

		model := storeImportModel
		if model == "" {
			model = config.Get().Defaults.Model
		}

		ctx, cancel := signalContext()
		defer cancel()

		bar := progressbar.DefaultBytes(info.Size(), "uploading")
		flow := ingest.New(newClient(), nil)
		resp, err := flow.ImportStore(ctx, io.TeeReader(f, bar), filepath.Base(path), model)
		fmt.Println()
		if err != nil {
			return err
		}
		fmt.Println(ui.Success.Render(resp.Message))
		fmt.Printf("Store id: %s\n", ui.Highlight.Render(resp.VectorStoreID))
		return nil
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a vector store as an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := storeExportDir
		if dir == "" {
			dir = config.Get().Export.Dir
		}
		ctx, cancel := signalContext()
		defer cancel()
		return runExportFlow(ctx, args[0], dir)
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a vector store",
	Long:  `Delete a named vector store and all its chunks. Irrevocable.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client := newClient()
		reg := registry.New()
		coord := mutation.New(client, confirmer(), session.New(args[0]), reg)
		if err := coord.DeleteStore(ctx, args[0]); err != nil {
			if errors.Is(err, mutation.ErrCancelled) {
				fmt.Println("Cancelled.")
				return nil
			}
			return err
		}
		fmt.Println(ui.Success.Render(fmt.Sprintf("Vector store %s deleted.", args[0])))
		return nil
	},
}

var storeAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Insert a manually authored chunk into a vector store",
	Long: `Insert a chunk without going through document ingestion, e.g. a
manual annotation. The backend embeds the text with the store's model and
assigns the chunk id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		coord := mutation.New(newClient(), confirmer(), session.New(args[0]), registry.New())
		chunkID, err := coord.AddChunk(ctx, api.NewChunk{
			Text:       addChunkText,
			Document:   addChunkDocument,
			Page:       addChunkPage,
			StartIndex: addChunkStartIndex,
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success.Render("Chunk added."))
		fmt.Printf("Chunk id: %s\n", ui.Highlight.Render(chunkID))
		return nil
	},
}

// runExportFlow is shared by 'store export' and the default-store 'export'.
func runExportFlow(ctx context.Context, storeID, dir string) error {
	flow := export.New(newClient())
	res, err := flow.Run(ctx, storeID, dir)
	if err != nil {
		return err
	}
	fmt.Println(ui.Success.Render("Export completed."))
	fmt.Printf("  File:   %s\n", res.Path)
	fmt.Printf("  Size:   %d bytes\n", res.Size)
	fmt.Printf("  Digest: %016x\n", res.Digest)
	return nil
}
