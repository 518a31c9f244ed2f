package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/config"
	"github.com/BevinV/Interactive-Rag/internal/ingest"
	"github.com/BevinV/Interactive-Rag/internal/ui"
)

var (
	ingestModel        string
	ingestChunking     string
	ingestChunkSize    int
	ingestChunkOverlap int
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Upload a document into the default store",
	Long: `Upload a PDF document to the backend, which chunks it, embeds the
chunks with the selected model and adds them to the default store.

Chunk size and overlap are passed to the backend as-is; it decides what it
accepts.

Examples:
  # Ingest with defaults (fixed_size, 500/50)
  irag ingest paper.pdf

  # Pick model and chunking explicitly
  irag ingest paper.pdf --model all-mpnet-base-v2 --chunking sentence_aware

  # Custom chunk geometry
  irag ingest paper.pdf --chunk-size 800 --chunk-overlap 100`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestModel, "model", "", "embedding model (defaults from config)")
	ingestCmd.Flags().StringVar(&ingestChunking, "chunking", "", "chunking method (defaults from config)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "chunk size in characters")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", -1, "chunk overlap in characters")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := config.Get()
	params := api.IngestParams{
		Filename:       filepath.Base(path),
		ModelName:      cfg.Defaults.Model,
		ChunkingMethod: cfg.Defaults.ChunkingMethod,
		ChunkSize:      cfg.Defaults.ChunkSize,
		ChunkOverlap:   cfg.Defaults.ChunkOverlap,
	}
	if ingestModel != "" {
		params.ModelName = ingestModel
	}
	if ingestChunking != "" {
		params.ChunkingMethod = ingestChunking
	}
	if ingestChunkSize > 0 {
		params.ChunkSize = ingestChunkSize
	}
	if ingestChunkOverlap >= 0 {
		params.ChunkOverlap = ingestChunkOverlap
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	bar := progressbar.DefaultBytes(info.Size(), "uploading")
	params.File = io.TeeReader(f, bar)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(ui.Header.Render("Ingesting " + params.Filename))
	fmt.Printf("Model: %s  Chunking: %s (size %d, overlap %d)\n\n",
		params.ModelName, params.ChunkingMethod, params.ChunkSize, params.ChunkOverlap)

	start := time.Now()
	flow := ingest.New(newClient(), nil)
	resp, err := flow.IngestDocument(ctx, params)
	fmt.Println()
	if err != nil {
		return describeQueryError(err)
	}

	log.Debug("Ingest finished", "chunks", len(resp.ChunkIDs), "duration", time.Since(start))
	fmt.Println(ui.Success.Render(fmt.Sprintf("Ingested %d chunks in %s.",
		len(resp.ChunkIDs), time.Since(start).Round(time.Millisecond))))
	return nil
}
