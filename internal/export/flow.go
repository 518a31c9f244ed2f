// Package export implements snapshot export: fetch a store's archive as raw
// bytes and deliver it as a named file. The archive is opaque; the only
// client-side checks are a non-empty body and a content digest for the logs.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
)

// ErrEmptyArchive is returned when the backend hands back zero bytes; an
// empty snapshot is never valid.
var ErrEmptyArchive = errors.New("export returned an empty archive")

// Exporter is the subset of the transport client the flow drives.
type Exporter interface {
	Export(ctx context.Context, storeID string) ([]byte, error)
}

// Result describes a completed export.
type Result struct {
	Path   string
	Size   int64
	Digest uint64
}

// Flow downloads archives and writes them to disk.
type Flow struct {
	exporter Exporter
}

// New creates an export flow.
func New(exporter Exporter) *Flow {
	return &Flow{exporter: exporter}
}

// Filename returns the delivery name for a store's archive:
// vector_store_<id>.zip for named stores, rag_export.zip for the default.
func Filename(storeID string) string {
	if storeID == "" {
		return "rag_export.zip"
	}
	return fmt.Sprintf("vector_store_%s.zip", storeID)
}

// Run exports storeID ("" = default store) into destDir and returns the
// written path, size and xxhash digest. No retry on failure; the caller
// reports the error and the flow is idle again.
func (f *Flow) Run(ctx context.Context, storeID, destDir string) (*Result, error) {
	data, err := f.exporter.Export(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyArchive
	}

	path := filepath.Join(destDir, Filename(storeID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	digest := xxhash.Sum64(data)
	log.Debug("Export written", "path", path, "bytes", len(data), "digest", fmt.Sprintf("%016x", digest))
	return &Result{Path: path, Size: int64(len(data)), Digest: digest}, nil
}
