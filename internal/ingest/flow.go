// Package ingest implements the single-shot upload flows: document ingestion
// into the default store and archive import as a new named store. A flow is
// not reentrant: a second Run while one is in flight is rejected rather than
// queued, mirroring the disabled upload control in an interactive client.
package ingest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/registry"
)

// ErrInFlight is returned when an upload is already outstanding.
var ErrInFlight = errors.New("an upload is already in progress")

// Uploader is the subset of the transport client the flow drives.
type Uploader interface {
	Ingest(ctx context.Context, p api.IngestParams) (*api.IngestResponse, error)
	UploadStore(ctx context.Context, file io.Reader, filename, modelName string) (*api.UploadStoreResponse, error)
	ListStores(ctx context.Context) (map[string]api.VectorStore, error)
}

// Flow guards uploads against duplicate dispatch and refreshes the registry
// when an import creates a new store.
type Flow struct {
	uploader Uploader
	reg      *registry.Registry

	mu       sync.Mutex
	inFlight bool
}

// New creates a flow. reg may be nil when no registry needs refreshing
// (one-shot CLI ingestion into the default store).
func New(uploader Uploader, reg *registry.Registry) *Flow {
	return &Flow{uploader: uploader, reg: reg}
}

// InFlight reports whether an upload is outstanding.
func (f *Flow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return ErrInFlight
	}
	f.inFlight = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}

// IngestDocument uploads a document into the default store and reports the
// created chunks. The default store has no registry entry, so no refresh is
// triggered.
func (f *Flow) IngestDocument(ctx context.Context, p api.IngestParams) (*api.IngestResponse, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	defer f.end()

	log.Debug("Ingesting document",
		"file", p.Filename,
		"model", p.ModelName,
		"chunking", p.ChunkingMethod,
		"chunk_size", p.ChunkSize,
		"chunk_overlap", p.ChunkOverlap,
	)
	resp, err := f.uploader.Ingest(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Debug("Ingest complete", "chunks", len(resp.ChunkIDs))
	return resp, nil
}

// ImportStore uploads a previously exported archive as a new named store and
// refreshes the registry so the new id becomes visible.
func (f *Flow) ImportStore(ctx context.Context, file io.Reader, filename, modelName string) (*api.UploadStoreResponse, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	defer f.end()

	log.Debug("Importing store archive", "file", filename, "model", modelName)
	resp, err := f.uploader.UploadStore(ctx, file, filename, modelName)
	if err != nil {
		return nil, err
	}
	if f.reg != nil {
		stores, err := f.uploader.ListStores(ctx)
		if err != nil {
			// The import itself succeeded; stale registry is reported but
			// does not fail the flow.
			log.Warn("Store imported but registry refresh failed", "error", err)
		} else {
			f.reg.Replace(stores)
		}
	}
	log.Debug("Store imported", "id", resp.VectorStoreID)
	return resp, nil
}
