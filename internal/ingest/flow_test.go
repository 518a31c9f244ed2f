package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/registry"
)

type fakeUploader struct {
	mu       sync.Mutex
	calls    []string
	started  chan struct{} // closed when Ingest reaches the transport
	block    chan struct{} // when set, Ingest blocks until closed
	stores   map[string]api.VectorStore
	listErr  error
	ingestFn func() (*api.IngestResponse, error)
}

func (f *fakeUploader) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeUploader) Ingest(ctx context.Context, p api.IngestParams) (*api.IngestResponse, error) {
	f.record("ingest:" + p.Filename)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.ingestFn != nil {
		return f.ingestFn()
	}
	return &api.IngestResponse{Message: "ok", ChunkIDs: []string{"a", "b"}}, nil
}

func (f *fakeUploader) UploadStore(ctx context.Context, file io.Reader, filename, modelName string) (*api.UploadStoreResponse, error) {
	f.record("upload:" + filename)
	return &api.UploadStoreResponse{Message: "imported", VectorStoreID: "new-store"}, nil
}

func (f *fakeUploader) ListStores(ctx context.Context) (map[string]api.VectorStore, error) {
	f.record("list")
	return f.stores, f.listErr
}

func TestIngestDocument(t *testing.T) {
	t.Run("returns the created chunk ids", func(t *testing.T) {
		up := &fakeUploader{}
		flow := New(up, nil)

		resp, err := flow.IngestDocument(context.Background(), api.IngestParams{
			File: strings.NewReader("pdf"), Filename: "doc.pdf",
		})
		require.NoError(t, err)
		assert.Len(t, resp.ChunkIDs, 2)
		assert.False(t, flow.InFlight())
	})

	t.Run("second upload while one is in flight is rejected", func(t *testing.T) {
		up := &fakeUploader{started: make(chan struct{}), block: make(chan struct{})}
		flow := New(up, nil)

		done := make(chan struct{})
		go func() {
			defer close(done)
			flow.IngestDocument(context.Background(), api.IngestParams{
				File: strings.NewReader("pdf"), Filename: "first.pdf",
			})
		}()

		<-up.started
		assert.True(t, flow.InFlight())

		_, err := flow.IngestDocument(context.Background(), api.IngestParams{
			File: strings.NewReader("pdf"), Filename: "second.pdf",
		})
		assert.ErrorIs(t, err, ErrInFlight)

		close(up.block)
		<-done
		assert.False(t, flow.InFlight())
	})

	t.Run("flow is reusable after a failure", func(t *testing.T) {
		up := &fakeUploader{ingestFn: func() (*api.IngestResponse, error) {
			return nil, errors.New("backend rejected the file")
		}}
		flow := New(up, nil)

		_, err := flow.IngestDocument(context.Background(), api.IngestParams{File: strings.NewReader("x"), Filename: "bad.pdf"})
		require.Error(t, err)
		assert.False(t, flow.InFlight())

		up.ingestFn = nil
		_, err = flow.IngestDocument(context.Background(), api.IngestParams{File: strings.NewReader("x"), Filename: "good.pdf"})
		assert.NoError(t, err)
	})
}

func TestImportStore(t *testing.T) {
	t.Run("import refreshes the registry", func(t *testing.T) {
		reg := registry.New()
		up := &fakeUploader{stores: map[string]api.VectorStore{
			"new-store": {ModelName: "all-MiniLM-L6-v2"},
		}}
		flow := New(up, reg)

		resp, err := flow.ImportStore(context.Background(), strings.NewReader("zip"), "export.zip", "all-MiniLM-L6-v2")
		require.NoError(t, err)
		assert.Equal(t, "new-store", resp.VectorStoreID)
		assert.True(t, reg.Has("new-store"))
		assert.Equal(t, []string{"upload:export.zip", "list"}, up.calls)
	})

	t.Run("refresh failure does not fail the import", func(t *testing.T) {
		reg := registry.New()
		up := &fakeUploader{listErr: errors.New("backend down")}
		flow := New(up, reg)

		resp, err := flow.ImportStore(context.Background(), strings.NewReader("zip"), "export.zip", "all-MiniLM-L6-v2")
		require.NoError(t, err)
		assert.Equal(t, "new-store", resp.VectorStoreID)
		assert.Zero(t, reg.Len())
	})

	t.Run("nil registry skips the refresh", func(t *testing.T) {
		up := &fakeUploader{}
		flow := New(up, nil)

		_, err := flow.ImportStore(context.Background(), strings.NewReader("zip"), "export.zip", "all-MiniLM-L6-v2")
		require.NoError(t, err)
		assert.Equal(t, []string{"upload:export.zip"}, up.calls)
	})
}
