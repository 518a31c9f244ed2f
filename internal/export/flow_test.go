package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	data []byte
	err  error
	got  string
}

func (f *fakeExporter) Export(ctx context.Context, storeID string) ([]byte, error) {
	f.got = storeID
	return f.data, f.err
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "rag_export.zip", Filename(""))
	assert.Equal(t, "vector_store_abc123.zip", Filename("abc123"))
}

func TestRun(t *testing.T) {
	t.Run("writes the archive and reports its digest", func(t *testing.T) {
		dir := t.TempDir()
		payload := []byte("PK\x03\x04 archive bytes")
		flow := New(&fakeExporter{data: payload})

		res, err := flow.Run(context.Background(), "abc123", dir)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "vector_store_abc123.zip"), res.Path)
		assert.Equal(t, int64(len(payload)), res.Size)
		assert.Equal(t, xxhash.Sum64(payload), res.Digest)

		written, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, payload, written)
	})

	t.Run("default store export uses the default filename", func(t *testing.T) {
		dir := t.TempDir()
		exp := &fakeExporter{data: []byte("zip")}
		flow := New(exp)

		res, err := flow.Run(context.Background(), "", dir)
		require.NoError(t, err)
		assert.Equal(t, "", exp.got)
		assert.Equal(t, filepath.Join(dir, "rag_export.zip"), res.Path)
	})

	t.Run("empty archive is rejected before touching disk", func(t *testing.T) {
		dir := t.TempDir()
		flow := New(&fakeExporter{data: nil})

		_, err := flow.Run(context.Background(), "abc123", dir)
		assert.ErrorIs(t, err, ErrEmptyArchive)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})

	t.Run("transport errors pass through", func(t *testing.T) {
		cause := errors.New("store not found")
		flow := New(&fakeExporter{err: cause})

		_, err := flow.Run(context.Background(), "missing", t.TempDir())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("unwritable destination fails", func(t *testing.T) {
		flow := New(&fakeExporter{data: []byte("zip")})

		_, err := flow.Run(context.Background(), "", filepath.Join(t.TempDir(), "does", "not", "exist"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write archive")
	})
}
