package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	t.Run("default store hits /query", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"chunk_id": "c1", "document": "doc.pdf", "page": 2, "text": "hello", "score": 0.91},
				},
			})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		results, err := client.Query(context.Background(), "", "hello world", 5)
		require.NoError(t, err)

		assert.Equal(t, "/query", gotPath)
		assert.Equal(t, "hello world", gotBody["query"])
		assert.Equal(t, float64(5), gotBody["k"])
		require.Len(t, results, 1)
		assert.Equal(t, "c1", results[0].ChunkID)
		assert.Equal(t, "doc.pdf", results[0].Document)
		assert.Equal(t, 2, results[0].Page)
		assert.InDelta(t, 0.91, results[0].ScoreValue(), 1e-9)
	})

	t.Run("named store hits /query_vector_store/{id}", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		results, err := client.Query(context.Background(), "abc123", "q", 3)
		require.NoError(t, err)

		assert.Equal(t, "/query_vector_store/abc123", gotPath)
		assert.Empty(t, results)
	})

	t.Run("empty result set is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		results, err := client.Query(context.Background(), "", "nothing matches", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("400 surfaces backend detail verbatim", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Query embedding dimension 768 does not match index dimension 384",
			})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		_, err := client.Query(context.Background(), "", "q", 5)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.True(t, IsModelMismatch(err))
		assert.Contains(t, err.Error(), "dimension 768 does not match")
	})

	t.Run("500 is reported generically", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail": "index out of range in faiss_index.search"}`))
		}))
		defer server.Close()

		client := New(server.URL, 0)
		_, err := client.Query(context.Background(), "", "q", 5)
		require.Error(t, err)
		assert.True(t, IsServer(err))
		assert.NotContains(t, err.Error(), "faiss_index")
	})

	t.Run("unreachable backend is a network error", func(t *testing.T) {
		client := New("http://127.0.0.1:1", 0)
		_, err := client.Query(context.Background(), "", "q", 5)
		require.Error(t, err)
		assert.True(t, IsNetwork(err))
	})
}

func TestIngest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ingest", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "all-MiniLM-L6-v2", r.FormValue("model_name"))
		assert.Equal(t, "sentence_aware", r.FormValue("chunking_method"))
		assert.Equal(t, "400", r.FormValue("chunk_size"))
		assert.Equal(t, "40", r.FormValue("chunk_overlap"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "paper.pdf", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"message":   "Successfully processed paper.pdf",
			"chunk_ids": []string{"a", "b", "c"},
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	resp, err := client.Ingest(context.Background(), IngestParams{
		File:           strings.NewReader("%PDF-1.4 fake"),
		Filename:       "paper.pdf",
		ModelName:      "all-MiniLM-L6-v2",
		ChunkingMethod: "sentence_aware",
		ChunkSize:      400,
		ChunkOverlap:   40,
	})
	require.NoError(t, err)
	assert.Len(t, resp.ChunkIDs, 3)
	assert.Contains(t, resp.Message, "paper.pdf")
}

func TestChunkMutations(t *testing.T) {
	t.Run("update chunk routes by store", func(t *testing.T) {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "fresh text", body["new_text"])
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		require.NoError(t, client.UpdateChunk(context.Background(), "", "c9", "fresh text"))
		require.NoError(t, client.UpdateChunk(context.Background(), "s1", "c9", "fresh text"))
		assert.Equal(t, []string{"/update_chunk/c9", "/update_vector_store_chunk/s1/c9"}, paths)
	})

	t.Run("delete chunk routes by store", func(t *testing.T) {
		var paths []string
		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			methods = append(methods, r.Method)
			json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		require.NoError(t, client.DeleteChunk(context.Background(), "", "c9"))
		require.NoError(t, client.DeleteChunk(context.Background(), "s1", "c9"))
		assert.Equal(t, []string{"/delete_chunk/c9", "/delete_from_vector_store/s1/c9"}, paths)
		assert.Equal(t, []string{http.MethodDelete, http.MethodDelete}, methods)
	})

	t.Run("add chunk posts the form to the named store", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/add_to_vector_store/s1", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "note to self", r.FormValue("text"))
			assert.Equal(t, "custom", r.FormValue("document"))
			assert.Equal(t, "1", r.FormValue("page"))
			json.NewEncoder(w).Encode(map[string]string{"message": "added", "chunk_id": "new-1"})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		resp, err := client.AddChunk(context.Background(), "s1", NewChunk{
			Text: "note to self", Document: "custom", Page: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, "new-1", resp.ChunkID)
	})
}

func TestListStores(t *testing.T) {
	t.Run("decodes the id to metadata mapping", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/list_vector_stores", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"abc": map[string]string{"model_name": "all-mpnet-base-v2", "created_at": "2026-08-30T10:11:12.131415"},
			})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		stores, err := client.ListStores(context.Background())
		require.NoError(t, err)
		require.Contains(t, stores, "abc")
		assert.Equal(t, "all-mpnet-base-v2", stores["abc"].ModelName)

		created := stores["abc"].CreatedTime()
		assert.False(t, created.IsZero())
		assert.Equal(t, 2026, created.Year())
	})

	t.Run("null body yields an empty map", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null"))
		}))
		defer server.Close()

		client := New(server.URL, 0)
		stores, err := client.ListStores(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, stores)
		assert.Empty(t, stores)
	})
}

func TestExportEndpoints(t *testing.T) {
	t.Run("export returns raw bytes", func(t *testing.T) {
		payload := []byte("PK\x03\x04zipbytes")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/export", r.URL.Path)
			w.Header().Set("Content-Type", "application/zip")
			w.Write(payload)
		}))
		defer server.Close()

		client := New(server.URL, 0)
		data, err := client.Export(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("named store export path", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte("zip"))
		}))
		defer server.Close()

		client := New(server.URL, 0)
		_, err := client.Export(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "/export_vector_store/s1", gotPath)
	})

	t.Run("error status parses detail instead of archive bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Vector store not found"})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		_, err := client.Export(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "Vector store not found")
	})

	t.Run("test export posts archive and query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/test_export", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "sanity query", r.FormValue("query"))
			assert.Equal(t, "3", r.FormValue("k"))
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		results, err := client.TestExport(context.Background(), strings.NewReader("zip"), "export.zip", "sanity query", 3)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMaintenanceEndpoints(t *testing.T) {
	t.Run("index status and health", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/index_status":
				json.NewEncoder(w).Encode(map[string]any{
					"index_size": 42, "mappings_count": 42, "model": "all-MiniLM-L6-v2", "dimension": 384,
				})
			case "/health":
				json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "is_consistent": true})
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
		}))
		defer server.Close()

		client := New(server.URL, 0)
		stats, err := client.IndexStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, stats.IndexSize)
		assert.Equal(t, 384, stats.Dimension)

		health, err := client.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.True(t, health.IsConsistent)
	})

	t.Run("fix mappings returns before and after stats", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fix_mappings", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			json.NewEncoder(w).Encode(map[string]any{
				"message":      "mappings rebuilt",
				"stats_before": map[string]any{"index_size": 40, "mappings_count": 42},
				"stats_after":  map[string]any{"index_size": 42, "mappings_count": 42},
			})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		resp, err := client.FixMappings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 40, resp.StatsBefore.IndexSize)
		assert.Equal(t, 42, resp.StatsAfter.IndexSize)
	})

	t.Run("reset index posts and decodes the message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/reset_index", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			json.NewEncoder(w).Encode(map[string]string{"message": "Index reset successfully"})
		}))
		defer server.Close()

		client := New(server.URL, 0)
		resp, err := client.ResetIndex(context.Background())
		require.NoError(t, err)
		assert.Contains(t, resp.Message, "reset")
	})
}
