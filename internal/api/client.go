package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the Interactive RAG backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL. A zero timeout disables
// the client-side deadline; callers can still cancel through the context.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Ingest uploads a document to the default store with the given processing
// parameters and returns the ids of the chunks created.
func (c *Client) Ingest(ctx context.Context, p IngestParams) (*IngestResponse, error) {
	form := func(w *multipart.Writer) error {
		fw, err := w.CreateFormFile("file", p.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, p.File); err != nil {
			return err
		}
		fields := map[string]string{
			"model_name":      p.ModelName,
			"chunking_method": p.ChunkingMethod,
			"chunk_size":      strconv.Itoa(p.ChunkSize),
			"chunk_overlap":   strconv.Itoa(p.ChunkOverlap),
		}
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return err
			}
		}
		return nil
	}
	var out IngestResponse
	if err := c.doMultipart(ctx, "ingest", "/ingest", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs a top-k similarity search. An empty storeID addresses the
// default store; a non-empty id addresses that named store. The returned
// slice may be empty, which is a valid outcome, not an error.
func (c *Client) Query(ctx context.Context, storeID, query string, k int) ([]Chunk, error) {
	path := "/query"
	if storeID != "" {
		path = "/query_vector_store/" + storeID
	}
	var out queryResponse
	err := c.doJSON(ctx, "query", http.MethodPost, path, queryRequest{Query: query, K: k}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// UpdateChunk replaces a chunk's text. Empty storeID targets the default store.
func (c *Client) UpdateChunk(ctx context.Context, storeID, chunkID, newText string) error {
	path := "/update_chunk/" + chunkID
	if storeID != "" {
		path = "/update_vector_store_chunk/" + storeID + "/" + chunkID
	}
	var out MessageResponse
	return c.doJSON(ctx, "update chunk", http.MethodPost, path, updateChunkRequest{NewText: newText}, &out)
}

// DeleteChunk removes a chunk. Empty storeID targets the default store.
// There is no server-side undo; callers gate this behind confirmation.
func (c *Client) DeleteChunk(ctx context.Context, storeID, chunkID string) error {
	path := "/delete_chunk/" + chunkID
	if storeID != "" {
		path = "/delete_from_vector_store/" + storeID + "/" + chunkID
	}
	var out MessageResponse
	return c.doJSON(ctx, "delete chunk", http.MethodDelete, path, nil, &out)
}

// AddChunk inserts a manually authored chunk into a named store.
func (c *Client) AddChunk(ctx context.Context, storeID string, nc NewChunk) (*AddChunkResponse, error) {
	form := func(w *multipart.Writer) error {
		fields := map[string]string{
			"text":        nc.Text,
			"document":    nc.Document,
			"page":        strconv.Itoa(nc.Page),
			"start_index": strconv.Itoa(nc.StartIndex),
		}
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return err
			}
		}
		return nil
	}
	var out AddChunkResponse
	if err := c.doMultipart(ctx, "add chunk", "/add_to_vector_store/"+storeID, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStores fetches the full id -> metadata mapping for named stores.
func (c *Client) ListStores(ctx context.Context) (map[string]VectorStore, error) {
	var out map[string]VectorStore
	if err := c.doJSON(ctx, "list stores", http.MethodGet, "/list_vector_stores", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]VectorStore{}
	}
	return out, nil
}

// UploadStore imports a previously exported archive as a new named store.
func (c *Client) UploadStore(ctx context.Context, file io.Reader, filename, modelName string) (*UploadStoreResponse, error) {
	form := func(w *multipart.Writer) error {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, file); err != nil {
			return err
		}
		return w.WriteField("model_name", modelName)
	}
	var out UploadStoreResponse
	if err := c.doMultipart(ctx, "upload store", "/upload_vector_store", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStore destroys a named store and all its chunks.
func (c *Client) DeleteStore(ctx context.Context, storeID string) error {
	var out MessageResponse
	return c.doJSON(ctx, "delete store", http.MethodDelete, "/delete_vector_store/"+storeID, nil, &out)
}

// Export fetches a store snapshot as raw bytes. Empty storeID exports the
// default store. The body is never parsed as JSON on success; on failure the
// status code decides how the body is interpreted.
func (c *Client) Export(ctx context.Context, storeID string) ([]byte, error) {
	path := "/export"
	if storeID != "" {
		path = "/export_vector_store/" + storeID
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "export", Err: err}
	}
	log.Debug("Requesting export", "store", storeID, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "export", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "export", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("export", resp.StatusCode, body)
	}
	return body, nil
}

// TestExport validates an exported archive offline: the backend loads the
// archive into a scratch index and runs the query against it.
func (c *Client) TestExport(ctx context.Context, file io.Reader, filename, query string, k int) ([]Chunk, error) {
	form := func(w *multipart.Writer) error {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, file); err != nil {
			return err
		}
		if err := w.WriteField("query", query); err != nil {
			return err
		}
		return w.WriteField("k", strconv.Itoa(k))
	}
	var out queryResponse
	if err := c.doMultipart(ctx, "test export", "/test_export", form, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ResetIndex wipes the default store. Irrevocable; callers gate this behind
// confirmation.
func (c *Client) ResetIndex(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.doJSON(ctx, "reset index", http.MethodPost, "/reset_index", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Models lists the embedding models the backend can apply at ingestion time.
func (c *Client) Models(ctx context.Context) (map[string]ModelInfo, error) {
	var out map[string]ModelInfo
	if err := c.doJSON(ctx, "list models", http.MethodGet, "/available_models", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChunkingMethods lists the chunking methods the backend supports.
func (c *Client) ChunkingMethods(ctx context.Context) (map[string]ChunkingMethodInfo, error) {
	var out map[string]ChunkingMethodInfo
	if err := c.doJSON(ctx, "list chunking methods", http.MethodGet, "/available_chunking_methods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IndexStatus reports the default index's statistics.
func (c *Client) IndexStatus(ctx context.Context) (*IndexStats, error) {
	var out IndexStats
	if err := c.doJSON(ctx, "index status", http.MethodGet, "/index_status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck reports consistency between the index, mappings and metadata.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doJSON(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FixMappings rebuilds the default index's id mappings from metadata.
func (c *Client) FixMappings(ctx context.Context) (*FixMappingsResponse, error) {
	var out FixMappingsResponse
	if err := c.doJSON(ctx, "fix mappings", http.MethodPost, "/fix_mappings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON sends an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

// doMultipart sends a multipart form built by fill and decodes a JSON
// response into out.
func (c *Client) doMultipart(ctx context.Context, op, path string, fill func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: fmt.Errorf("build form: %w", err)}
	}
	if err := w.Close(); err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(op, req, out)
}

func (c *Client) send(op string, req *http.Request, out any) error {
	log.Debug("Backend request", "op", op, "method", req.Method, "url", req.URL.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy. The 4xx detail
// is carried verbatim; a body that is not the expected {"detail": ...} shape
// falls back to its raw text.
func statusError(op string, status int, body []byte) *Error {
	var eb errorBody
	detail := ""
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		detail = eb.Detail
	} else if s := strings.TrimSpace(string(body)); s != "" && status < 500 {
		detail = s
	}
	kind := KindServer
	if status >= 400 && status < 500 {
		kind = KindValidation
	}
	return &Error{Kind: kind, Status: status, Op: op, Detail: detail}
}
