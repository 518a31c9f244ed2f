// Package api is the typed client for the Interactive RAG backend.
//
// Each backend endpoint maps to one method on Client. All failures are
// normalized into *Error; the layer performs no caching and no retries.
package api

import (
	"io"
	"time"
)

// Chunk is one retrievable unit of text. Score is populated only on query
// results; Model and ChunkingMethod may be absent from older indexes.
type Chunk struct {
	ChunkID        string   `json:"chunk_id"`
	Document       string   `json:"document"`
	Page           int      `json:"page"`
	Text           string   `json:"text"`
	StartIndex     int      `json:"start_index"`
	Score          *float64 `json:"score,omitempty"`
	Model          string   `json:"model,omitempty"`
	ChunkingMethod string   `json:"chunking_method,omitempty"`
}

// ScoreValue returns the relevance score, or 0 when the backend omitted it.
func (c Chunk) ScoreValue() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// VectorStore is the metadata for one named store. The id is the key of the
// map returned by ListStores and is not repeated in the body.
type VectorStore struct {
	ModelName string `json:"model_name"`
	CreatedAt string `json:"created_at"`
}

// createdAtLayouts covers datetime.isoformat() output with and without
// fractional seconds; the backend writes no zone designator.
var createdAtLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// CreatedTime parses CreatedAt. The zero time is returned for values the
// backend never produces.
func (s VectorStore) CreatedTime() time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IngestParams are the processing parameters for a document upload. Size and
// overlap are passed through without client-side range checks; the backend is
// the authority on acceptability.
type IngestParams struct {
	File           io.Reader
	Filename       string
	ModelName      string
	ChunkingMethod string
	ChunkSize      int
	ChunkOverlap   int
}

// IngestResponse reports the chunks created by an ingest.
type IngestResponse struct {
	Message  string   `json:"message"`
	ChunkIDs []string `json:"chunk_ids"`
}

// NewChunk is a manually inserted chunk (annotation outside any document
// ingestion pipeline).
type NewChunk struct {
	Text       string
	Document   string
	Page       int
	StartIndex int
}

// AddChunkResponse acknowledges a manual chunk insertion.
type AddChunkResponse struct {
	Message string `json:"message"`
	ChunkID string `json:"chunk_id"`
}

// UploadStoreResponse acknowledges an archive import.
type UploadStoreResponse struct {
	Message       string `json:"message"`
	VectorStoreID string `json:"vector_store_id"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ModelInfo describes one embedding model offered by the backend.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimensions  int    `json:"dimensions"`
}

// ChunkingMethodInfo describes one chunking method offered by the backend.
type ChunkingMethodInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IndexStats is the default index's state as reported by /index_status.
type IndexStats struct {
	IndexSize     int    `json:"index_size"`
	MappingsCount int    `json:"mappings_count"`
	Dimension     int    `json:"dimension"`
	Model         string `json:"model"`
}

// Health is the backend's consistency report for the default index.
type Health struct {
	Status        string `json:"status"`
	IndexSize     int    `json:"index_size"`
	MappingsCount int    `json:"mappings_count"`
	MetadataCount int    `json:"metadata_count"`
	IsConsistent  bool   `json:"is_consistent"`
}

// FixMappingsResponse reports a mapping rebuild.
type FixMappingsResponse struct {
	Message     string     `json:"message"`
	StatsBefore IndexStats `json:"stats_before"`
	StatsAfter  IndexStats `json:"stats_after"`
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type queryResponse struct {
	Results []Chunk `json:"results"`
}

type updateChunkRequest struct {
	NewText string `json:"new_text"`
}

type errorBody struct {
	Detail string `json:"detail"`
}
