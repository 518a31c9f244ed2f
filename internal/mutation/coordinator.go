// Package mutation serializes chunk and store mutations: destructive
// operations are gated on an injected confirmation capability, and every
// successful mutation triggers the refresh that brings the cached views back
// in line with server state (re-run the last query for chunk-level edits,
// re-fetch the registry for store-level changes).
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/registry"
	"github.com/BevinV/Interactive-Rag/internal/session"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
// Nothing has been sent to the backend in that case.
var ErrCancelled = errors.New("cancelled")

// ErrDefaultStoreInsert is returned for chunk insertion against the default
// store, which the backend only supports for named stores.
var ErrDefaultStoreInsert = errors.New("chunk insertion requires a named vector store")

// Confirmer asks the user to approve a destructive action. Supplied by the
// presentation layer so the coordinator stays testable without a terminal.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Always is a Confirmer that approves everything. Used where approval was
// already collected, e.g. by the TUI's inline prompt.
var Always Confirmer = ConfirmerFunc(func(string) bool { return true })

// Backend is the subset of the transport client the coordinator drives.
// *api.Client satisfies it.
type Backend interface {
	Query(ctx context.Context, storeID, query string, k int) ([]api.Chunk, error)
	UpdateChunk(ctx context.Context, storeID, chunkID, newText string) error
	DeleteChunk(ctx context.Context, storeID, chunkID string) error
	AddChunk(ctx context.Context, storeID string, nc api.NewChunk) (*api.AddChunkResponse, error)
	DeleteStore(ctx context.Context, storeID string) error
	ListStores(ctx context.Context) (map[string]api.VectorStore, error)
	ResetIndex(ctx context.Context) (*api.MessageResponse, error)
	FixMappings(ctx context.Context) (*api.FixMappingsResponse, error)
}

// Coordinator applies mutations for the session's store and keeps the
// session and registry consistent afterwards.
type Coordinator struct {
	backend Backend
	confirm Confirmer
	sess    *session.Session
	reg     *registry.Registry
}

// New wires a coordinator to its collaborators.
func New(backend Backend, confirm Confirmer, sess *session.Session, reg *registry.Registry) *Coordinator {
	return &Coordinator{backend: backend, confirm: confirm, sess: sess, reg: reg}
}

// Bind switches the coordinator to a different session, e.g. after the user
// selects another store.
func (c *Coordinator) Bind(sess *session.Session) { c.sess = sess }

// Session returns the currently bound session.
func (c *Coordinator) Session() *session.Session { return c.sess }

// EditChunk replaces a chunk's text, then re-runs the last query: an edit can
// change the chunk's relevance, so the displayed ranking is stale until
// re-fetched.
func (c *Coordinator) EditChunk(ctx context.Context, chunkID, newText string) error {
	storeID := c.sess.StoreID()
	if err := c.backend.UpdateChunk(ctx, storeID, chunkID, newText); err != nil {
		return err
	}
	log.Debug("Chunk updated", "store", storeID, "chunk", chunkID)
	return c.rerunLastQuery(ctx)
}

// DeleteChunk removes a chunk after confirmation, then re-runs the last query.
func (c *Coordinator) DeleteChunk(ctx context.Context, chunkID string) error {
	if !c.confirm.Confirm("Delete this chunk? This cannot be undone.") {
		return ErrCancelled
	}
	storeID := c.sess.StoreID()
	if err := c.backend.DeleteChunk(ctx, storeID, chunkID); err != nil {
		return err
	}
	log.Debug("Chunk deleted", "store", storeID, "chunk", chunkID)
	return c.rerunLastQuery(ctx)
}

// AddChunk inserts a manually authored chunk into the session's store, then
// re-runs the last query. Only named stores accept insertions.
func (c *Coordinator) AddChunk(ctx context.Context, nc api.NewChunk) (string, error) {
	storeID := c.sess.StoreID()
	if storeID == "" {
		return "", ErrDefaultStoreInsert
	}
	resp, err := c.backend.AddChunk(ctx, storeID, nc)
	if err != nil {
		return "", err
	}
	log.Debug("Chunk added", "store", storeID, "chunk", resp.ChunkID)
	if err := c.rerunLastQuery(ctx); err != nil {
		return resp.ChunkID, err
	}
	return resp.ChunkID, nil
}

// DeleteStore destroys a named store after confirmation, refreshes the
// registry, and clears the session entirely if it was querying that store.
func (c *Coordinator) DeleteStore(ctx context.Context, storeID string) error {
	prompt := fmt.Sprintf("Delete vector store %q? All its chunks will be lost.", storeID)
	if !c.confirm.Confirm(prompt) {
		return ErrCancelled
	}
	if err := c.backend.DeleteStore(ctx, storeID); err != nil {
		return err
	}
	log.Debug("Store deleted", "store", storeID)
	if c.sess != nil && c.sess.StoreID() == storeID {
		c.sess.Clear()
	}
	return c.RefreshRegistry(ctx)
}

// ResetIndex wipes the default store after confirmation. A session bound to
// the default store is cleared: its results describe chunks that no longer
// exist.
func (c *Coordinator) ResetIndex(ctx context.Context) (string, error) {
	if !c.confirm.Confirm("Reset the index? All documents in the default store will be deleted. This cannot be undone.") {
		return "", ErrCancelled
	}
	resp, err := c.backend.ResetIndex(ctx)
	if err != nil {
		return "", err
	}
	if c.sess != nil && c.sess.StoreID() == "" {
		c.sess.Clear()
	}
	return resp.Message, nil
}

// FixMappings rebuilds the default index's id mappings after confirmation.
func (c *Coordinator) FixMappings(ctx context.Context) (*api.FixMappingsResponse, error) {
	if !c.confirm.Confirm("Rebuild index mappings from metadata?") {
		return nil, ErrCancelled
	}
	return c.backend.FixMappings(ctx)
}

// RefreshRegistry re-fetches the full store mapping and replaces the
// registry wholesale.
func (c *Coordinator) RefreshRegistry(ctx context.Context) error {
	stores, err := c.backend.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("refresh stores: %w", err)
	}
	prev := c.reg.Selected()
	if cleared := c.reg.Replace(stores); cleared && c.sess != nil && c.sess.StoreID() == prev {
		c.sess.Clear()
	}
	return nil
}

// rerunLastQuery resubmits the session's remembered query so displayed
// results reflect post-mutation server state. A session with no prior query
// has nothing to refresh.
func (c *Coordinator) rerunLastQuery(ctx context.Context) error {
	if c.sess == nil {
		return nil
	}
	query, k, ok := c.sess.LastQuery()
	if !ok {
		return nil
	}
	token := c.sess.Submit(query, k)
	results, err := c.backend.Query(ctx, c.sess.StoreID(), query, k)
	if err != nil {
		c.sess.Reject(token, err)
		return fmt.Errorf("refresh results: %w", err)
	}
	c.sess.Resolve(token, results)
	return nil
}
