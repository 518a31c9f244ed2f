// Package registry tracks the set of known vector stores and the current
// selection. Its contents are a cached view of server state: every structural
// mutation on the backend is followed by a wholesale Replace, never an
// incremental patch.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BevinV/Interactive-Rag/internal/api"
)

// Registry holds the id -> metadata mapping plus a single selected store.
// An empty selection means the default store (or "none selected" in views
// that only deal with named stores). Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]api.VectorStore
	selected string
}

// New returns an empty registry with no selection.
func New() *Registry {
	return &Registry{stores: map[string]api.VectorStore{}}
}

// Replace swaps the full mapping. If the selected store no longer exists the
// selection is cleared and cleared=true is returned so the owner can drop any
// results attributed to it. Replacing wholesale on every resolution gives the
// last-resolve-wins behavior for overlapping refreshes.
func (r *Registry) Replace(stores map[string]api.VectorStore) (cleared bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stores == nil {
		stores = map[string]api.VectorStore{}
	}
	r.stores = stores
	if r.selected != "" {
		if _, ok := stores[r.selected]; !ok {
			r.selected = ""
			return true
		}
	}
	return false
}

// Select sets the current store. Selecting an unknown id is an error; the
// empty id always succeeds and means "default store / none".
func (r *Registry) Select(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if _, ok := r.stores[id]; !ok {
			return fmt.Errorf("unknown vector store: %s", id)
		}
	}
	r.selected = id
	return nil
}

// Deselect clears the selection.
func (r *Registry) Deselect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected returns the selected store id, "" when none.
func (r *Registry) Selected() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected
}

// Get returns the metadata for id.
func (r *Registry) Get(id string) (api.VectorStore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	return s, ok
}

// Has reports whether id is a known store.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Len returns the number of known stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// IDs returns the known store ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stores returns a copy of the full mapping.
func (r *Registry) Stores() map[string]api.VectorStore {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]api.VectorStore, len(r.stores))
	for id, s := range r.stores {
		out[id] = s
	}
	return out
}
