// Package session implements the per-view query lifecycle: a submission goes
// Searching and resolves to Succeeded or Failed exactly once. Submitting
// again supersedes any in-flight query; late resolutions of superseded
// submissions are dropped so displayed results never mix payloads from two
// queries.
package session

import (
	"sync"

	"github.com/BevinV/Interactive-Rag/internal/api"
)

// TopKPresets are the k values the interface offers.
var TopKPresets = []int{3, 5, 10, 15, 20}

// ValidK reports whether k is one of the offered presets.
func ValidK(k int) bool {
	for _, p := range TopKPresets {
		if p == k {
			return true
		}
	}
	return false
}

// State is the session's lifecycle phase.
type State int

const (
	Idle State = iota
	Searching
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session tracks one view's query state. Safe for concurrent use so resolve
// callbacks may run on worker goroutines.
type Session struct {
	mu      sync.RWMutex
	storeID string
	state   State

	lastQuery string
	lastK     int
	hasQuery  bool

	results []api.Chunk
	err     error
	seq     uint64
}

// New creates an idle session for the given store ("" = default store).
func New(storeID string) *Session {
	return &Session{storeID: storeID}
}

// StoreID returns the store this session queries.
func (s *Session) StoreID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeID
}

// Submit records a new query, clears any displayed results immediately and
// enters Searching. The returned token must be passed to Resolve or Reject;
// a token from a superseded submission is ignored there.
func (s *Session) Submit(query string, k int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = Searching
	s.lastQuery = query
	s.lastK = k
	s.hasQuery = true
	s.results = nil
	s.err = nil
	return s.seq
}

// Resolve completes the submission identified by token with its result set.
// An empty set is a valid terminal state. Returns false when the token was
// superseded and the payload discarded.
func (s *Session) Resolve(token uint64, results []api.Chunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq || s.state != Searching {
		return false
	}
	s.state = Succeeded
	s.results = results
	s.err = nil
	return true
}

// Reject fails the submission identified by token. The last query parameters
// are retained so the user can retry. Returns false for superseded tokens.
func (s *Session) Reject(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq || s.state != Searching {
		return false
	}
	s.state = Failed
	s.err = err
	return true
}

// Clear resets the session to Idle, dropping results, errors and the
// remembered query. Used when the owning store is deleted or deselected.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++ // invalidate any in-flight resolution
	s.state = Idle
	s.results = nil
	s.err = nil
	s.lastQuery = ""
	s.lastK = 0
	s.hasQuery = false
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Results returns the current result set (nil unless Succeeded).
func (s *Session) Results() []api.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Err returns the failure of the last submission, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LastQuery returns the most recent query parameters. ok is false before the
// first submission and after Clear.
func (s *Session) LastQuery() (query string, k int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuery, s.lastK, s.hasQuery
}
