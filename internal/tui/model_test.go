package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BevinV/Interactive-Rag/internal/api"
)

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// newReadyModel builds a model with a sized viewport and a loaded registry.
func newReadyModel(t *testing.T, client *api.Client, storeID string, stores map[string]api.VectorStore) *Model {
	t.Helper()
	m := New(client, storeID, time.Second)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(storesMsg{stores: stores})
	return m
}

func TestDeleteViewedStoreRebindsToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delete_vector_store/s1":
			json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
		case "/list_vector_stores":
			w.Write([]byte("{}"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	m := newReadyModel(t, api.New(server.URL, 0), "s1", map[string]api.VectorStore{
		"s1": {ModelName: "all-MiniLM-L6-v2"},
	})
	require.Equal(t, "s1", m.sess.StoreID())

	m.Update(key(tea.KeyCtrlX))
	require.Equal(t, modeConfirm, m.mode)

	_, cmd := m.Update(runeKey('y'))
	require.NotNil(t, cmd)
	msg := cmd() // runs the deletion against the backend
	m.Update(msg)

	assert.False(t, m.reg.Has("s1"))
	assert.Equal(t, "", m.sess.StoreID(), "view must not stay bound to a deleted store")
	assert.Equal(t, 0, m.storeIdx)
	assert.Contains(t, m.View(), "store: "+defaultStoreLabel)
	assert.NotContains(t, m.View(), "store: s1")
}

func TestDeleteOtherStoreKeepsBinding(t *testing.T) {
	// Deleting a chunk (not a store) must leave the binding alone even
	// though it arrives through the same mutation message.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delete_from_vector_store/s1/c1":
			json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
		case "/query_vector_store/s1":
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	m := newReadyModel(t, api.New(server.URL, 0), "s1", map[string]api.VectorStore{
		"s1": {ModelName: "all-MiniLM-L6-v2"},
	})
	token := m.sess.Submit("q", 5)
	require.True(t, m.sess.Resolve(token, []api.Chunk{{ChunkID: "c1", Text: "text"}}))

	m.Update(key(tea.KeyCtrlD))
	require.Equal(t, modeConfirm, m.mode)

	_, cmd := m.Update(runeKey('y'))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, "s1", m.sess.StoreID())
	assert.Contains(t, m.View(), "store: s1")
}

func TestRenderResultsTruncatesOnRuneBoundary(t *testing.T) {
	m := newReadyModel(t, api.New("http://127.0.0.1:1", 0), "", nil)

	long := strings.Repeat("日本語テキスト", 40)
	token := m.sess.Submit("q", 5)
	require.True(t, m.sess.Resolve(token, []api.Chunk{
		{ChunkID: "c1", Document: "doc.pdf", Page: 1, Text: "selected"},
		{ChunkID: "c2", Document: "doc.pdf", Page: 2, Text: long},
	}))

	out := m.renderResults()
	assert.True(t, utf8.ValidString(out), "truncation must not split a rune")
	assert.Contains(t, out, "...")
}
