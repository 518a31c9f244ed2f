// Package tui implements the interactive browse session: store selection,
// query input, result navigation and chunk mutations in a single terminal
// program. All backend work runs in commands; the update loop only reads
// session and registry state, so result sets from superseded queries are
// never rendered.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BevinV/Interactive-Rag/internal/api"
	"github.com/BevinV/Interactive-Rag/internal/mutation"
	"github.com/BevinV/Interactive-Rag/internal/registry"
	"github.com/BevinV/Interactive-Rag/internal/session"
)

const defaultStoreLabel = "(default)"

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeAdd
	modeConfirm
)

type storesMsg struct {
	stores map[string]api.VectorStore
	err    error
}

type queryDoneMsg struct {
	token   uint64
	results []api.Chunk
	err     error
}

type mutationDoneMsg struct {
	verb string
	err  error
}

// Model is the bubbletea model for the browse command.
type Model struct {
	client *api.Client
	reg    *registry.Registry
	sess   *session.Session
	coord  *mutation.Coordinator

	mode    mode
	input   textinput.Model
	editor  textarea.Model
	docIn   textinput.Model
	results viewport.Model

	storeIDs []string // "" first for the default store
	storeIdx int
	kIdx     int
	cursor   int

	confirmPrompt string
	confirmAction func() tea.Cmd

	busy    bool
	status  string
	failed  bool
	width   int
	height  int
	ready   bool
	timeout time.Duration
}

// New builds a browse model bound to the given store. An empty storeID
// starts on the default store.
func New(client *api.Client, storeID string, timeout time.Duration) *Model {
	in := textinput.New()
	in.Placeholder = "type a query and press enter"
	in.Focus()
	in.CharLimit = 512

	ed := textarea.New()
	ed.CharLimit = 0

	doc := textinput.New()
	doc.Placeholder = "document name"
	doc.CharLimit = 128

	reg := registry.New()
	sess := session.New(storeID)
	m := &Model{
		client:  client,
		reg:     reg,
		sess:    sess,
		coord:   mutation.New(client, mutation.Always, sess, reg),
		input:   in,
		editor:  ed,
		docIn:   doc,
		kIdx:    1, // preset 5
		timeout: timeout,
		status:  "loading vector stores...",
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadStores())
}

func (m *Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m *Model) loadStores() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		stores, err := m.client.ListStores(ctx)
		return storesMsg{stores: stores, err: err}
	}
}

func (m *Model) submitQuery() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" || m.sess.State() == session.Searching {
		return nil
	}
	k := session.TopKPresets[m.kIdx]
	token := m.sess.Submit(query, k)
	storeID := m.sess.StoreID()
	m.cursor = 0
	m.setStatus(fmt.Sprintf("searching %s...", storeLabel(storeID)), false)
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		results, err := m.client.Query(ctx, storeID, query, k)
		return queryDoneMsg{token: token, results: results, err: err}
	}
}

func (m *Model) runMutation(verb string, fn func(context.Context) error) tea.Cmd {
	m.busy = true
	m.setStatus(verb+"...", false)
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return mutationDoneMsg{verb: verb, err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		m.docIn.Width = msg.Width - 8
		m.editor.SetWidth(msg.Width - 6)
		m.editor.SetHeight(min(10, msg.Height-8))
		m.results = viewport.New(msg.Width-4, max(3, msg.Height-9))
		m.ready = true
		m.refreshResults()
		return m, nil

	case storesMsg:
		if msg.err != nil {
			m.setStatus("list stores: "+describeError(msg.err), true)
			return m, nil
		}
		cleared := m.reg.Replace(msg.stores)
		if id := m.sess.StoreID(); id != "" && m.reg.Has(id) {
			_ = m.reg.Select(id)
		}
		m.rebuildStoreIDs()
		if (cleared || !m.reg.Has(m.sess.StoreID())) && m.sess.StoreID() != "" {
			m.sess.Clear()
			m.storeIdx = 0
			m.bindStore("")
			m.setStatus("selected store disappeared, back on the default store", true)
		} else {
			m.setStatus(fmt.Sprintf("%d named store(s) loaded", m.reg.Len()), false)
		}
		m.refreshResults()
		return m, nil

	case queryDoneMsg:
		if msg.err != nil {
			if m.sess.Reject(msg.token, msg.err) {
				m.setStatus(describeError(msg.err), true)
			}
		} else if m.sess.Resolve(msg.token, msg.results) {
			m.setStatus(fmt.Sprintf("%d result(s)", len(msg.results)), false)
		}
		m.cursor = 0
		m.refreshResults()
		return m, nil

	case mutationDoneMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, mutation.ErrCancelled):
			m.setStatus("cancelled", false)
		case msg.err != nil:
			m.setStatus(msg.verb+": "+describeError(msg.err), true)
		default:
			m.setStatus(msg.verb+" done", false)
		}
		if m.cursor >= len(m.sess.Results()) {
			m.cursor = max(0, len(m.sess.Results())-1)
		}
		// A store deletion may have removed the store this view was bound
		// to; fall back to the default store rather than keep querying a
		// dead id.
		if id := m.sess.StoreID(); id != "" && !m.reg.Has(id) {
			m.bindStore("")
			m.storeIdx = 0
			m.cursor = 0
		}
		m.rebuildStoreIDs()
		m.refreshResults()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeAdd:
			return m.updateAdd(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		return m, m.submitQuery()

	case "tab":
		m.cycleStore(1)
		return m, nil
	case "shift+tab":
		m.cycleStore(-1)
		return m, nil

	case "ctrl+k":
		m.kIdx = (m.kIdx + 1) % len(session.TopKPresets)
		return m, nil

	case "ctrl+r":
		return m, m.loadStores()

	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
			m.refreshResults()
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.sess.Results())-1 {
			m.cursor++
			m.refreshResults()
		}
		return m, nil

	case "ctrl+e":
		if c, ok := m.currentChunk(); ok && !m.busy {
			m.mode = modeEdit
			m.editor.SetValue(c.Text)
			m.editor.Focus()
			m.input.Blur()
		}
		return m, nil

	case "ctrl+d":
		if c, ok := m.currentChunk(); ok && !m.busy {
			id := c.ChunkID
			m.enterConfirm(
				fmt.Sprintf("delete chunk %s? (y/n)", id),
				func() tea.Cmd {
					return m.runMutation("delete chunk", func(ctx context.Context) error {
						return m.coord.DeleteChunk(ctx, id)
					})
				})
		}
		return m, nil

	case "ctrl+a":
		if m.sess.StoreID() != "" && !m.busy {
			m.mode = modeAdd
			m.editor.SetValue("")
			m.docIn.SetValue("custom")
			m.editor.Focus()
			m.input.Blur()
		} else if m.sess.StoreID() == "" {
			m.setStatus(mutation.ErrDefaultStoreInsert.Error(), true)
		}
		return m, nil

	case "ctrl+x":
		if id := m.sess.StoreID(); id != "" && !m.busy {
			m.enterConfirm(
				fmt.Sprintf("delete vector store %s? (y/n)", id),
				func() tea.Cmd {
					return m.runMutation("delete store", func(ctx context.Context) error {
						return m.coord.DeleteStore(ctx, id)
					})
				})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		m.input.Focus()
		cmd := m.confirmAction
		m.confirmAction = nil
		return m, cmd()
	case "n", "N", "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input.Focus()
		m.confirmAction = nil
		m.setStatus("cancelled", false)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveEditor()
		m.setStatus("edit discarded", false)
		return m, nil
	case "ctrl+s":
		c, ok := m.currentChunk()
		if !ok {
			m.leaveEditor()
			return m, nil
		}
		id, text := c.ChunkID, m.editor.Value()
		m.leaveEditor()
		return m, m.runMutation("edit chunk", func(ctx context.Context) error {
			return m.coord.EditChunk(ctx, id, text)
		})
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveEditor()
		m.setStatus("insert discarded", false)
		return m, nil
	case "tab":
		if m.editor.Focused() {
			m.editor.Blur()
			m.docIn.Focus()
		} else {
			m.docIn.Blur()
			m.editor.Focus()
		}
		return m, nil
	case "ctrl+s":
		nc := api.NewChunk{
			Text:     m.editor.Value(),
			Document: strings.TrimSpace(m.docIn.Value()),
			Page:     1,
		}
		if strings.TrimSpace(nc.Text) == "" {
			m.setStatus("chunk text is empty", true)
			return m, nil
		}
		if nc.Document == "" {
			nc.Document = "custom"
		}
		m.leaveEditor()
		return m, m.runMutation("add chunk", func(ctx context.Context) error {
			_, err := m.coord.AddChunk(ctx, nc)
			return err
		})
	}
	var cmd tea.Cmd
	if m.editor.Focused() {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.docIn, cmd = m.docIn.Update(msg)
	}
	return m, cmd
}

func (m *Model) enterConfirm(prompt string, action func() tea.Cmd) {
	m.mode = modeConfirm
	m.confirmPrompt = prompt
	m.confirmAction = action
	m.input.Blur()
}

func (m *Model) leaveEditor() {
	m.mode = modeBrowse
	m.editor.Blur()
	m.docIn.Blur()
	m.input.Focus()
}

// cycleStore moves the selection across the default store and every named
// store, rebinding the coordinator to a fresh session each time.
func (m *Model) cycleStore(dir int) {
	if len(m.storeIDs) == 0 {
		m.rebuildStoreIDs()
	}
	n := len(m.storeIDs)
	m.storeIdx = ((m.storeIdx+dir)%n + n) % n
	m.bindStore(m.storeIDs[m.storeIdx])
	m.cursor = 0
	m.setStatus("store: "+storeLabel(m.sess.StoreID()), false)
	m.refreshResults()
}

func (m *Model) bindStore(id string) {
	if id == "" {
		m.reg.Deselect()
	} else if err := m.reg.Select(id); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.sess = session.New(id)
	m.coord.Bind(m.sess)
}

func (m *Model) rebuildStoreIDs() {
	m.storeIDs = append([]string{""}, m.reg.IDs()...)
	cur := m.sess.StoreID()
	m.storeIdx = 0
	for i, id := range m.storeIDs {
		if id == cur {
			m.storeIdx = i
			break
		}
	}
}

func (m *Model) currentChunk() (api.Chunk, bool) {
	results := m.sess.Results()
	if m.cursor < 0 || m.cursor >= len(results) {
		return api.Chunk{}, false
	}
	return results[m.cursor], true
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m *Model) refreshResults() {
	if !m.ready {
		return
	}
	m.results.SetContent(m.renderResults())
	// keep the cursor line in view
	if m.cursor >= 0 {
		m.results.SetYOffset(max(0, m.cursor*3-m.results.Height/2))
	}
}

func (m *Model) renderResults() string {
	results := m.sess.Results()
	switch m.sess.State() {
	case session.Idle:
		return dimStyle.Render("no query yet")
	case session.Searching:
		return dimStyle.Render("searching...")
	case session.Failed:
		return statusErrStyle.Render(describeError(m.sess.Err()))
	}
	if len(results) == 0 {
		return dimStyle.Render("no matching chunks")
	}
	var b strings.Builder
	for i, c := range results {
		marker := "  "
		line := fmt.Sprintf("%d. [%.4f] %s p.%d  %s", i+1, c.ScoreValue(), c.Document, c.Page, c.ChunkID)
		if i == m.cursor {
			marker = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
		text := c.Text
		if runes := []rune(text); i != m.cursor && len(runes) > 160 {
			text = string(runes[:160]) + "..."
		}
		b.WriteString("    " + strings.ReplaceAll(text, "\n", " ") + "\n\n")
	}
	return b.String()
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder

	b.WriteString(headerStyle.Render("irag browse") + "  " +
		storeBarStyle.Render(fmt.Sprintf("store: %s  k: %d  (tab cycles stores, ctrl+k cycles k)",
			storeLabel(m.sess.StoreID()), session.TopKPresets[m.kIdx])))
	b.WriteString("\n")

	switch m.mode {
	case modeEdit:
		b.WriteString(headerStyle.Render("edit chunk") + dimStyle.Render("  ctrl+s save, esc discard") + "\n")
		b.WriteString(m.editor.View() + "\n")
	case modeAdd:
		b.WriteString(headerStyle.Render("add chunk") + dimStyle.Render("  tab switches fields, ctrl+s save, esc discard") + "\n")
		b.WriteString("document: " + m.docIn.View() + "\n")
		b.WriteString(m.editor.View() + "\n")
	default:
		b.WriteString(queryBoxStyle.Render(m.input.View()) + "\n")
		b.WriteString(resultBoxStyle.Render(m.results.View()) + "\n")
	}

	if m.mode == modeConfirm {
		b.WriteString(promptStyle.Render(m.confirmPrompt) + "\n")
	} else {
		status := m.status
		if m.failed {
			status = statusErrStyle.Render(status)
		} else {
			status = statusOKStyle.Render(status)
		}
		b.WriteString(status + "\n")
		b.WriteString(dimStyle.Render("enter search  ↑/↓ select  ctrl+e edit  ctrl+d delete  ctrl+a add  ctrl+x drop store  ctrl+r reload  esc quit"))
	}
	return b.String()
}

func storeLabel(id string) string {
	if id == "" {
		return defaultStoreLabel
	}
	return id
}

// describeError keeps validation detail verbatim and appends recovery hints
// for embedding model mismatches.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if api.IsModelMismatch(err) {
		msg += " (re-ingest with the matching model or reset the index)"
	}
	return msg
}
