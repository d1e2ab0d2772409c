package ui

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tday/internal/logging"
	"tday/internal/storage"
)

// Store is the persistence the controller drives.
type Store interface {
	LoadPage(ctx context.Context) ([]storage.Entry, error)
	Insert(ctx context.Context, description string) (int64, error)
	Update(ctx context.Context, e storage.Entry) error
	Delete(ctx context.Context, id int64) error
	ArchiveCompleted(ctx context.Context) (int64, error)
}

// Page is the window of entries shown in the list view.
type Page struct {
	Entries   []storage.Entry
	Selection int
}

func (p Page) Len() int { return len(p.Entries) }

func (p Page) selected() (storage.Entry, bool) {
	if p.Selection < 0 || p.Selection >= len(p.Entries) {
		return storage.Entry{}, false
	}
	return p.Entries[p.Selection], true
}

func (p *Page) up() {
	if len(p.Entries) == 0 {
		return
	}
	p.Selection--
	if p.Selection < 0 {
		p.Selection = len(p.Entries) - 1
	}
}

func (p *Page) down() {
	if len(p.Entries) == 0 {
		return
	}
	p.Selection++
	if p.Selection > len(p.Entries)-1 {
		p.Selection = 0
	}
}

func (p *Page) clamp() {
	if p.Selection > len(p.Entries)-1 {
		p.Selection = len(p.Entries) - 1
	}
	if p.Selection < 0 {
		p.Selection = 0
	}
}

// view is the active screen. Only editView carries data: the entry being
// edited, as it was when editing started.
type view interface{ viewName() string }

type (
	listView struct{}
	newView  struct{}
	editView struct{ target storage.Entry }
)

func (listView) viewName() string { return "list" }
func (newView) viewName() string  { return "new" }
func (editView) viewName() string { return "edit" }

// Model is the tday controller. It satisfies tea.Model; Run drives it over a
// raw byte stream.
type Model struct {
	// A Model lives for exactly one session; ctx is that session's context.
	ctx   context.Context
	store Store
	log   *slog.Logger
	keys  listKeyMap

	page    Page
	view    view
	newBuf  Buffer
	editBuf Buffer
	reload  bool
}

var _ tea.Model = (*Model)(nil)

func New(ctx context.Context, store Store, log *slog.Logger) *Model {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Model{
		ctx:    ctx,
		store:  store,
		log:    log,
		keys:   defaultListKeys(),
		view:   listView{},
		reload: true,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Page returns the entries currently shown.
func (m *Model) Page() Page { return m.page }

// ViewName is "list", "new" or "edit".
func (m *Model) ViewName() string { return m.view.viewName() }

// Refresh reloads the page from the store when a write has happened since the
// last load. A failed load leaves the page empty.
func (m *Model) Refresh() {
	if !m.reload {
		return
	}
	m.reload = false
	entries, err := m.store.LoadPage(m.ctx)
	if err != nil {
		m.fail(err)
		entries = nil
	}
	if len(entries) > storage.PageSize {
		entries = entries[:storage.PageSize]
	}
	m.page.Entries = entries
	m.page.clamp()
	m.log.Debug("reload page", "entries", len(entries), "selection", m.page.Selection)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.log.Debug("key", "view", m.view.viewName(), "key", keyMsg.String())
	switch v := m.view.(type) {
	case listView:
		return m.updateList(keyMsg)
	case newView:
		return m.updateNew(keyMsg)
	case editView:
		return m.updateEdit(v, keyMsg)
	}
	return m, nil
}

func (m *Model) View() string {
	switch v := m.view.(type) {
	case newView:
		return renderNew(&m.newBuf)
	case editView:
		return renderEdit(v.target, &m.editBuf)
	default:
		return renderList(m.page)
	}
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.page.up()
	case key.Matches(msg, m.keys.Down):
		m.page.down()
	case key.Matches(msg, m.keys.Toggle):
		e, ok := m.page.selected()
		if !ok {
			return m, nil
		}
		e.Completed = !e.Completed
		m.write(m.store.Update(m.ctx, e))
	case key.Matches(msg, m.keys.New):
		m.view = newView{}
	case key.Matches(msg, m.keys.Edit):
		e, ok := m.page.selected()
		if !ok {
			return m, nil
		}
		m.editBuf.Set(e.Description)
		m.view = editView{target: e}
	case key.Matches(msg, m.keys.Delete):
		e, ok := m.page.selected()
		if !ok {
			return m, nil
		}
		m.write(m.store.Delete(m.ctx, e.ID))
		m.page.Selection = max(m.page.Selection-1, 0)
	case key.Matches(msg, m.keys.Archive):
		n, err := m.store.ArchiveCompleted(m.ctx)
		m.write(err)
		if err == nil {
			m.log.Debug("archived completed entries", "count", n)
		}
	}
	return m, nil
}

func (m *Model) updateNew(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.newBuf.Len() > 0 {
			_, err := m.store.Insert(m.ctx, m.newBuf.String())
			if err != nil {
				m.fail(err)
			}
		}
		m.newBuf.Reset()
		m.view = listView{}
		m.reload = true
	case tea.KeyEsc:
		// The draft survives until it is saved.
		m.view = listView{}
	default:
		editBuffer(&m.newBuf, msg)
	}
	return m, nil
}

func (m *Model) updateEdit(v editView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.editBuf.Len() == 0 {
			return m, nil
		}
		e := v.target
		e.Description = m.editBuf.String()
		m.write(m.store.Update(m.ctx, e))
		m.editBuf.Reset()
		m.view = listView{}
	case tea.KeyEsc:
		m.editBuf.Reset()
		m.view = listView{}
	default:
		editBuffer(&m.editBuf, msg)
	}
	return m, nil
}

func editBuffer(b *Buffer, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		b.Backspace()
	case tea.KeyLeft:
		b.Left()
	case tea.KeyRight:
		b.Right()
	default:
		if c, ok := entryByte(msg); ok {
			b.Insert(c)
		}
	}
}

// write records the outcome of a store mutation: the page is reloaded either
// way and a failure is reported.
func (m *Model) write(err error) {
	m.reload = true
	if err != nil {
		m.fail(err)
	}
}

func (m *Model) fail(err error) {
	ReportError(m.log, "store", err)
}

// ReportError logs err as the one-line diagnostic "[error] <context>: <message>".
// Store errors name their own context; anything else is reported under
// fallback.
func ReportError(log *slog.Logger, fallback string, err error) {
	var opErr *storage.OpError
	if errors.As(err, &opErr) {
		log.Error(opErr.Op, logging.ErrKey, opErr.Err)
		return
	}
	log.Error(fallback, logging.ErrKey, err)
}

// Run drives m until it quits or in is exhausted: reload, render and flush,
// read up to three bytes, dispatch, clear the input buffer.
func Run(in io.Reader, out io.Writer, m *Model) error {
	w := bufio.NewWriter(out)
	input := make([]byte, 3)
	for {
		m.Refresh()
		if _, err := w.WriteString(m.View()); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}

		n, err := in.Read(input)
		if n > 0 {
			if msg, ok := DecodeKey(input[:n]); ok {
				if _, cmd := m.Update(msg); isQuit(cmd) {
					return nil
				}
			}
		}
		clear(input)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
