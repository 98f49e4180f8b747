package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mithrel/medic/internal/present/format"
	"github.com/mithrel/medic/pkg/api"
)

// HistoryStore is the part of db.Store the browser needs.
type HistoryStore interface {
	List(ctx context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error)
	Delete(ctx context.Context, id string) error
}

// BrowseHistory opens an interactive table of recorded exchanges. Further
// pages load as the cursor nears the end.
func BrowseHistory(ctx context.Context, store HistoryStore, q api.ListQuery, headers bool) error {
	start := time.Now()
	items, page, err := store.List(ctx, q)
	if err != nil {
		return err
	}
	m := newHistoryModel(ctx, store, q, items, page, headers)
	m.status = fmt.Sprintf("Loaded %d", len(items))
	m.lastDuration = time.Since(start).Round(time.Millisecond)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type historyModel struct {
	ctx          context.Context
	store        HistoryStore
	query        api.ListQuery
	table        table.Model
	items        []api.Exchange
	next         string
	loading      bool
	headers      bool
	width        int
	height       int
	status       string
	lastDuration time.Duration
	modal        *textModal
}

func newHistoryModel(ctx context.Context, store HistoryStore, q api.ListQuery, items []api.Exchange, page api.Page, headers bool) historyModel {
	m := historyModel{ctx: ctx, store: store, query: q, items: items, next: page.Next, headers: headers}
	m.table = table.New(table.WithColumns(m.columnsFor(12, 10, 14, 40)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
	return m
}

type deleteResultMsg struct {
	idx int
	id  string
	err error
	dur time.Duration
}

type pageResultMsg struct {
	items []api.Exchange
	page  api.Page
	err   error
	dur   time.Duration
}

func deleteCmd(ctx context.Context, store HistoryStore, id string, idx int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := store.Delete(ctx, id)
		return deleteResultMsg{idx: idx, id: id, err: err, dur: time.Since(start)}
	}
}

func pageCmd(ctx context.Context, store HistoryStore, q api.ListQuery) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		items, page, err := store.List(ctx, q)
		return pageResultMsg{items: items, page: page, err: err, dur: time.Since(start)}
	}
}

func (m *historyModel) updateRows() {
	rows := make([]table.Row, 0, len(m.items))
	for _, e := range m.items {
		rows = append(rows, table.Row{e.ID, string(e.Kind), humanize.Time(e.CreatedAt), e.Title})
	}
	m.table.SetRows(rows)
}

// needsMore reports whether the cursor is close enough to the end of the
// loaded rows to fetch the next page.
func (m historyModel) needsMore() bool {
	if m.next == "" || m.loading {
		return false
	}
	buffer := max(1, m.table.Height()/5)
	return m.table.Cursor() >= len(m.items)-1-buffer
}

func (m historyModel) fetchMore() (historyModel, tea.Cmd) {
	if !m.needsMore() {
		return m, nil
	}
	m.loading = true
	q := m.query
	q.Cursor = m.next
	return m, pageCmd(m.ctx, m.store, q)
}

func (m historyModel) Init() tea.Cmd { return nil }

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		if msg.idx >= 0 && msg.idx < len(m.items) && m.items[msg.idx].ID == msg.id {
			m.items = append(m.items[:msg.idx], m.items[msg.idx+1:]...)
		}
		m.updateRows()
		m.table.SetCursor(min(max(msg.idx, 0), max(len(m.items)-1, 0)))
		m.status = fmt.Sprintf("Deleted %s", msg.id)
		return m, nil
	case pageResultMsg:
		m.loading = false
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
			return m, nil
		}
		m.items = append(m.items, msg.items...)
		m.next = msg.page.Next
		m.updateRows()
		m.status = fmt.Sprintf("Loaded %d", len(msg.items))
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		if m.modal != nil {
			m.modal.resizeForTerm(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if m.modal != nil {
			switch msg.String() {
			case "q", "esc", "enter":
				m.modal = nil
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, m.modal.update(msg)
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.items) {
				m.modal = newTextModal("", m.width, m.height)
				var buf bytes.Buffer
				if err := format.WritePrettyExchange(&buf, m.items[idx], m.modal.innerWidth()); err != nil {
					buf.WriteString(err.Error())
				}
				m.modal.setContent(buf.String())
			}
			return m, nil
		case "d":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.items) {
				sel := m.items[idx]
				m.status = fmt.Sprintf("Deleting %s…", sel.ID)
				return m, deleteCmd(m.ctx, m.store, sel.ID, idx)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m, more := m.fetchMore()
	return m, tea.Batch(cmd, more)
}

func (m historyModel) renderFooter() string {
	left := "↑/↓ to navigate • enter=show • d=delete • q=exit"

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration)
		} else {
			right = m.status + " • "
		}
	}
	more := ""
	if m.next != "" {
		more = "+"
	}
	right += fmt.Sprintf("%d%s exchanges ", len(m.items), more)

	space := max(1, m.table.Width()-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", space) + right
}

func (m historyModel) View() string {
	if len(m.items) == 0 {
		return "(no history) \n"
	}
	base := m.table.View() + "\n" + m.renderFooter() + "\n"
	if m.modal != nil {
		return renderOverlay(base, m.modal.view(), m.width, m.height, m.modal.width, m.modal.height)
	}
	return base
}

func (m *historyModel) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 4
	if avail < 40 {
		return
	}
	idW := 20
	if avail < 80 {
		idW = 8
	}
	kindW, createdW := 10, 14
	titleW := max(8, avail-idW-kindW-createdW)
	m.table.SetColumns(m.columnsFor(idW, kindW, createdW, titleW))
}

func (m *historyModel) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("124")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on the headers flag.
func (m *historyModel) columnsFor(idW, kindW, createdW, titleW int) []table.Column {
	titles := []string{"ID", "Kind", "Created", "Title"}
	if !m.headers {
		titles = []string{"", "", "", ""}
	}
	return []table.Column{
		{Title: titles[0], Width: idW},
		{Title: titles[1], Width: kindW},
		{Title: titles[2], Width: createdW},
		{Title: titles[3], Width: titleW},
	}
}
