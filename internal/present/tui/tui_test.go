package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/medic/pkg/api"
)

func makeExchanges(n int) []api.Exchange {
	now := time.Now().UTC().Truncate(time.Second)
	out := make([]api.Exchange, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.Exchange{
			ID:        fmt.Sprintf("x%02d", i),
			Kind:      api.KindChat,
			Title:     "t",
			Reply:     "- ok",
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

type fakeStore struct {
	deleted []string
	pages   int
}

func (f *fakeStore) List(_ context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error) {
	f.pages++
	return makeExchanges(3), api.Page{}, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestHistoryNeedsMore(t *testing.T) {
	m := newHistoryModel(context.Background(), &fakeStore{}, api.ListQuery{}, makeExchanges(10), api.Page{Next: "c"}, true)
	m.table.SetHeight(10)

	m.table.SetCursor(1)
	require.False(t, m.needsMore())

	m.table.SetCursor(8)
	require.True(t, m.needsMore())

	m.loading = true
	require.False(t, m.needsMore())

	m.loading = false
	m.next = ""
	require.False(t, m.needsMore())
}

func TestHistoryFetchAppends(t *testing.T) {
	store := &fakeStore{}
	m := newHistoryModel(context.Background(), store, api.ListQuery{Limit: 10}, makeExchanges(10), api.Page{Next: "c"}, true)
	m.table.SetHeight(10)
	m.table.SetCursor(9)

	m, cmd := m.fetchMore()
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	next, _ := m.Update(cmd())
	hm := next.(historyModel)
	assert.False(t, hm.loading)
	assert.Len(t, hm.items, 13)
	assert.Empty(t, hm.next)
	assert.Equal(t, 1, store.pages)
}

func TestHistoryDelete(t *testing.T) {
	store := &fakeStore{}
	m := newHistoryModel(context.Background(), store, api.ListQuery{}, makeExchanges(3), api.Page{}, true)
	m.table.SetCursor(1)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	next, _ = next.Update(cmd())
	hm := next.(historyModel)
	assert.Equal(t, []string{"x01"}, store.deleted)
	require.Len(t, hm.items, 2)
	assert.Equal(t, "x02", hm.items[1].ID)
	assert.Contains(t, hm.status, "Deleted x01")
}

func TestHistoryShowModal(t *testing.T) {
	m := newHistoryModel(context.Background(), &fakeStore{}, api.ListQuery{}, makeExchanges(2), api.Page{}, false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	hm := next.(historyModel)
	require.NotNil(t, hm.modal)
	assert.Contains(t, hm.modal.content, "• ok")

	next, _ = hm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, next.(historyModel).modal)
}

func TestChatSendAndReply(t *testing.T) {
	var seen []api.Message
	ask := func(_ context.Context, msgs []api.Message) (string, error) {
		seen = msgs
		return "## Answer\n- **0.3 mg** IM", nil
	}
	m := newChatModel(context.Background(), ask, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(chatModel)

	m, cmd := m.send("epi dose?")
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())

	reply := askCmd(m.ctx, m.ask, m.msgs)().(replyMsg)
	require.NoError(t, reply.err)
	next, _ = m.Update(reply)
	m = next.(chatModel)

	assert.False(t, m.waiting)
	require.Len(t, m.msgs, 2)
	assert.Equal(t, api.RoleAssistant, m.msgs[1].Role)
	assert.Equal(t, []api.Message{{Role: api.RoleUser, Content: "epi dose?"}}, seen)
	assert.Contains(t, m.vp.View(), "Answer")
}

func TestChatErrorDropsQuestion(t *testing.T) {
	m := newChatModel(context.Background(), nil, nil)
	m, _ = m.send("q")
	next, _ := m.Update(replyMsg{err: errors.New("offline")})
	m = next.(chatModel)
	assert.Empty(t, m.msgs)
	assert.Contains(t, m.vp.View(), "offline")
}

func TestChatIgnoresBlankAndBusy(t *testing.T) {
	m := newChatModel(context.Background(), nil, nil)
	_, cmd := m.send("   ")
	assert.Nil(t, cmd)

	m.waiting = true
	_, cmd = m.send("q")
	assert.Nil(t, cmd)
}

func TestChatSuggestionFromHelp(t *testing.T) {
	m := newChatModel(context.Background(), nil, []string{"first", "second"})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(chatModel)
	require.NotNil(t, m.help)
	assert.True(t, strings.Contains(m.help.content, "2. second"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m = next.(chatModel)
	assert.NotNil(t, cmd)
	assert.Nil(t, m.help)
	require.Len(t, m.msgs, 1)
	assert.Equal(t, "second", m.msgs[0].Content)
}
