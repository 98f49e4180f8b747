package db

import (
	"context"
	"sort"
	"sync"

	"github.com/mithrel/medic/pkg/api"
)

type memStore struct {
	mu   sync.RWMutex
	byID map[string]api.Exchange
}

// NewMemStore returns a Store that lives only as long as the process.
func NewMemStore() Store {
	return &memStore{byID: make(map[string]api.Exchange)}
}

func (m *memStore) Record(ctx context.Context, e api.Exchange) error {
	if e.ID == "" {
		return ErrConflict
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ID]; ok {
		return ErrConflict
	}
	e.CreatedAt = e.CreatedAt.UTC()
	m.byID[e.ID] = e
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (api.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	if !ok {
		return api.Exchange{}, ErrNotFound
	}
	return e, nil
}

func (m *memStore) FindByHash(ctx context.Context, kind api.Kind, hash string) (api.Exchange, error) {
	for _, e := range m.sorted(kind) {
		if e.Hash == hash {
			return e, nil
		}
	}
	return api.Exchange{}, ErrNotFound
}

func (m *memStore) List(ctx context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error) {
	limit := listLimit(q.Limit)
	cur, hasCursor := parseCursorToken(q.Cursor)
	out := make([]api.Exchange, 0, limit+1)
	for _, e := range m.sorted(q.Kind) {
		if (hasCursor && !cur.before(e)) || !q.InRange(e.CreatedAt) {
			continue
		}
		out = append(out, e)
		if len(out) > limit {
			break
		}
	}
	var page api.Page
	if len(out) > limit {
		out = out[:limit]
		page.Next = encodeCursorToken(out[len(out)-1])
	}
	return out, page, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) Close() error { return nil }

// sorted returns the exchanges of kind (all when empty), newest first.
func (m *memStore) sorted(kind api.Kind) []api.Exchange {
	m.mu.RLock()
	out := make([]api.Exchange, 0, len(m.byID))
	for _, e := range m.byID {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}
