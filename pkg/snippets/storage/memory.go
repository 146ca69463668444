package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"tagbot/taglang/pkg/snippets"
)

// MemoryStorage implements snippets.Storage in a map. Contents are lost on
// exit; it backs tests and the "memory" driver.
type MemoryStorage struct {
	mu       sync.RWMutex
	snippets map[string]*snippets.Snippet
}

var _ snippets.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{snippets: make(map[string]*snippets.Snippet)}
}

// Put inserts or replaces a snippet.
func (m *MemoryStorage) Put(ctx context.Context, sn *snippets.Snippet) (*snippets.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.snippets[sn.Name]; ok {
		cur.Owner = sn.Owner
		cur.Source = sn.Source
		cur.UpdatedAt = sn.UpdatedAt
		return clone(cur), nil
	}

	stored := clone(sn)
	stored.LastUsedAt = nil
	stored.Uses = 0
	m.snippets[sn.Name] = stored
	return clone(stored), nil
}

// Get returns the snippet called name.
func (m *MemoryStorage) Get(ctx context.Context, name string) (*snippets.Snippet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sn, ok := m.snippets[name]
	if !ok {
		return nil, snippets.ErrNotFound
	}
	return clone(sn), nil
}

// Delete removes the snippet called name.
func (m *MemoryStorage) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snippets[name]; !ok {
		return snippets.ErrNotFound
	}
	delete(m.snippets, name)
	return nil
}

// List returns snippets ordered by name.
func (m *MemoryStorage) List(ctx context.Context, opts snippets.ListOptions) ([]*snippets.Snippet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*snippets.Snippet{}
	for _, sn := range m.snippets {
		if opts.Owner == "" || sn.Owner == opts.Owner {
			list = append(list, clone(sn))
		}
	}
	slices.SortFunc(list, func(a, b *snippets.Snippet) int {
		return cmp.Compare(a.Name, b.Name)
	})

	start := min(max(opts.Offset, 0), len(list))
	list = list[start:]
	if opts.Limit > 0 && opts.Limit < len(list) {
		list = list[:opts.Limit]
	}
	return list, nil
}

// Count returns the number of stored snippets.
func (m *MemoryStorage) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.snippets)), nil
}

// Touch records a use of the snippet called name.
func (m *MemoryStorage) Touch(ctx context.Context, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sn, ok := m.snippets[name]
	if !ok {
		return snippets.ErrNotFound
	}
	sn.LastUsedAt = &at
	sn.Uses++
	return nil
}

// DeleteUnusedSince removes snippets inactive since before cutoff.
func (m *MemoryStorage) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for name, sn := range m.snippets {
		if sn.LastActivity().Before(cutoff) {
			delete(m.snippets, name)
			n++
		}
	}
	return n, nil
}

// DeleteOldest keeps the keep most recently active snippets.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int64(len(m.snippets)) <= keep {
		return 0, nil
	}

	all := make([]*snippets.Snippet, 0, len(m.snippets))
	for _, sn := range m.snippets {
		all = append(all, sn)
	}
	// Most recent first; ties broken by name like the SQL backend.
	slices.SortFunc(all, func(a, b *snippets.Snippet) int {
		if c := b.LastActivity().Compare(a.LastActivity()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	var n int64
	for _, sn := range all[max(keep, 0):] {
		delete(m.snippets, sn.Name)
		n++
	}
	return n, nil
}

// Ping always succeeds.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close discards all snippets.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.snippets)
	return nil
}

func clone(sn *snippets.Snippet) *snippets.Snippet {
	c := *sn
	if sn.LastUsedAt != nil {
		t := *sn.LastUsedAt
		c.LastUsedAt = &t
	}
	return &c
}
