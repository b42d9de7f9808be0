// Package state persists the set of feed-entry identifiers already
// evaluated, so entries are never redelivered across runs. The set is a
// plain JSON array in an external document; it is loaded once per run and
// replaced wholesale when it changed.
package state

import "context"

// Store is the narrow repository interface the feed driver depends on.
// Implementations never retry internally; a failed save surfaces to the
// driver and the next scheduled run re-evaluates the feed.
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Save(ctx context.Context, seen map[string]struct{}) error
}

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	set   map[string]struct{}
	saves int
}

func NewMemory(initial ...string) *Memory {
	m := &Memory{set: make(map[string]struct{})}
	for _, id := range initial {
		m.set[id] = struct{}{}
	}
	return m
}

func (m *Memory) Load(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(m.set))
	for k := range m.set {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *Memory) Save(ctx context.Context, seen map[string]struct{}) error {
	out := make(map[string]struct{}, len(seen))
	for k := range seen {
		out[k] = struct{}{}
	}
	m.set = out
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *Memory) Saves() int { return m.saves }

// Contains reports membership in the stored set.
func (m *Memory) Contains(id string) bool {
	_, ok := m.set[id]
	return ok
}
