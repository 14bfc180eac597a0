package catalog

import (
	"context"

	"github.com/samber/lo"
)

// MemoryStore serves a fixed dataset when a database is not configured. It is
// never written after construction.
type MemoryStore struct {
	items []Item
	byID  map[string]int
}

// NewMemoryStore constructs a store over items, keeping their order. Later
// duplicates of an id are dropped.
func NewMemoryStore(items []Item) *MemoryStore {
	unique := lo.UniqBy(items, func(item Item) string { return item.ID })
	byID := make(map[string]int, len(unique))
	for i, item := range unique {
		byID[item.ID] = i
	}
	return &MemoryStore{items: unique, byID: byID}
}

// List returns the items matching filter.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Item, error) {
	f := filter.normalized()
	return lo.Filter(s.items, func(item Item, _ int) bool { return f.matches(item) }), nil
}

// Get retrieves an item by id.
func (s *MemoryStore) Get(_ context.Context, id string) (Item, error) {
	i, ok := s.byID[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return s.items[i], nil
}
