package catalog

import (
	"context"
	"math/rand/v2"
	"sync"

	"serotonyl.ru/catch-bot/internal/common"
)

// MemoryStore — каталог в памяти (STORAGE_DRIVER=memory и тесты).
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore создаёт каталог из готового списка.
func NewMemoryStore(items ...Item) *MemoryStore {
	return &MemoryStore{items: append([]Item(nil), items...)}
}

// Add добавляет персонажей (используется при посеве и в тестах).
func (s *MemoryStore) Add(items ...Item) {
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			found := it
			return &found, nil
		}
	}
	return nil, common.ErrItemNotFound
}

func (s *MemoryStore) SampleByRarity(_ context.Context, rarity string, n int) ([]Item, error) {
	s.mu.RLock()
	var pool []Item
	for _, it := range s.items {
		if it.Rarity == rarity {
			pool = append(pool, it)
		}
	}
	s.mu.RUnlock()

	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]Item, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out, nil
}
