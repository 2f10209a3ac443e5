package shop

import (
	"context"
	"sort"
	"sync"

	"serotonyl.ru/catch-bot/internal/common"
)

// MemoryStore — набор лотов в памяти; Replace подменяет срез целиком.
type MemoryStore struct {
	mu       sync.RWMutex
	listings []Listing
}

// NewMemoryStore создаёт пустой магазин.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Replace(_ context.Context, listings []Listing) error {
	next := append([]Listing(nil), listings...)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Price < next[j].Price })
	m.mu.Lock()
	m.listings = next
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.listings = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Listing(nil), m.listings...), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listings {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, common.ErrListingGone
}
