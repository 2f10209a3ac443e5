package settings

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore — настройки в памяти.
type MemoryStore struct {
	mu       sync.RWMutex
	settings *Settings
	chats    map[int64]int
	err      error
}

// NewMemoryStore создаёт пустое хранилище; до EnsureDefaults или Set Load вернёт нули.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: &Settings{ShopRarities: map[string]int{}}, chats: make(map[int64]int)}
}

// Set заменяет глобальные настройки.
func (m *MemoryStore) Set(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	cp.ShopRarities = maps.Clone(s.ShopRarities)
	m.settings = &cp
}

// SetChannelFrequency задаёт переопределение частоты для чата.
func (m *MemoryStore) SetChannelFrequency(chatID int64, freq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chatID] = freq
}

// FailWith заставляет все чтения возвращать err (nil — вернуть как было).
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Load(context.Context) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.settings
	cp.ShopRarities = maps.Clone(m.settings.ShopRarities)
	return &cp, nil
}

func (m *MemoryStore) ChannelFrequency(_ context.Context, chatID int64) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, false, m.err
	}
	f, ok := m.chats[chatID]
	return f, ok, nil
}

func (m *MemoryStore) EnsureDefaults(_ context.Context, d Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.GlobalFrequency == 0 {
		cp := d
		cp.ShopRarities = maps.Clone(d.ShopRarities)
		if cp.ShopRarities == nil {
			cp.ShopRarities = map[string]int{}
		}
		m.settings = &cp
	}
	return nil
}
