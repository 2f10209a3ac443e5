package admin

import (
	"context"
	"sync"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
)

type attempt struct {
	userID  int64
	success bool
	at      time.Time
}

// MemoryStore — сессии и попытки в памяти процесса.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*Session // одна активная сессия на пользователя
	attempts []attempt
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

func (m *MemoryStore) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.sessions[s.UserID] = &cp
	return nil
}

func (m *MemoryStore) ActiveSession(_ context.Context, userID int64, now time.Time) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || !now.Before(s.ExpiresAt) {
		return nil, common.ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) DeactivateSessions(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LogAttempt(_ context.Context, userID int64, success bool, at time.Time) error {
	m.mu.Lock()
	m.attempts = append(m.attempts, attempt{userID: userID, success: success, at: at})
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) FailedAttemptsSince(_ context.Context, userID int64, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.userID == userID && !a.success && !a.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for uid, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, uid)
			removed++
		}
	}
	cutoff := now.Add(-AttemptWindow)
	kept := m.attempts[:0]
	for _, a := range m.attempts {
		if !a.at.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	m.attempts = kept
	return removed, nil
}
