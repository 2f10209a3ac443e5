package stats

import (
	"context"
	"sort"
	"sync"

	"serotonyl.ru/catch-bot/internal/features/users"
)

type chatUser struct {
	chatID int64
	userID int64
}

// MemoryStore — счётчики в памяти.
type MemoryStore struct {
	mu       sync.Mutex
	perChat  map[chatUser]*Entry
	perUser  map[int64]int64
	perGroup map[int64]int64
	titles   map[int64]string
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		perChat:  make(map[chatUser]*Entry),
		perUser:  make(map[int64]int64),
		perGroup: make(map[int64]int64),
		titles:   make(map[int64]string),
	}
}

func (s *MemoryStore) IncrementCaptureCount(_ context.Context, chatID int64, p users.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chatUser{chatID, p.ID}
	e, ok := s.perChat[key]
	if !ok {
		e = &Entry{UserID: p.ID}
		s.perChat[key] = e
	}
	if p.Username != "" {
		e.Username = p.Username
	}
	if p.FirstName != "" {
		e.FirstName = p.FirstName
	}
	e.Count++
	s.perUser[p.ID]++
	return nil
}

func (s *MemoryStore) IncrementChannelCaptureCount(_ context.Context, chatID int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perGroup[chatID]++
	if title != "" {
		s.titles[chatID] = title
	}
	return nil
}

func (s *MemoryStore) TopInChannel(_ context.Context, chatID int64, limit int) ([]Entry, error) {
	s.mu.Lock()
	var out []Entry
	for k, e := range s.perChat {
		if k.chatID == chatID {
			out = append(out, *e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UserTotal — общий зачёт игрока.
func (s *MemoryStore) UserTotal(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perUser[userID]
}

// ChannelTotal — число поимок в чате.
func (s *MemoryStore) ChannelTotal(chatID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perGroup[chatID]
}
