package stats

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/features/users"
)

// TopSize — сколько строк показывает /top.
const TopSize = 10

// Service обновляет счётчики после поимки. Ошибки не возвращаются:
// поимка уже записана в коллекцию, счётчики её не откатывают.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService создаёт сервис статистики.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// RecordCapture увеличивает счётчики игрока и чата.
func (s *Service) RecordCapture(ctx context.Context, chatID int64, chatTitle string, winner users.Profile) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := log.WithFields(log.Fields{"chat_id": chatID, "user_id": winner.ID, "component": "stats"})
	if err := s.store.IncrementCaptureCount(ctx, chatID, winner); err != nil {
		logger.WithError(err).Warn("не удалось обновить счётчик игрока")
	}
	if err := s.store.IncrementChannelCaptureCount(ctx, chatID, chatTitle); err != nil {
		logger.WithError(err).Warn("не удалось обновить счётчик чата")
	}
}

// Top возвращает рейтинг чата.
func (s *Service) Top(ctx context.Context, chatID int64) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.TopInChannel(ctx, chatID, TopSize)
}
