// Package stats — счётчики поимок по чатам и игрокам, команда /top.
package stats

import (
	"context"

	"serotonyl.ru/catch-bot/internal/features/users"
)

// Entry — строка рейтинга чата.
type Entry struct {
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	Count     int64  `db:"count"`
}

// DisplayName — имя для рейтинга.
func (e Entry) DisplayName() string {
	return users.Profile{ID: e.UserID, Username: e.Username, FirstName: e.FirstName}.DisplayName()
}

// Store — хранилище счётчиков. Инкременты идемпотентными не являются
// и не повторяются: счётчики вспомогательные.
type Store interface {
	// IncrementCaptureCount — +1 игроку в чате и +1 в общем зачёте.
	IncrementCaptureCount(ctx context.Context, chatID int64, p users.Profile) error
	// IncrementChannelCaptureCount — +1 чату.
	IncrementChannelCaptureCount(ctx context.Context, chatID int64, title string) error
	// TopInChannel — лучшие игроки чата по числу поимок.
	TopInChannel(ctx context.Context, chatID int64, limit int) ([]Entry, error)
}
