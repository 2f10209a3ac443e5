// Package admin — вход владельцев бота по паролю и операционные команды
// (/shoprefresh, /give, /take). models.go описывает сессии и попытки входа.
package admin

import (
	"context"
	"time"
)

// SessionTTL — срок жизни сессии.
const SessionTTL = 24 * time.Hour

// Лимит неудачных попыток входа.
const (
	MaxFailedAttempts = 3
	AttemptWindow     = time.Hour
)

// Session — активная сессия администратора.
type Session struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	Token           string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
}

// Store — хранилище сессий и попыток входа.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	// ActiveSession возвращает действующую сессию или common.ErrSessionExpired.
	ActiveSession(ctx context.Context, userID int64, now time.Time) (*Session, error)
	DeactivateSessions(ctx context.Context, userID int64) error
	LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error
	FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error)
	// DeleteExpired удаляет истёкшие сессии и старые попытки.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
