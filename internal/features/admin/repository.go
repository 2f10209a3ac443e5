// Package admin — repository.go работает с таблицами admin_sessions и admin_login_attempts.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/db/postgres"
)

// Repository работает с админ-таблицами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession создаёт новую сессию администратора.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO admin_sessions (user_id, session_token, authenticated_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, s.UserID, s.Token, s.AuthenticatedAt, s.ExpiresAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", postgres.Classify(err))
	}
	return nil
}

// ActiveSession возвращает активную сессию пользователя.
func (r *Repository) ActiveSession(ctx context.Context, userID int64, now time.Time) (*Session, error) {
	query := `
		SELECT id, user_id, session_token, authenticated_at, expires_at
		FROM admin_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY authenticated_at DESC
		LIMIT 1
	`
	var s Session
	err := r.db.QueryRow(ctx, query, userID, now).Scan(
		&s.ID, &s.UserID, &s.Token, &s.AuthenticatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сессии: %w", postgres.Classify(err))
	}
	return &s, nil
}

// DeactivateSessions закрывает все сессии пользователя.
func (r *Repository) DeactivateSessions(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE admin_sessions SET is_active = FALSE WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка закрытия сессий: %w", postgres.Classify(err))
	}
	return nil
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_login_attempts (user_id, success, attempt_time) VALUES ($1, $2, $3)`,
		userID, success, at)
	if err != nil {
		return fmt.Errorf("ошибка записи попытки входа: %w", postgres.Classify(err))
	}
	return nil
}

// FailedAttemptsSince возвращает количество неудачных попыток с момента since.
func (r *Repository) FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time >= $2
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта попыток: %w", postgres.Classify(err))
	}
	return count, nil
}

// DeleteExpired чистит истёкшие сессии и попытки старше окна блокировки.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= $1 OR is_active = FALSE`, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки сессий: %w", postgres.Classify(err))
	}
	if _, err := r.db.Exec(ctx,
		`DELETE FROM admin_login_attempts WHERE attempt_time < $1`, now.Add(-AttemptWindow)); err != nil {
		return 0, fmt.Errorf("ошибка очистки попыток: %w", postgres.Classify(err))
	}
	return tag.RowsAffected(), nil
}
