// Package admin — service.go: аутентификация владельцев и проверка сессий.
package admin

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
)

// Owners — кто может входить в админку (OWNER_IDS).
type Owners interface {
	IsOwner(userID int64) bool
}

// Service управляет сессиями администраторов.
type Service struct {
	store        Store
	owners       Owners
	passwordHash string
	now          func() time.Time
}

// NewService создаёт сервис админки.
func NewService(store Store, owners Owners, passwordHash string) *Service {
	return &Service{store: store, owners: owners, passwordHash: passwordHash, now: time.Now}
}

// Login проверяет пароль. 3 неудачные попытки за час — блокировка на час.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if !s.owners.IsOwner(userID) {
		return common.ErrNotAdmin
	}
	now := s.now()

	attempts, err := s.store.FailedAttemptsSince(ctx, userID, now.Add(-AttemptWindow))
	if err != nil {
		return err
	}
	if attempts >= MaxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := s.passwordHash != "" && verifyArgon2id(password, s.passwordHash)
	if err := s.store.LogAttempt(ctx, userID, match, now); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("не удалось записать попытку входа")
	}
	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль администратора")
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:          userID,
		Token:           generateSecureToken(),
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("Администратор вошёл")
	return nil
}

// Logout закрывает сессии пользователя.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.DeactivateSessions(ctx, userID)
}

// Authorize проверяет право на админ-команду: владелец и живая сессия.
func (s *Service) Authorize(ctx context.Context, userID int64) error {
	if !s.owners.IsOwner(userID) {
		return common.ErrNotAdmin
	}
	_, err := s.store.ActiveSession(ctx, userID, s.now())
	if errors.Is(err, common.ErrSessionExpired) {
		return common.ErrSessionExpired
	}
	return err
}

// Cleanup удаляет истёкшие сессии (cron).
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}
