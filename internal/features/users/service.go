// Package users — service.go: бизнес-логика леджера поверх Store.
// Каждое обращение к хранилищу ограничено таймаутом, временные сбои
// повторяются один раз (common.RetryTransient).
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/metrics"
)

// Service управляет профилями, кошельками и коллекциями.
type Service struct {
	store   Store
	timeout time.Duration
	pause   time.Duration
}

// NewService создаёт сервис пользователей.
func NewService(store Store, timeout, retryPause time.Duration) *Service {
	return &Service{store: store, timeout: timeout, pause: retryPause}
}

func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// AppendInventory записывает пойманного персонажа с одним повтором.
func (s *Service) AppendInventory(ctx context.Context, p Profile, item catalog.Item) error {
	_, err := common.RetryTransient(ctx, s.pause, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := s.bounded(ctx)
		defer cancel()
		err := s.store.AppendInventory(ctx, p, item)
		if common.IsTransient(err) {
			metrics.StoreRetries.WithLabelValues("append_inventory").Inc()
		}
		return struct{}{}, err
	})
	return err
}

// Touch обновляет имя известного пользователя. Ошибка только логируется.
func (s *Service) Touch(ctx context.Context, p Profile) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		log.WithError(err).WithField("user_id", p.ID).Warn("UpdateProfile failed")
	}
}

// Get возвращает пользователя.
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return common.RetryTransient(ctx, s.pause, func(ctx context.Context) (*User, error) {
		ctx, cancel := s.bounded(ctx)
		defer cancel()
		return s.store.Get(ctx, userID)
	})
}

// Balance возвращает баланс; у неизвестного пользователя он нулевой.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	u, err := s.Get(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return u.Wallet, nil
}

// Harem собирает сводку коллекции.
func (s *Service) Harem(ctx context.Context, userID int64) (*Harem, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(u), nil
}

func summarize(u *User) *Harem {
	h := &Harem{Total: len(u.Inventory)}
	seen := make(map[string]bool, len(u.Inventory))
	byRarity := make(map[string]int)
	for i, it := range u.Inventory {
		if it.ID == u.FavoriteID && h.Favorite == nil {
			h.Favorite = &u.Inventory[i]
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		h.Unique++
		byRarity[it.Rarity]++
	}
	for _, r := range catalog.Rarities {
		if n := byRarity[r]; n > 0 {
			h.ByRarity = append(h.ByRarity, RarityCount{Rarity: r, Count: n})
			delete(byRarity, r)
		}
	}
	// редкости, которых нет в списке (старые данные), в конец
	for r, n := range byRarity {
		h.ByRarity = append(h.ByRarity, RarityCount{Rarity: r, Count: n})
	}
	return h
}

// SetFavorite выбирает любимого персонажа и возвращает его.
func (s *Service) SetFavorite(ctx context.Context, userID int64, itemID string) (*catalog.Item, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, common.ErrItemNotFound
	}
	u, err := s.Get(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return nil, common.ErrNotOwned
	}
	if err != nil {
		return nil, err
	}
	var item *catalog.Item
	for i := range u.Inventory {
		if u.Inventory[i].ID == itemID {
			item = &u.Inventory[i]
			break
		}
	}
	if item == nil {
		return nil, common.ErrNotOwned
	}

	_, err = common.RetryTransient(ctx, s.pause, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := s.bounded(ctx)
		defer cancel()
		return struct{}{}, s.store.SetFavorite(ctx, userID, itemID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Give начисляет монеты (админ-команда).
func (s *Service) Give(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	// Credit не идемпотентен: повторять после таймаута нельзя, эффект неизвестен.
	if err := s.store.Credit(ctx, userID, amount, TxAdminGive); err != nil {
		return fmt.Errorf("начисление %d пользователю %d: %w", amount, userID, err)
	}
	log.WithFields(log.Fields{"user_id": userID, "amount": amount}).Info("Начислены монеты")
	return nil
}

// Take списывает монеты, если их хватает (админ-команда).
func (s *Service) Take(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	ok, err := s.store.ConditionalDebit(ctx, userID, amount, TxAdminTake)
	if err != nil {
		return fmt.Errorf("списание %d у пользователя %d: %w", amount, userID, err)
	}
	if !ok {
		return common.ErrInsufficientBalance
	}
	log.WithFields(log.Fields{"user_id": userID, "amount": amount}).Info("Списаны монеты")
	return nil
}

// FindOwners возвращает страницу владельцев персонажа. Номер страницы
// приводится к допустимому диапазону.
func (s *Service) FindOwners(ctx context.Context, name string, page int) (*OwnersPage, error) {
	name = strings.TrimSpace(name)
	if page < 1 {
		page = 1
	}
	load := func(page int) (*OwnersPage, error) {
		return common.RetryTransient(ctx, s.pause, func(ctx context.Context) (*OwnersPage, error) {
			ctx, cancel := s.bounded(ctx)
			defer cancel()
			owners, total, err := s.store.FindOwners(ctx, name, (page-1)*OwnersPerPage, OwnersPerPage)
			if err != nil {
				return nil, err
			}
			return &OwnersPage{
				Name:   name,
				Page:   page,
				Pages:  (total + OwnersPerPage - 1) / OwnersPerPage,
				Total:  total,
				Owners: owners,
			}, nil
		})
	}

	res, err := load(page)
	if err != nil {
		return nil, err
	}
	if res.Total > 0 && page > res.Pages {
		return load(res.Pages)
	}
	return res, nil
}
