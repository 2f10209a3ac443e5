// Package users — профили игроков, кошелёк и коллекция пойманных персонажей.
// models.go описывает структуры и контракт хранилища (леджера).
package users

import (
	"context"
	"time"

	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// Типы движений по кошельку (wallet_transactions.kind).
const (
	TxPurchase  = "purchase"
	TxAdminGive = "admin_give"
	TxAdminTake = "admin_take"
)

// Способ получения персонажа (user_characters.acquired_via).
const (
	AcquiredCapture = "capture"
	AcquiredShop    = "shop"
)

// Profile — то, что мы знаем о пользователе из апдейта Telegram.
type Profile struct {
	ID        int64
	Username  string
	FirstName string
}

// DisplayName — имя для сообщений: @username или first_name.
func (p Profile) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return "игрок"
}

// User — запись игрока.
type User struct {
	ID         int64     `db:"id"`
	Username   string    `db:"username"`
	FirstName  string    `db:"first_name"`
	Wallet     int64     `db:"wallet"` // всегда >= 0
	FavoriteID string    `db:"favorite_id"`
	CreatedAt  time.Time `db:"created_at"`

	// Inventory — снимки персонажей в порядке получения, дубликаты допустимы.
	Inventory []catalog.Item
}

// Owns проверяет, есть ли персонаж в коллекции.
func (u *User) Owns(itemID string) bool {
	for _, it := range u.Inventory {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// Store — контракт леджера. Все изменения кошелька одного пользователя
// сериализуются на уровне хранилища; разные пользователи не блокируют друг друга.
type Store interface {
	// Get возвращает пользователя с коллекцией или common.ErrUserNotFound.
	Get(ctx context.Context, userID int64) (*User, error)

	// UpdateProfile обновляет имя существующего пользователя. Неизвестного
	// пользователя не создаёт: запись появляется при поимке или покупке.
	UpdateProfile(ctx context.Context, p Profile) error

	// AppendInventory добавляет снимок персонажа; создаёт запись, если её нет.
	AppendInventory(ctx context.Context, p Profile, item catalog.Item) error

	// ConditionalDebit списывает amount, только если хватает средств.
	ConditionalDebit(ctx context.Context, userID, amount int64, kind string) (bool, error)

	// Credit начисляет amount. Пользователь должен существовать.
	Credit(ctx context.Context, userID, amount int64, kind string) error

	// Purchase атомарно: проверка владения, списание price и добавление персонажа.
	// Ошибки: ErrUserNotFound, ErrAlreadyOwned, ErrInsufficientBalance.
	Purchase(ctx context.Context, userID int64, item catalog.Item, price int64, ref string) (newBalance int64, err error)

	// SetFavorite выбирает любимого персонажа из своей коллекции (ErrNotOwned).
	SetFavorite(ctx context.Context, userID int64, itemID string) error

	// FindOwners ищет владельцев персонажа по имени без учёта регистра.
	// Порядок: больше копий выше, при равенстве меньший id. total — всего владельцев.
	FindOwners(ctx context.Context, name string, offset, limit int) (owners []Owner, total int, err error)
}

// OwnersPerPage — владельцев на странице /find.
const OwnersPerPage = 10

// Owner — владелец персонажа и число его копий.
type Owner struct {
	Profile
	Count int
}

// OwnersPage — страница результата /find. Page считается с 1.
type OwnersPage struct {
	Name   string
	Page   int
	Pages  int
	Total  int
	Owners []Owner
}

// RarityCount — строка сводки коллекции.
type RarityCount struct {
	Rarity string
	Count  int
}

// Harem — сводка коллекции для /harem.
type Harem struct {
	Total    int
	Unique   int
	ByRarity []RarityCount // в порядке catalog.Rarities
	Favorite *catalog.Item
}
