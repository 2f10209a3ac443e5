// Package shop — магазин персонажей: ежедневное обновление набора лотов
// и покупка за монеты.
//
// Лоты общие: покупка не уменьшает запас, один и тот же лот могут купить
// разные игроки до следующего обновления. Ограничение одно — игрок не может
// купить персонажа, который у него уже есть.
package shop

import (
	"context"
	"time"

	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// Listing — лот текущего цикла.
type Listing struct {
	ID        string // 8 hex-символов, вводится в /buy
	CycleID   string
	Item      catalog.Item
	Price     int64
	CreatedAt time.Time
}

// Receipt — результат успешной покупки.
type Receipt struct {
	Listing Listing
	Balance int64 // остаток после покупки
}

// Store — хранилище текущего набора лотов.
type Store interface {
	// Replace атомарно заменяет весь набор: читатели видят либо старый набор, либо новый.
	Replace(ctx context.Context, listings []Listing) error
	// Clear удаляет все лоты.
	Clear(ctx context.Context) error
	// List возвращает текущий набор.
	List(ctx context.Context) ([]Listing, error)
	// Get возвращает лот или common.ErrListingGone.
	Get(ctx context.Context, id string) (*Listing, error)
}

// Sampler — выборка персонажей по редкости.
type Sampler interface {
	SampleByRarity(ctx context.Context, rarity string, n int) ([]catalog.Item, error)
}

// Ledger — атомарная покупка в кошельке игрока.
type Ledger interface {
	Purchase(ctx context.Context, userID int64, item catalog.Item, price int64, ref string) (int64, error)
}

// Config — включён ли магазин и сколько лотов каждой редкости.
type Config interface {
	Shop(ctx context.Context) (enabled bool, rarities map[string]int)
}

// ActivityLogger — журнал активности (чат логов).
type ActivityLogger interface {
	LogActivity(ctx context.Context, text string)
}
