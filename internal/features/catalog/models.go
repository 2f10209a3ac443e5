// Package catalog — каталог персонажей, которых бот спавнит и продаёт.
// Для игрового движка каталог только читается; загрузка и удаление
// персонажей делаются внешними админ-инструментами.
package catalog

import (
	"context"

	"serotonyl.ru/catch-bot/internal/common"
)

// Item — персонаж каталога. Неизменяемый: в инвентарь пользователя
// попадает копия значения, а не ссылка.
type Item struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Anime    string `db:"anime" json:"anime"` // группа (тайтл)
	Rarity   string `db:"rarity" json:"rarity"`
	ImageURL string `db:"img_url" json:"img_url"`
}

// Store — контракт хранилища каталога.
type Store interface {
	// ListAll возвращает весь каталог.
	ListAll(ctx context.Context) ([]Item, error)
	// FindByID возвращает персонажа или common.ErrItemNotFound.
	FindByID(ctx context.Context, id string) (*Item, error)
	// SampleByRarity — равномерная выборка без повторов, n ограничено размером популяции.
	SampleByRarity(ctx context.Context, rarity string, n int) ([]Item, error)
}

// Редкости в порядке возрастания ценности.
const (
	RarityCommon    = "⚪️ Common"
	RarityMedium    = "🟢 Medium"
	RarityRare      = "🟣 Rare"
	RarityLegendary = "🟡 Legendary"
	RarityWinter    = "❄️ Winter"
	RaritySummer    = "🏝️ Summer"
	RarityRain      = "☔ Rain"
	RarityValentine = "💐 Velentine"
	RarityChristmas = "🎄 Christmas"
	RarityHalloween = "🎃 Halloween"
	RarityXCross    = "🧬 X-Cross"
	RarityUnique    = "🐉 Unique"
	RarityLimited   = "🔮 Limited"
	RarityCelestial = "🪽 Celestial"
	RaritySpecial   = "👑 Special"
)

// Rarities — все известные редкости.
var Rarities = []string{
	RarityCommon, RarityMedium, RarityRare, RarityLegendary,
	RarityWinter, RaritySummer, RarityRain, RarityValentine,
	RarityChristmas, RarityHalloween, RarityXCross, RarityUnique,
	RarityLimited, RarityCelestial, RaritySpecial,
}

// IsKnownRarity проверяет, есть ли редкость в списке.
func IsKnownRarity(rarity string) bool {
	for _, r := range Rarities {
		if r == rarity {
			return true
		}
	}
	return false
}

// ValidateRarity возвращает common.ErrUnknownRarity для неизвестной редкости.
func ValidateRarity(rarity string) error {
	if !IsKnownRarity(rarity) {
		return common.ErrUnknownRarity
	}
	return nil
}
