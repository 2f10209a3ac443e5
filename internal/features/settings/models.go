// Package settings — игровые настройки: частота спавна, фильтры счётчика,
// состав магазина. Хранятся в БД и меняются внешними админ-инструментами;
// бот их только читает (через короткий кэш).
package settings

import "context"

// Settings — глобальные настройки игры.
type Settings struct {
	GlobalFrequency int            `json:"global_frequency"`
	IncludeStickers bool           `json:"include_stickers"`
	IncludeCommands bool           `json:"include_commands"`
	ShopEnabled     bool           `json:"shop_enabled"`
	ShopRarities    map[string]int `json:"shop_rarities"` // редкость → сколько лотов
}

// Store — хранилище настроек.
type Store interface {
	// Load читает глобальные настройки.
	Load(ctx context.Context) (*Settings, error)
	// ChannelFrequency — переопределение частоты для чата; ok=false, если его нет.
	ChannelFrequency(ctx context.Context, chatID int64) (freq int, ok bool, err error)
	// EnsureDefaults записывает значения по умолчанию, если строк ещё нет.
	EnsureDefaults(ctx context.Context, defaults Settings) error
}
