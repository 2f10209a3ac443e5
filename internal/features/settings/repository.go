package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/db/postgres"
)

// Repository читает catch_settings, chat_settings, shop_settings и shop_rarities.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий настроек.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Load(ctx context.Context) (*Settings, error) {
	s := &Settings{ShopRarities: make(map[string]int)}

	err := r.db.QueryRow(ctx, `
		SELECT c.frequency, c.include_stickers, c.include_commands, s.enabled
		FROM catch_settings c CROSS JOIN shop_settings s
		WHERE c.id = 1 AND s.id = 1
	`).Scan(&s.GlobalFrequency, &s.IncludeStickers, &s.IncludeCommands, &s.ShopEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("настройки не инициализированы")
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения настроек: %w", postgres.Classify(err))
	}

	rows, err := r.db.Query(ctx, `SELECT rarity, amount FROM shop_rarities`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения состава магазина: %w", postgres.Classify(err))
	}
	defer rows.Close()
	for rows.Next() {
		var rarity string
		var amount int
		if err := rows.Scan(&rarity, &amount); err != nil {
			return nil, fmt.Errorf("ошибка сканирования состава магазина: %w", err)
		}
		s.ShopRarities[rarity] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения состава магазина: %w", postgres.Classify(err))
	}
	return s, nil
}

func (r *Repository) ChannelFrequency(ctx context.Context, chatID int64) (int, bool, error) {
	var freq int
	err := r.db.QueryRow(ctx, `SELECT frequency FROM chat_settings WHERE chat_id = $1`, chatID).Scan(&freq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка чтения частоты чата: %w", postgres.Classify(err))
	}
	return freq, true, nil
}

func (r *Repository) EnsureDefaults(ctx context.Context, d Settings) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO catch_settings (id, frequency, include_stickers, include_commands)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, d.GlobalFrequency, d.IncludeStickers, d.IncludeCommands); err != nil {
		return fmt.Errorf("ошибка записи настроек спавна: %w", postgres.Classify(err))
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO shop_settings (id, enabled) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`, d.ShopEnabled); err != nil {
		return fmt.Errorf("ошибка записи настроек магазина: %w", postgres.Classify(err))
	}
	for rarity, amount := range d.ShopRarities {
		if _, err := tx.Exec(ctx, `
			INSERT INTO shop_rarities (rarity, amount) VALUES ($1, $2)
			ON CONFLICT (rarity) DO NOTHING
		`, rarity, amount); err != nil {
			return fmt.Errorf("ошибка записи состава магазина: %w", postgres.Classify(err))
		}
	}
	return tx.Commit(ctx)
}
