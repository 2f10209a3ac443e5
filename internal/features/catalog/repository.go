// Package catalog — repository.go читает таблицу characters.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/db/postgres"
)

// Repository — каталог в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий каталога.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, anime, rarity, img_url FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каталога: %w", postgres.Classify(err))
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Item])
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования каталога: %w", postgres.Classify(err))
	}
	return items, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Item, error) {
	var it Item
	err := r.db.QueryRow(ctx,
		`SELECT id, name, anime, rarity, img_url FROM characters WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Anime, &it.Rarity, &it.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска персонажа %s: %w", id, postgres.Classify(err))
	}
	return &it, nil
}

// SampleByRarity выбирает n случайных персонажей заданной редкости.
// ORDER BY random() приемлем: каталог — тысячи строк, вызов раз в сутки.
func (r *Repository) SampleByRarity(ctx context.Context, rarity string, n int) ([]Item, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, anime, rarity, img_url
		FROM characters
		WHERE rarity = $1
		ORDER BY random()
		LIMIT $2
	`, rarity, n)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки по редкости: %w", postgres.Classify(err))
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Item])
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования выборки: %w", postgres.Classify(err))
	}
	return items, nil
}
