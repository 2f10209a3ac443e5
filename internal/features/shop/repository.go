package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/db/postgres"
)

// Repository — лоты в таблице shop_listings.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий магазина.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var listingColumns = []string{
	"id", "cycle_id", "character_id", "name", "anime", "rarity", "img_url", "price", "created_at",
}

// Replace удаляет старый набор и заливает новый через COPY в одной транзакции.
func (r *Repository) Replace(ctx context.Context, listings []Listing) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM shop_listings`); err != nil {
		return fmt.Errorf("ошибка очистки магазина: %w", postgres.Classify(err))
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"shop_listings"}, listingColumns,
		pgx.CopyFromSlice(len(listings), func(i int) ([]any, error) {
			l := listings[i]
			return []any{
				l.ID, l.CycleID, l.Item.ID, l.Item.Name, l.Item.Anime,
				l.Item.Rarity, l.Item.ImageURL, l.Price, l.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи лотов: %w", postgres.Classify(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита: %w", postgres.Classify(err))
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM shop_listings`); err != nil {
		return fmt.Errorf("ошибка очистки магазина: %w", postgres.Classify(err))
	}
	return nil
}

const selectListing = `
	SELECT id, cycle_id, character_id, name, anime, rarity, img_url, price, created_at
	FROM shop_listings
`

func scanListing(row pgx.Row) (*Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.CycleID, &l.Item.ID, &l.Item.Name, &l.Item.Anime,
		&l.Item.Rarity, &l.Item.ImageURL, &l.Price, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) List(ctx context.Context) ([]Listing, error) {
	rows, err := r.db.Query(ctx, selectListing+` ORDER BY price, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лотов: %w", postgres.Classify(err))
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования лота: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения лотов: %w", postgres.Classify(err))
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx, selectListing+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrListingGone
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лота: %w", postgres.Classify(err))
	}
	return l, nil
}
