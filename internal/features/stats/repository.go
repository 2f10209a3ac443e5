package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/db/postgres"
	"serotonyl.ru/catch-bot/internal/features/users"
)

// Repository — счётчики в таблицах group_user_totals, user_totals, group_totals.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий статистики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) IncrementCaptureCount(ctx context.Context, chatID int64, p users.Profile) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO group_user_totals (chat_id, user_id, username, first_name, count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET
			count      = group_user_totals.count + 1,
			username   = COALESCE(NULLIF(EXCLUDED.username, ''), group_user_totals.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), group_user_totals.first_name)
	`, chatID, p.ID, p.Username, p.FirstName)
	batch.Queue(`
		INSERT INTO user_totals (user_id, count) VALUES ($1, 1)
		ON CONFLICT (user_id) DO UPDATE SET count = user_totals.count + 1
	`, p.ID)

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ошибка обновления счётчиков игрока: %w", postgres.Classify(err))
	}
	return nil
}

func (r *Repository) IncrementChannelCaptureCount(ctx context.Context, chatID int64, title string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_totals (chat_id, title, count) VALUES ($1, $2, 1)
		ON CONFLICT (chat_id) DO UPDATE SET
			count = group_totals.count + 1,
			title = COALESCE(NULLIF(EXCLUDED.title, ''), group_totals.title)
	`, chatID, title)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчика чата: %w", postgres.Classify(err))
	}
	return nil
}

func (r *Repository) TopInChannel(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, username, first_name, count
		FROM group_user_totals
		WHERE chat_id = $1
		ORDER BY count DESC, user_id
		LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", postgres.Classify(err))
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[Entry])
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования рейтинга: %w", postgres.Classify(err))
	}
	return entries, nil
}
