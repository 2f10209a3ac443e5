// Package users — repository.go работает с таблицами users, user_characters
// и wallet_transactions. Денежные операции выполняются в транзакциях БД.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/db/postgres"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// Repository — леджер в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий пользователей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// execer — общее у пула и транзакции.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Get возвращает пользователя вместе с коллекцией.
func (r *Repository) Get(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, first_name, wallet, favorite_id, created_at
		FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.FirstName, &u.Wallet, &u.FavoriteID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %w", postgres.Classify(err))
	}

	rows, err := r.db.Query(ctx, `
		SELECT character_id, name, anime, rarity, img_url
		FROM user_characters
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения коллекции: %w", postgres.Classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Anime, &it.Rarity, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("ошибка сканирования коллекции: %w", err)
		}
		u.Inventory = append(u.Inventory, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения коллекции: %w", postgres.Classify(err))
	}
	return &u, nil
}

// UpdateProfile обновляет имя, если пользователь уже есть. Пустые значения не затирают старые.
func (r *Repository) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET
			username   = COALESCE(NULLIF($2, ''), username),
			first_name = COALESCE(NULLIF($3, ''), first_name),
			updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Username, p.FirstName)
	if err != nil {
		return fmt.Errorf("ошибка обновления профиля: %w", postgres.Classify(err))
	}
	return nil
}

func upsertProfile(ctx context.Context, db execer, p Profile) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			username   = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
			updated_at = NOW()
	`, p.ID, p.Username, p.FirstName)
	return err
}

func insertCharacter(ctx context.Context, db execer, userID int64, it catalog.Item, via string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_characters (user_id, character_id, name, anime, rarity, img_url, acquired_via)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, it.ID, it.Name, it.Anime, it.Rarity, it.ImageURL, via)
	return err
}

// AppendInventory записывает пойманного персонажа. Запись пользователя
// создаётся при необходимости, кошелёк не меняется.
func (r *Repository) AppendInventory(ctx context.Context, p Profile, item catalog.Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	if err := upsertProfile(ctx, tx, p); err != nil {
		return fmt.Errorf("ошибка сохранения профиля: %w", postgres.Classify(err))
	}
	if err := insertCharacter(ctx, tx, p.ID, item, AcquiredCapture); err != nil {
		return fmt.Errorf("ошибка добавления персонажа: %w", postgres.Classify(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита: %w", postgres.Classify(err))
	}
	return nil
}

// ConditionalDebit — списание одним UPDATE с условием wallet >= amount.
func (r *Repository) ConditionalDebit(ctx context.Context, userID, amount int64, kind string) (bool, error) {
	if amount <= 0 {
		return false, common.ErrInvalidAmount
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET wallet = wallet - $2, updated_at = NOW()
		WHERE id = $1 AND wallet >= $2
	`, userID, amount)
	if err != nil {
		return false, fmt.Errorf("ошибка списания: %w", postgres.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (user_id, amount, kind) VALUES ($1, $2, $3)
	`, userID, -amount, kind); err != nil {
		return false, fmt.Errorf("ошибка записи транзакции: %w", postgres.Classify(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка коммита: %w", postgres.Classify(err))
	}
	return true, nil
}

// Credit начисляет монеты и пишет движение в историю.
func (r *Repository) Credit(ctx context.Context, userID, amount int64, kind string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET wallet = wallet + $2, updated_at = NOW() WHERE id = $1
	`, userID, amount)
	if err != nil {
		if postgres.IsOutOfRange(err) {
			return common.ErrInvalidAmount
		}
		return fmt.Errorf("ошибка начисления: %w", postgres.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (user_id, amount, kind) VALUES ($1, $2, $3)
	`, userID, amount, kind); err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", postgres.Classify(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита: %w", postgres.Classify(err))
	}
	return nil
}

// Purchase — покупка в одной транзакции. Строка пользователя блокируется
// FOR UPDATE, поэтому параллельные покупки одного пользователя идут по очереди,
// а разных пользователей — параллельно.
func (r *Repository) Purchase(ctx context.Context, userID int64, item catalog.Item, price int64, ref string) (int64, error) {
	if price <= 0 {
		return 0, common.ErrInvalidAmount
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", postgres.Classify(err))
	}
	defer tx.Rollback(ctx)

	var wallet int64
	err = tx.QueryRow(ctx, `SELECT wallet FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&wallet)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения кошелька: %w", postgres.Classify(err))
	}

	var owned bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_characters WHERE user_id = $1 AND character_id = $2)
	`, userID, item.ID).Scan(&owned)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки коллекции: %w", postgres.Classify(err))
	}
	if owned {
		return wallet, common.ErrAlreadyOwned
	}
	if wallet < price {
		return wallet, common.ErrInsufficientBalance
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET wallet = wallet - $2, updated_at = NOW() WHERE id = $1
	`, userID, price); err != nil {
		return 0, fmt.Errorf("ошибка списания: %w", postgres.Classify(err))
	}
	if err := insertCharacter(ctx, tx, userID, item, AcquiredShop); err != nil {
		return 0, fmt.Errorf("ошибка добавления персонажа: %w", postgres.Classify(err))
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (user_id, amount, kind, reference) VALUES ($1, $2, $3, $4)
	`, userID, -price, TxPurchase, ref); err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", postgres.Classify(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка коммита: %w", postgres.Classify(err))
	}
	return wallet - price, nil
}

// FindOwners считает копии персонажа у каждого владельца.
func (r *Repository) FindOwners(ctx context.Context, name string, offset, limit int) ([]Owner, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM user_characters WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта владельцев: %w", postgres.Classify(err))
	}
	if total == 0 || offset >= total {
		return nil, total, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.first_name, c.cnt
		FROM (
			SELECT user_id, COUNT(*) AS cnt
			FROM user_characters
			WHERE LOWER(name) = LOWER($1)
			GROUP BY user_id
		) c
		JOIN users u ON u.id = c.user_id
		ORDER BY c.cnt DESC, u.id
		LIMIT $2 OFFSET $3
	`, name, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка поиска владельцев: %w", postgres.Classify(err))
	}
	defer rows.Close()

	owners := make([]Owner, 0, limit)
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ID, &o.Username, &o.FirstName, &o.Count); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования владельца: %w", err)
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения владельцев: %w", postgres.Classify(err))
	}
	return owners, total, nil
}

// SetFavorite сохраняет любимого персонажа, если он есть в коллекции.
func (r *Repository) SetFavorite(ctx context.Context, userID int64, itemID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET favorite_id = $2, updated_at = NOW()
		WHERE id = $1
		  AND EXISTS (SELECT 1 FROM user_characters WHERE user_id = $1 AND character_id = $2)
	`, userID, itemID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения избранного: %w", postgres.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotOwned
	}
	return nil
}
