package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"serotonyl.ru/catch-bot/internal/common"
)

// Коды PostgreSQL, после которых решение можно повторить целиком.
var retryableCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P01": true, // admin_shutdown
	"53300": true, // too_many_connections
}

// Classify оборачивает временные ошибки драйвера в common.ErrTransientStore.
// Остальные ошибки возвращаются как есть.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %w", common.ErrTransientStore, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// класс 08 — проблемы соединения
		return retryableCodes[pgErr.Code] || (len(pgErr.Code) == 5 && pgErr.Code[:2] == "08")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsOutOfRange — значение не помещается в колонку (numeric_value_out_of_range).
func IsOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}
