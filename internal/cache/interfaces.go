// Package cache — кэш для read-моделей, которые опрашиваются на каждом
// сообщении (настройки спавна, каталог персонажей).
// Два бэкенда: память процесса (по умолчанию) и Redis (несколько инстансов бота).
package cache

import (
	"context"
	"time"
)

// Cache — минимальный интерфейс кэша.
type Cache interface {
	// Get возвращает значение или ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error

	// GetOrSet возвращает значение или вычисляет и сохраняет его.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Close освобождает ресурсы бэкенда.
	Close() error
}

// CacheError — ошибки кэша.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss — ключа нет в кэше.
	ErrCacheMiss CacheError = "cache miss"
)
