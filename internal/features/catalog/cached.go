package catalog

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/cache"
)

const listAllKey = "catalog:all"

// Cached кэширует ListAll: ротатор читает весь каталог на каждом спавне.
// FindByID и SampleByRarity идут напрямую в хранилище.
type Cached struct {
	Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCached оборачивает хранилище каталога кэшем.
func NewCached(store Store, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{Store: store, cache: c, ttl: ttl}
}

func (c *Cached) ListAll(ctx context.Context) ([]Item, error) {
	raw, err := c.cache.GetOrSet(ctx, listAllKey, c.ttl, func() ([]byte, error) {
		items, err := c.Store.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		log.WithError(err).Warn("битая запись каталога в кэше, читаем напрямую")
		_ = c.cache.Delete(ctx, listAllKey)
		return c.Store.ListAll(ctx)
	}
	return items, nil
}
