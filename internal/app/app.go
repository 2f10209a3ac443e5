// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: хранилища, кэш, метрики, сервисы, обработчики,
// бот, планировщик и служебный HTTP.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/bot"
	"serotonyl.ru/catch-bot/internal/cache"
	"serotonyl.ru/catch-bot/internal/config"
	"serotonyl.ru/catch-bot/internal/db/postgres"
	"serotonyl.ru/catch-bot/internal/features/admin"
	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/settings"
	"serotonyl.ru/catch-bot/internal/features/shop"
	"serotonyl.ru/catch-bot/internal/features/spawn"
	"serotonyl.ru/catch-bot/internal/features/stats"
	"serotonyl.ru/catch-bot/internal/features/users"
	"serotonyl.ru/catch-bot/internal/jobs"
	"serotonyl.ru/catch-bot/internal/metrics"
	"serotonyl.ru/catch-bot/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *server.Server

	db    *pgxpool.Pool
	cache cache.Cache
}

// stores — хранилища всех фич для выбранного драйвера.
type stores struct {
	catalog  catalog.Store
	users    users.Store
	stats    stats.Store
	settings settings.Store
	shop     shop.Store
	admin    admin.Store
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	// === 1. Хранилище ===
	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// === 2. Кэш read-моделей ===
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "catchbot:",
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		a.cache = rc
	} else {
		a.cache = cache.NewMemoryCache()
	}

	// === 3. Метрики ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(registry); err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка регистрации метрик: %w", err)
	}

	// === 4. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken, telego.WithLogger(log.StandardLogger()))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("ошибка getMe: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)
	sender := bot.NewSender(api, cfg.LogChatID)

	// === 5. Сервисы ===
	catalogStore := catalog.NewCached(st.catalog, a.cache, cfg.CatalogCacheTTL)

	settingsService := settings.NewService(st.settings, a.cache, cfg.CacheTTL, cfg.StoreTimeout, settings.Defaults(cfg))
	if err := settingsService.Init(ctx); err != nil {
		// не фатально: сервис отдаст значения по умолчанию
		log.WithError(err).Warn("Не удалось записать настройки по умолчанию")
	}

	usersService := users.NewService(st.users, cfg.StoreTimeout, cfg.StoreRetryBackoff)
	statsService := stats.NewService(st.stats, cfg.StoreTimeout)
	shopService := shop.NewService(
		st.shop, catalogStore, st.users, settingsService, sender,
		cfg.ShopDefaultPrice, cfg.StoreTimeout, cfg.StoreRetryBackoff,
	)
	adminService := admin.NewService(st.admin, cfg, cfg.AdminPasswordHash)
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH не задан, вход в админку невозможен")
	}

	throttle := spawn.NewThrottle(cfg.SpawnDefaultFrequency, cfg.SpawnSpamThreshold, cfg.SpawnSpamCooldown, time.Now)
	engine := spawn.NewEngine(
		throttle,
		spawn.NewRotator(catalogStore, cfg.StoreTimeout),
		spawn.NewArbiter(),
		settingsService,
		usersService,
		statsService,
		sender,
	)

	// === 6. Обработчики и бот ===
	handlers := bot.Handlers{
		Guess: spawn.NewHandler(engine, sender),
		Users: users.NewHandler(usersService, sender),
		Stats: stats.NewHandler(statsService, sender),
		Shop:  shop.NewHandler(shopService, sender),
		Admin: admin.NewHandler(adminService, shopService, usersService, sender),
	}
	a.Bot = bot.New(api, cfg, me, engine, usersService, handlers, sender)

	// === 7. Планировщик задач ===
	a.Scheduler = jobs.NewScheduler(cfg.AppTimezone, cfg.ShopRefreshCron, shopService, engine, adminService)

	// === 8. Служебный HTTP ===
	var pinger server.Pinger
	if a.db != nil {
		pinger = a.db
	}
	a.HTTP = server.New(cfg.HTTPAddr, server.NewRouter(pinger, registry))

	return a, nil
}

// openStores открывает пул БД и применяет миграции либо собирает хранилища в памяти.
func (a *App) openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("STORAGE_DRIVER=memory: данные не переживут перезапуск")
		return &stores{
			catalog:  catalog.NewMemoryStore(demoCatalog()...),
			users:    users.NewMemoryStore(),
			stats:    stats.NewMemoryStore(),
			settings: settings.NewMemoryStore(),
			shop:     shop.NewMemoryStore(),
			admin:    admin.NewMemoryStore(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	a.db = pool

	if err := postgres.RunMigrations(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	return &stores{
		catalog:  catalog.NewRepository(pool),
		users:    users.NewRepository(pool),
		stats:    stats.NewRepository(pool),
		settings: settings.NewRepository(pool),
		shop:     shop.NewRepository(pool),
		admin:    admin.NewRepository(pool),
	}, nil
}

// Close освобождает кэш и пул БД.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия кэша")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// demoCatalog — несколько персонажей для STORAGE_DRIVER=memory.
func demoCatalog() []catalog.Item {
	return []catalog.Item{
		{ID: "0001", Name: "Monkey D. Luffy", Anime: "One Piece", Rarity: catalog.RarityCommon},
		{ID: "0002", Name: "Roronoa Zoro", Anime: "One Piece", Rarity: catalog.RarityMedium},
		{ID: "0003", Name: "Rem", Anime: "Re:Zero", Rarity: catalog.RarityRare},
		{ID: "0004", Name: "Levi Ackerman", Anime: "Attack on Titan", Rarity: catalog.RarityLegendary},
		{ID: "0005", Name: "Makima", Anime: "Chainsaw Man", Rarity: catalog.RarityRare},
		{ID: "0006", Name: "Gojo Satoru", Anime: "Jujutsu Kaisen", Rarity: catalog.RarityLegendary},
		{ID: "0007", Name: "Anya Forger", Anime: "Spy x Family", Rarity: catalog.RarityCommon},
		{ID: "0008", Name: "Frieren", Anime: "Sousou no Frieren", Rarity: catalog.RarityMedium},
	}
}
