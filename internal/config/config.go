// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// перед этим подхватывается .env (если он есть).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	OwnerIDsRaw      string  `envconfig:"OWNER_IDS"`
	OwnerIDs         []int64 `envconfig:"-"` // заполним вручную
	// Чат для журнала активности (обновление магазина, покупки). 0 — только в лог.
	LogChatID int64 `envconfig:"LOG_CHAT_ID" default:"0"`

	// --- Storage ---
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`

	// --- Database ---
	// Дефолт "postgres" — имя сервиса в docker-compose, для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"catch_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// Таймаут одного обращения к хранилищу и пауза перед единственным повтором.
	StoreTimeout      time.Duration `envconfig:"STORE_TIMEOUT" default:"3s"`
	StoreRetryBackoff time.Duration `envconfig:"STORE_RETRY_BACKOFF" default:"200ms"`

	// --- Cache ---
	// Пустой адрес — кэш в памяти процесса.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"5s"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"1m"`

	// --- HTTP (метрики и healthcheck) ---
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Spawn ---
	SpawnDefaultFrequency int           `envconfig:"SPAWN_DEFAULT_FREQUENCY" default:"100"`
	SpawnSpamThreshold    int           `envconfig:"SPAWN_SPAM_THRESHOLD" default:"10"`
	SpawnSpamCooldown     time.Duration `envconfig:"SPAWN_SPAM_COOLDOWN" default:"10m"`

	// --- Shop ---
	ShopRefreshCron  string `envconfig:"SHOP_REFRESH_CRON" default:"0 0 * * *"`
	ShopDefaultPrice int64  `envconfig:"SHOP_DEFAULT_PRICE" default:"1000"`

	// --- Rate Limiting (команды) ---
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"1"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsOwner проверяет, указан ли пользователь в OWNER_IDS.
func (c *Config) IsOwner(userID int64) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для STORAGE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.SpawnDefaultFrequency <= 0 {
		return fmt.Errorf("SPAWN_DEFAULT_FREQUENCY должен быть > 0")
	}
	if c.SpawnSpamThreshold < 2 {
		return fmt.Errorf("SPAWN_SPAM_THRESHOLD должен быть >= 2")
	}
	if c.SpawnSpamCooldown <= 0 {
		return fmt.Errorf("SPAWN_SPAM_COOLDOWN должен быть > 0")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT должен быть > 0")
	}
	if c.ShopDefaultPrice <= 0 {
		return fmt.Errorf("SHOP_DEFAULT_PRICE должен быть > 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS должен быть > 0")
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения, заполняет структуру Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.OwnerIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("OWNER_IDS parse: %w", err)
	}
	cfg.OwnerIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
