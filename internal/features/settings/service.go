package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/cache"
	"serotonyl.ru/catch-bot/internal/config"
	"serotonyl.ru/catch-bot/internal/features/spawn"
)

const globalKey = "settings:global"

func chatKey(chatID int64) string { return fmt.Sprintf("settings:chat:%d", chatID) }

// Defaults — значения по умолчанию из окружения: частота SPAWN_DEFAULT_FREQUENCY,
// стикеры и команды не считаются, магазин выключен.
func Defaults(cfg *config.Config) Settings {
	return Settings{
		GlobalFrequency: cfg.SpawnDefaultFrequency,
		ShopRarities:    map[string]int{},
	}
}

// Service читает настройки через кэш. Ошибки хранилища не блокируют
// игру: возвращаются значения по умолчанию, в лог пишется предупреждение.
type Service struct {
	store    Store
	cache    cache.Cache
	ttl      time.Duration
	timeout  time.Duration
	defaults Settings
}

// NewService создаёт сервис настроек.
func NewService(store Store, c cache.Cache, ttl, timeout time.Duration, defaults Settings) *Service {
	return &Service{store: store, cache: c, ttl: ttl, timeout: timeout, defaults: defaults}
}

// Init записывает значения по умолчанию в хранилище, если их там нет.
func (s *Service) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.EnsureDefaults(ctx, s.defaults)
}

func (s *Service) fallback() Settings {
	d := s.defaults
	d.ShopRarities = maps.Clone(s.defaults.ShopRarities)
	return d
}

// Current возвращает глобальные настройки.
func (s *Service) Current(ctx context.Context) Settings {
	raw, err := s.cache.GetOrSet(ctx, globalKey, s.ttl, func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		st, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(st)
	})
	if err != nil {
		log.WithError(err).Warn("настройки недоступны, используем значения по умолчанию")
		return s.fallback()
	}
	var st Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		log.WithError(err).Warn("битые настройки в кэше")
		_ = s.cache.Delete(ctx, globalKey)
		return s.fallback()
	}
	if st.ShopRarities == nil {
		st.ShopRarities = map[string]int{}
	}
	return st
}

type chatOverride struct {
	Frequency int  `json:"frequency"`
	Set       bool `json:"set"`
}

// ChannelFrequency — переопределение частоты для чата, 0 если его нет.
func (s *Service) ChannelFrequency(ctx context.Context, chatID int64) int {
	raw, err := s.cache.GetOrSet(ctx, chatKey(chatID), s.ttl, func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		f, ok, err := s.store.ChannelFrequency(ctx, chatID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(chatOverride{Frequency: f, Set: ok})
	})
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("частота чата недоступна")
		return 0
	}
	var o chatOverride
	if err := json.Unmarshal(raw, &o); err != nil || !o.Set {
		return 0
	}
	return o.Frequency
}

// Policy собирает политику счётчика: частота чата > глобальная > по умолчанию.
// Неположительные значения пропускаются.
func (s *Service) Policy(ctx context.Context, chatID int64) spawn.Policy {
	st := s.Current(ctx)
	freq := s.ChannelFrequency(ctx, chatID)
	if freq <= 0 {
		freq = st.GlobalFrequency
	}
	if freq <= 0 {
		freq = s.defaults.GlobalFrequency
	}
	return spawn.Policy{
		Frequency:       freq,
		IncludeStickers: st.IncludeStickers,
		IncludeCommands: st.IncludeCommands,
	}
}

// Shop — включён ли магазин и сколько лотов каждой редкости.
func (s *Service) Shop(ctx context.Context) (bool, map[string]int) {
	st := s.Current(ctx)
	return st.ShopEnabled, st.ShopRarities
}
