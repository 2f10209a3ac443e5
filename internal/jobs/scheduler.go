// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: обновление магазина,
// ежечасная очистка кулдаунов и истёкших админ-сессий.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
)

// ShopRefresher — пересборка витрины.
type ShopRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Sweeper — очистка истёкших кулдаунов спама.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionCleaner — удаление истёкших админ-сессий.
type SessionCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	shopSpec string
	shop     ShopRefresher
	throttle Sweeper
	sessions SessionCleaner
	timezone string
}

// NewScheduler создаёт планировщик в часовом поясе timezone.
func NewScheduler(timezone, shopSpec string, shop ShopRefresher, throttle Sweeper, sessions SessionCleaner) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(common.LoadLocation(timezone))),
		shopSpec: shopSpec,
		shop:     shop,
		throttle: throttle,
		sessions: sessions,
		timezone: timezone,
	}
}

// Start регистрирует задачи, один раз обновляет магазин и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.shopSpec, func() { s.refreshShop(ctx) }); err != nil {
		return err
	}

	// Очистка каждый час
	if _, err := s.cron.AddFunc("@hourly", func() { s.sweep(ctx) }); err != nil {
		return err
	}

	s.refreshShop(ctx)

	s.cron.Start()
	log.WithFields(log.Fields{"shop_cron": s.shopSpec, "timezone": s.timezone}).Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) refreshShop(ctx context.Context) {
	log.Info("[CRON] Обновление магазина")
	n, err := s.shop.Refresh(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка обновления магазина")
		return
	}
	log.WithField("listings", n).Info("[CRON] Магазин обновлён")
}

func (s *Scheduler) sweep(ctx context.Context) {
	expired := s.throttle.Sweep(time.Now())
	removed, err := s.sessions.Cleanup(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка очистки админ-сессий")
	}
	log.WithFields(log.Fields{"cooldowns": expired, "sessions": removed}).Debug("[CRON] Очистка")
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
