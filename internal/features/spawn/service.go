package spawn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/users"
	"serotonyl.ru/catch-bot/internal/metrics"
)

// Engine — поток «сообщение → спавн → догадка → поимка».
type Engine struct {
	throttle  *Throttle
	rotator   *Rotator
	arbiter   *Arbiter
	policies  PolicySource
	inventory Inventory
	recorder  CaptureRecorder
	notifier  Notifier

	// lanes сериализуют Observe внутри одного чата: счётчик, выбор и публикация
	// спавна идут одним шагом.
	lanes *registry[int64, sync.Mutex]
}

// NewEngine собирает движок.
func NewEngine(
	throttle *Throttle,
	rotator *Rotator,
	arbiter *Arbiter,
	policies PolicySource,
	inventory Inventory,
	recorder CaptureRecorder,
	notifier Notifier,
) *Engine {
	return &Engine{
		throttle:  throttle,
		rotator:   rotator,
		arbiter:   arbiter,
		policies:  policies,
		inventory: inventory,
		recorder:  recorder,
		notifier:  notifier,
		lanes:     newRegistry[int64](func() *sync.Mutex { return &sync.Mutex{} }),
	}
}

// Observe учитывает сообщение группы и при необходимости спавнит персонажа.
func (e *Engine) Observe(ctx context.Context, msg Message) Decision {
	logger := log.WithFields(log.Fields{"chat_id": msg.ChatID, "user_id": msg.Sender.ID, "component": "spawn"})

	d, spawned, err := e.step(ctx, msg)

	switch {
	case d.Warn:
		metrics.MessagesObserved.WithLabelValues("spam").Inc()
		metrics.SpamCooldowns.Inc()
		logger.Info("Отправитель отправлен в кулдаун за спам")
		if err := e.notifier.WarnSpam(ctx, msg.ChatID, msg.Sender); err != nil {
			logger.WithError(err).Warn("не удалось отправить предупреждение о спаме")
		}
	case d.Counted:
		metrics.MessagesObserved.WithLabelValues("counted").Inc()
	default:
		metrics.MessagesObserved.WithLabelValues("filtered").Inc()
	}

	if !d.Spawn {
		return d
	}
	if err != nil {
		metrics.Spawns.WithLabelValues("suppressed").Inc()
		if errors.Is(err, common.ErrNoItemsAvailable) {
			logger.Debug("каталог пуст, спавн пропущен")
		} else {
			logger.WithError(err).Warn("спавн пропущен")
		}
		return d
	}

	metrics.Spawns.WithLabelValues("published").Inc()
	logger.WithFields(log.Fields{"item_id": spawned.ID, "rarity": spawned.Rarity}).Info("Персонаж появился")
	if err := e.notifier.AnnounceSpawn(ctx, msg.ChatID, spawned); err != nil {
		logger.WithError(err).Warn("не удалось объявить спавн")
	}
	return d
}

// step — часть Observe под замком чата.
func (e *Engine) step(ctx context.Context, msg Message) (Decision, catalog.Item, error) {
	lane := e.lanes.get(msg.ChatID)
	lane.Lock()
	defer lane.Unlock()

	d := e.throttle.Observe(msg, e.policies.Policy(ctx, msg.ChatID))
	if !d.Spawn {
		return d, catalog.Item{}, nil
	}
	item, err := e.rotator.Pick(ctx, msg.ChatID)
	if err != nil {
		return d, catalog.Item{}, err
	}
	e.arbiter.Publish(msg.ChatID, item)
	return d, item, nil
}

// Guess обрабатывает догадку. Ошибка common.ErrInvalidGuess сопровождает
// OutcomeWrong; common.ErrServiceUnavailable означает, что запись не удалась
// и спавн снова доступен.
func (e *Engine) Guess(ctx context.Context, chatID int64, chatTitle string, p users.Profile, guess string) (ClaimResult, error) {
	outcome, ticket, err := e.arbiter.AttemptClaim(chatID, guess)
	metrics.Claims.WithLabelValues(string(outcome)).Inc()
	if outcome != OutcomeWin {
		return ClaimResult{Outcome: outcome}, err
	}

	logger := log.WithFields(log.Fields{"chat_id": chatID, "user_id": p.ID, "item_id": ticket.Item.ID, "component": "spawn"})

	if err := e.inventory.AppendInventory(ctx, p, ticket.Item); err != nil {
		ticket.Rollback()
		metrics.Claims.WithLabelValues("rolled_back").Inc()
		logger.WithError(err).Error("не удалось записать поимку, спавн возвращён")
		if !errors.Is(err, common.ErrServiceUnavailable) {
			err = fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
		}
		return ClaimResult{}, err
	}
	ticket.Finalize()
	logger.Info("Персонаж пойман")

	e.recorder.RecordCapture(ctx, chatID, chatTitle, p)
	if err := e.notifier.AnnounceCapture(ctx, chatID, p, ticket.Item); err != nil {
		logger.WithError(err).Warn("не удалось объявить поимку")
	}
	return ClaimResult{Outcome: OutcomeWin, Item: ticket.Item}, nil
}

// Sweep чистит истёкшие кулдауны.
func (e *Engine) Sweep(now time.Time) int {
	return e.throttle.Sweep(now)
}
