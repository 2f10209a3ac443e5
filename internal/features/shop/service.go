package shop

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/users"
	"serotonyl.ru/catch-bot/internal/metrics"
)

// Service — обновление и покупки.
type Service struct {
	store        Store
	sampler      Sampler
	ledger       Ledger
	config       Config
	activity     ActivityLogger
	defaultPrice int64
	timeout      time.Duration
	pause        time.Duration
	now          func() time.Time
}

// NewService создаёт сервис магазина.
func NewService(
	store Store,
	sampler Sampler,
	ledger Ledger,
	config Config,
	activity ActivityLogger,
	defaultPrice int64,
	timeout, retryPause time.Duration,
) *Service {
	return &Service{
		store:        store,
		sampler:      sampler,
		ledger:       ledger,
		config:       config,
		activity:     activity,
		defaultPrice: defaultPrice,
		timeout:      timeout,
		pause:        retryPause,
		now:          time.Now,
	}
}

func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// newListingID — короткий номер лота для /buy.
func newListingID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// rarityOrder — редкости из настроек: сначала известные в порядке каталога,
// затем остальные по алфавиту.
func rarityOrder(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for _, r := range catalog.Rarities {
		if _, ok := counts[r]; ok {
			out = append(out, r)
		}
	}
	var extra []string
	for r := range counts {
		if !catalog.IsKnownRarity(r) {
			extra = append(extra, r)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Refresh заменяет весь набор лотов. Выключенный магазин очищается.
// При любой ошибке выборки или записи остаётся прежний набор.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.activity.LogActivity(ctx, "🔄 Обновление магазина...")

	enabled, counts := s.config.Shop(ctx)
	if !enabled {
		cctx, cancel := s.bounded(ctx)
		defer cancel()
		if err := s.store.Clear(cctx); err != nil {
			metrics.ShopRefreshes.WithLabelValues("failed").Inc()
			return 0, fmt.Errorf("очистка выключенного магазина: %w", err)
		}
		metrics.ShopRefreshes.WithLabelValues("disabled").Inc()
		metrics.ShopListings.Set(0)
		log.Info("Магазин выключен, лоты очищены")
		return 0, nil
	}

	cycleID := uuid.NewString()
	now := s.now()
	var staged []Listing
	for _, rarity := range rarityOrder(counts) {
		n := counts[rarity]
		if n <= 0 {
			continue
		}
		if err := catalog.ValidateRarity(rarity); err != nil {
			log.WithField("rarity", rarity).Warn("неизвестная редкость в настройках магазина, пропускаем")
			continue
		}
		sctx, cancel := s.bounded(ctx)
		items, err := s.sampler.SampleByRarity(sctx, rarity, n)
		cancel()
		if err != nil {
			metrics.ShopRefreshes.WithLabelValues("failed").Inc()
			return 0, fmt.Errorf("выборка %s: %w", rarity, err)
		}
		for _, it := range items {
			staged = append(staged, Listing{
				ID:        newListingID(),
				CycleID:   cycleID,
				Item:      it,
				Price:     PriceFor(it.Rarity, s.defaultPrice),
				CreatedAt: now,
			})
		}
	}

	rctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.store.Replace(rctx, staged); err != nil {
		metrics.ShopRefreshes.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("замена лотов: %w", err)
	}

	metrics.ShopRefreshes.WithLabelValues("ok").Inc()
	metrics.ShopListings.Set(float64(len(staged)))
	log.WithFields(log.Fields{"cycle_id": cycleID, "listings": len(staged)}).Info("Магазин обновлён")
	s.activity.LogActivity(ctx, fmt.Sprintf("✅ Магазин обновлён: %d лотов", len(staged)))
	return len(staged), nil
}

// List возвращает текущие лоты; enabled=false — магазин закрыт.
func (s *Service) List(ctx context.Context) (bool, []Listing, error) {
	enabled, _ := s.config.Shop(ctx)
	if !enabled {
		return false, nil, nil
	}
	listings, err := common.RetryTransient(ctx, s.pause, func(ctx context.Context) ([]Listing, error) {
		ctx, cancel := s.bounded(ctx)
		defer cancel()
		return s.store.List(ctx)
	})
	return true, listings, err
}

// Buy покупает лот. Порядок проверок: лот существует, игрок известен,
// персонажа ещё нет, хватает монет. Временный сбой хранилища повторяет
// всё решение один раз, затем возвращается common.ErrServiceUnavailable.
func (s *Service) Buy(ctx context.Context, p users.Profile, listingID string) (*Receipt, error) {
	listingID = strings.ToLower(strings.TrimSpace(listingID))
	if listingID == "" {
		return nil, common.ErrInvalidListing
	}
	if enabled, _ := s.config.Shop(ctx); !enabled {
		metrics.Purchases.WithLabelValues("listing_gone").Inc()
		return nil, common.ErrListingGone
	}

	receipt, err := common.RetryTransient(ctx, s.pause, func(ctx context.Context) (*Receipt, error) {
		ctx, cancel := s.bounded(ctx)
		defer cancel()

		l, err := s.store.Get(ctx, listingID)
		if err != nil {
			return nil, err
		}
		balance, err := s.ledger.Purchase(ctx, p.ID, l.Item, l.Price, l.ID)
		if err != nil {
			if common.IsTransient(err) {
				metrics.StoreRetries.WithLabelValues("purchase").Inc()
			}
			return nil, err
		}
		return &Receipt{Listing: *l, Balance: balance}, nil
	})

	metrics.Purchases.WithLabelValues(purchaseOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    p.ID,
		"listing_id": receipt.Listing.ID,
		"item_id":    receipt.Listing.Item.ID,
		"price":      receipt.Listing.Price,
	}).Info("Покупка в магазине")
	s.activity.LogActivity(ctx, fmt.Sprintf("🛒 Покупка: %s купил %s (%s) за %s",
		p.DisplayName(), receipt.Listing.Item.Name, receipt.Listing.Item.ID,
		common.FormatBalance(receipt.Listing.Price)))
	return receipt, nil
}

func purchaseOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrListingGone):
		return "listing_gone"
	case errors.Is(err, common.ErrUserNotFound):
		return "user_unknown"
	case errors.Is(err, common.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, common.ErrInsufficientBalance):
		return "insufficient_funds"
	case errors.Is(err, common.ErrServiceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
