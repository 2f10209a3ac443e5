// Package shop — handlers.go обрабатывает /shop и /buy.
package shop

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/users"
)

// Handler обрабатывает команды магазина.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик магазина.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleShop — /shop: список лотов текущего цикла.
func (h *Handler) HandleShop(ctx context.Context, chatID int64) {
	enabled, listings, err := h.service.List(ctx)
	switch {
	case err != nil:
		log.WithError(err).Error("Ошибка получения лотов")
		h.out.SendText(ctx, chatID, "⚠️ "+common.ErrServiceUnavailable.Error())
	case !enabled:
		h.out.SendText(ctx, chatID, "🛍️ Магазин сейчас закрыт, загляните позже")
	case len(listings) == 0:
		h.out.SendText(ctx, chatID, "🛍️ Прилавок пуст, ждите следующего обновления")
	default:
		h.out.SendText(ctx, chatID, FormatListings(listings))
	}
}

// FormatListings собирает текст витрины.
func FormatListings(listings []Listing) string {
	var sb strings.Builder
	sb.WriteString("🛍️ Магазин персонажей\n\n")
	for _, l := range listings {
		fmt.Fprintf(&sb, "<code>%s</code> %s %s (%s) — %s\n",
			l.ID, html.EscapeString(l.Item.Rarity), html.EscapeString(l.Item.Name), html.EscapeString(l.Item.Anime), common.FormatBalance(l.Price))
	}
	sb.WriteString("\nКупить: /buy &lt;номер лота&gt;")
	return sb.String()
}

// HandleBuy — /buy <номер лота>.
func (h *Handler) HandleBuy(ctx context.Context, chatID int64, p users.Profile, args []string) {
	if len(args) == 0 {
		h.out.SendText(ctx, chatID, "❌ Формат: /buy &lt;номер лота&gt;")
		return
	}
	receipt, err := h.service.Buy(ctx, p, args[0])
	if err != nil {
		h.out.SendText(ctx, chatID, buyErrorText(err))
		return
	}
	h.out.SendText(ctx, chatID, fmt.Sprintf("🎉 %s теперь в вашей коллекции!\nОстаток: %s",
		receipt.Listing.Item.Name, common.FormatBalance(receipt.Balance)))
}

func buyErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidListing):
		return "❌ Укажите номер лота из /shop"
	case errors.Is(err, common.ErrListingGone):
		return "❌ Этого лота больше нет в магазине"
	case errors.Is(err, common.ErrUserNotFound):
		return "❌ Сначала поймайте хотя бы одного персонажа через /guess"
	case errors.Is(err, common.ErrAlreadyOwned):
		return "😉 Этот персонаж уже в вашей коллекции"
	case errors.Is(err, common.ErrInsufficientBalance):
		return "💔 Недостаточно монет"
	default:
		log.WithError(err).Error("Ошибка покупки")
		return "⚠️ " + common.ErrServiceUnavailable.Error()
	}
}
