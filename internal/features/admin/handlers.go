// Package admin — handlers.go обрабатывает /login, /logout и команды владельцев.
// Вход — только в личных сообщениях, остальные команды работают в любом чате
// при активной сессии.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
)

// ShopRefresher — принудительное обновление магазина.
type ShopRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Wallets — ручные начисления и списания.
type Wallets interface {
	Give(ctx context.Context, userID, amount int64) error
	Take(ctx context.Context, userID, amount int64) error
}

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	shop    ShopRefresher
	wallets Wallets
	out     common.Messenger
}

// NewHandler создаёт обработчик админ-команд.
func NewHandler(service *Service, shop ShopRefresher, wallets Wallets, out common.Messenger) *Handler {
	return &Handler{service: service, shop: shop, wallets: wallets, out: out}
}

// HandleLogin — /login <пароль>, только в личке.
func (h *Handler) HandleLogin(ctx context.Context, chatID, userID int64, private bool, args []string) {
	if !private {
		h.out.SendText(ctx, chatID, "🔐 Входите в личных сообщениях с ботом")
		return
	}
	if len(args) == 0 {
		h.out.SendText(ctx, chatID, "🔐 Формат: /login &lt;пароль&gt;")
		return
	}
	if err := h.service.Login(ctx, userID, strings.Join(args, " ")); err != nil {
		h.out.SendText(ctx, chatID, "❌ "+adminMessage(err))
		return
	}
	h.out.SendText(ctx, chatID, "✅ Аутентификация успешна! Сессия действует 24 часа.\nКоманды: /shoprefresh, /give &lt;id&gt; &lt;сумма&gt;, /take &lt;id&gt; &lt;сумма&gt;, /logout")
}

// HandleLogout — /logout.
func (h *Handler) HandleLogout(ctx context.Context, chatID, userID int64) {
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка выхода")
		h.out.SendText(ctx, chatID, "❌ "+adminMessage(err))
		return
	}
	h.out.SendText(ctx, chatID, "👋 Сессия закрыта")
}

// authorized отвечает пользователю, если прав нет.
func (h *Handler) authorized(ctx context.Context, chatID, userID int64) bool {
	if err := h.service.Authorize(ctx, userID); err != nil {
		h.out.SendText(ctx, chatID, "❌ "+adminMessage(err))
		return false
	}
	return true
}

// HandleShopRefresh — /shoprefresh.
func (h *Handler) HandleShopRefresh(ctx context.Context, chatID, userID int64) {
	if !h.authorized(ctx, chatID, userID) {
		return
	}
	n, err := h.shop.Refresh(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка ручного обновления магазина")
		h.out.SendText(ctx, chatID, "❌ Не удалось обновить магазин, прежние лоты сохранены")
		return
	}
	h.out.SendText(ctx, chatID, fmt.Sprintf("✅ Магазин обновлён: %d лотов", n))
}

// HandleGive — /give <user_id> <сумма>.
func (h *Handler) HandleGive(ctx context.Context, chatID, userID int64, args []string) {
	h.handleWallet(ctx, chatID, userID, args, "give")
}

// HandleTake — /take <user_id> <сумма>.
func (h *Handler) HandleTake(ctx context.Context, chatID, userID int64, args []string) {
	h.handleWallet(ctx, chatID, userID, args, "take")
}

func (h *Handler) handleWallet(ctx context.Context, chatID, userID int64, args []string, op string) {
	if !h.authorized(ctx, chatID, userID) {
		return
	}
	target, amount, err := parseWalletArgs(args)
	if err != nil {
		h.out.SendText(ctx, chatID, fmt.Sprintf("❌ Формат: /%s &lt;user_id&gt; &lt;сумма&gt;", op))
		return
	}

	if op == "give" {
		err = h.wallets.Give(ctx, target, amount)
	} else {
		err = h.wallets.Take(ctx, target, amount)
	}
	if err != nil {
		h.out.SendText(ctx, chatID, "❌ "+adminMessage(err))
		return
	}

	sign := amount
	if op == "take" {
		sign = -amount
	}
	h.out.SendText(ctx, chatID, fmt.Sprintf("✅ %d: %s", target, common.FormatCoinsAmount(sign)))
}

func parseWalletArgs(args []string) (int64, int64, error) {
	if len(args) < 2 {
		return 0, 0, common.ErrInvalidAmount
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		return 0, 0, common.ErrInvalidAmount
	}
	return target, amount, nil
}

func adminMessage(err error) string {
	for _, known := range []error{
		common.ErrNotAdmin, common.ErrWrongPassword, common.ErrTooManyAttempts,
		common.ErrSessionExpired, common.ErrUserNotFound, common.ErrInsufficientBalance,
		common.ErrInvalidAmount, common.ErrServiceUnavailable,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "внутренняя ошибка"
}
