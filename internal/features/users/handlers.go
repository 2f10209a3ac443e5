// Package users — handlers.go обрабатывает команды /balance, /fav, /harem и /find.
package users

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
)

// Handler обрабатывает команды игрока.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleBalance — /balance.
//
//	💰 Баланс: 1 500 монет
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.Balance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения баланса")
		h.out.SendText(ctx, chatID, "❌ "+userMessage(err))
		return
	}
	h.out.SendText(ctx, chatID, fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(balance)))
}

// HandleFavorite — /fav <id>.
func (h *Handler) HandleFavorite(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.out.SendText(ctx, chatID, "❌ Формат: /fav &lt;id персонажа&gt;")
		return
	}
	item, err := h.service.SetFavorite(ctx, userID, args[0])
	if err != nil {
		h.out.SendText(ctx, chatID, "❌ "+userMessage(err))
		return
	}
	h.out.SendText(ctx, chatID, fmt.Sprintf("💖 %s (%s) теперь ваш любимый персонаж", html.EscapeString(item.Name), html.EscapeString(item.Anime)))
}

// HandleHarem — /harem: сводка коллекции по редкостям.
func (h *Handler) HandleHarem(ctx context.Context, chatID, userID int64) {
	harem, err := h.service.Harem(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) || (err == nil && harem.Total == 0) {
		h.out.SendText(ctx, chatID, "📭 У вас пока нет персонажей. Ловите их командой /guess!")
		return
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения коллекции")
		h.out.SendText(ctx, chatID, "❌ "+userMessage(err))
		return
	}
	h.out.SendText(ctx, chatID, FormatHarem(harem))
}

// FormatHarem собирает текст сводки.
func FormatHarem(h *Harem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Коллекция: %d %s (уникальных: %d)\n", h.Total, common.PluralizeCharacters(h.Total), h.Unique)
	for _, rc := range h.ByRarity {
		fmt.Fprintf(&sb, "%s: %d\n", html.EscapeString(rc.Rarity), rc.Count)
	}
	if h.Favorite != nil {
		fmt.Fprintf(&sb, "💖 Любимый: %s (%s)", html.EscapeString(h.Favorite.Name), html.EscapeString(h.Favorite.Anime))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleFind — /find <имя> [#страница]: кто владеет персонажем.
func (h *Handler) HandleFind(ctx context.Context, chatID int64, args []string) {
	name, page := parseFindArgs(args)
	if name == "" {
		h.out.SendText(ctx, chatID, "❌ Формат: /find &lt;имя персонажа&gt; [#страница]")
		return
	}
	res, err := h.service.FindOwners(ctx, name, page)
	if err != nil {
		log.WithError(err).WithField("name", name).Error("Ошибка поиска владельцев")
		h.out.SendText(ctx, chatID, "❌ "+userMessage(err))
		return
	}
	if res.Total == 0 {
		h.out.SendText(ctx, chatID, fmt.Sprintf("🤔 У «%s» пока нет владельцев. Может, им станете вы?", html.EscapeString(name)))
		return
	}
	h.out.SendText(ctx, chatID, FormatOwners(res))
}

// parseFindArgs отделяет номер страницы вида #2 от имени.
func parseFindArgs(args []string) (string, int) {
	page := 1
	if n := len(args); n > 1 && strings.HasPrefix(args[n-1], "#") {
		if p, err := strconv.Atoi(args[n-1][1:]); err == nil && p > 0 {
			page = p
			args = args[:n-1]
		}
	}
	return strings.TrimSpace(strings.Join(args, " ")), page
}

// FormatOwners собирает страницу /find.
//
//	🔎 Владельцы Rem (стр. 1/2):
//	- @kirito ×3
func FormatOwners(res *OwnersPage) string {
	var sb strings.Builder
	name := html.EscapeString(res.Name)
	fmt.Fprintf(&sb, "🔎 Владельцы <b>%s</b> (стр. %d/%d):\n\n", name, res.Page, res.Pages)
	for _, o := range res.Owners {
		fmt.Fprintf(&sb, "- <a href=\"tg://user?id=%d\">%s</a> ×%d\n", o.ID, html.EscapeString(o.DisplayName()), o.Count)
	}
	if res.Page < res.Pages {
		fmt.Fprintf(&sb, "\nДальше: /find %s #%d", name, res.Page+1)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// userMessage превращает ошибку в текст для чата. Внутренние ошибки не показываем.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrServiceUnavailable):
		return common.ErrServiceUnavailable.Error()
	case errors.Is(err, common.ErrNotOwned),
		errors.Is(err, common.ErrItemNotFound),
		errors.Is(err, common.ErrUserNotFound):
		return err.Error()
	default:
		return "внутренняя ошибка, попробуйте позже"
	}
}
