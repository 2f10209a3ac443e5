package stats

import (
	"context"
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/common"
)

// Handler обрабатывает /top.
type Handler struct {
	service *Service
	out     common.Messenger
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service, out common.Messenger) *Handler {
	return &Handler{service: service, out: out}
}

// HandleTop показывает лучших ловцов чата.
func (h *Handler) HandleTop(ctx context.Context, chatID int64) {
	entries, err := h.service.Top(ctx, chatID)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка получения рейтинга")
		h.out.SendText(ctx, chatID, "❌ Не удалось получить рейтинг")
		return
	}
	h.out.SendText(ctx, chatID, FormatTop(entries))
}

// FormatTop собирает текст рейтинга.
func FormatTop(entries []Entry) string {
	if len(entries) == 0 {
		return "🏆 В этом чате ещё никто никого не поймал"
	}
	var sb strings.Builder
	sb.WriteString("🏆 Лучшие ловцы чата:\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s — %d\n", i+1, html.EscapeString(e.DisplayName()), e.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}
