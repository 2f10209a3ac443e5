// Package bot — notifier.go: исходящие сообщения через Telegram.
// Sender реализует spawn.Notifier, shop.ActivityLogger и common.Messenger.
package bot

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/users"
)

// Sender отправляет сообщения от имени бота.
type Sender struct {
	api       *telego.Bot
	logChatID int64
}

// NewSender создаёт отправителя. logChatID = 0 — журнал только в лог.
func NewSender(api *telego.Bot, logChatID int64) *Sender {
	return &Sender{api: api, logChatID: logChatID}
}

// SendText отправляет HTML-сообщение. Ошибки только логируются.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) {
	msg := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if _, err := s.api.SendMessage(ctx, msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// AnnounceSpawn публикует фото нового персонажа.
func (s *Sender) AnnounceSpawn(ctx context.Context, chatID int64, item catalog.Item) error {
	caption := spawnCaption(item)
	if item.ImageURL == "" {
		_, err := s.api.SendMessage(ctx, tu.Message(tu.ID(chatID), caption).WithParseMode(telego.ModeHTML))
		return err
	}
	photo := tu.Photo(tu.ID(chatID), tu.FileFromURL(item.ImageURL)).
		WithCaption(caption).
		WithParseMode(telego.ModeHTML)
	_, err := s.api.SendPhoto(ctx, photo)
	return err
}

// AnnounceCapture поздравляет победителя.
func (s *Sender) AnnounceCapture(ctx context.Context, chatID int64, winner users.Profile, item catalog.Item) error {
	_, err := s.api.SendMessage(ctx, tu.Message(tu.ID(chatID), captureText(winner, item)).WithParseMode(telego.ModeHTML))
	return err
}

// WarnSpam предупреждает о кулдауне.
func (s *Sender) WarnSpam(ctx context.Context, chatID int64, sender users.Profile) error {
	_, err := s.api.SendMessage(ctx, tu.Message(tu.ID(chatID), spamText(sender)).WithParseMode(telego.ModeHTML))
	return err
}

// LogActivity пишет в чат логов, если он задан.
func (s *Sender) LogActivity(ctx context.Context, text string) {
	log.WithField("component", "activity").Info(text)
	if s.logChatID == 0 {
		return
	}
	s.SendText(ctx, s.logChatID, html.EscapeString(text))
}

// Тексты уходят с parse_mode=HTML: всё, кроме разметки, экранируется.

func spawnCaption(item catalog.Item) string {
	return fmt.Sprintf("✨ Появился новый персонаж!\nРедкость: %s\nУгадайте имя: /guess &lt;имя&gt;",
		html.EscapeString(item.Rarity))
}

func captureText(winner users.Profile, item catalog.Item) string {
	return fmt.Sprintf(
		"🎉 %s поймал(а) <b>%s</b> (%s)\nРедкость: %s\nПерсонаж добавлен в /harem",
		mention(winner), html.EscapeString(item.Name), html.EscapeString(item.Anime), html.EscapeString(item.Rarity),
	)
}

func spamText(sender users.Profile) string {
	return fmt.Sprintf("⚠️ %s, не спамьте! Ваши сообщения какое-то время не учитываются.", mention(sender))
}

func mention(p users.Profile) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, p.ID, html.EscapeString(p.DisplayName()))
}
