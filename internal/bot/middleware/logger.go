// Package middleware содержит промежуточные обработчики апдейтов:
// логирование, восстановление после паники и ограничение частоты команд.
package middleware

import (
	"unicode/utf8"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

const logTextLimit = 50

// LogMessage пишет входящее сообщение в debug-лог (текст обрезается до 50 символов).
func LogMessage(message *telego.Message) {
	if message == nil || message.From == nil {
		return
	}

	text := message.Text
	if utf8.RuneCountInString(text) > logTextLimit {
		text = string([]rune(text)[:logTextLimit]) + "..."
	}

	fields := log.Fields{
		"user_id":   message.From.ID,
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"username":  message.From.Username,
		"text":      text,
	}
	if message.Sticker != nil {
		fields["sticker"] = message.Sticker.Emoji
	}
	log.WithFields(fields).Debug("Входящее сообщение")
}
