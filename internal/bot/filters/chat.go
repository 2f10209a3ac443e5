// Package filters решает, какие сообщения бот вообще обрабатывает.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// Scope — где пришло сообщение.
type Scope int

const (
	ScopeIgnored Scope = iota
	ScopeGroup
	ScopePrivate
)

// ChatFilter пропускает группы и личку, остальное (каналы, сервисные
// сообщения без отправителя, другие боты) отбрасывает.
type ChatFilter struct {
	botID int64
}

func NewChatFilter(botID int64) *ChatFilter {
	return &ChatFilter{botID: botID}
}

// Classify определяет область сообщения.
func (f *ChatFilter) Classify(message *telego.Message) Scope {
	if message == nil {
		return ScopeIgnored
	}
	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
	})

	if message.From == nil {
		logger.Debug("deny: nil message.From (service/channel message?)")
		return ScopeIgnored
	}
	if message.From.IsBot || message.From.ID == f.botID {
		return ScopeIgnored
	}

	switch message.Chat.Type {
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		return ScopeGroup
	case telego.ChatTypePrivate:
		return ScopePrivate
	default:
		logger.Debug("deny: unsupported chat type")
		return ScopeIgnored
	}
}
