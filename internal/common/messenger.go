// Package common — messenger.go описывает минимальный интерфейс отправки ответов.
// Обработчики фич зависят от него, а не от клиента Telegram напрямую.
package common

import "context"

// Messenger отправляет текстовые ответы в чат. Ошибки доставки логирует сама
// реализация: ответ пользователю никогда не откатывает состояние.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string)
}
