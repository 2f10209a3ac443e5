package spawn

import (
	"context"
	"errors"
	"strings"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/users"
)

// GuessAliases — команды, которыми можно ловить персонажа.
var GuessAliases = []string{"guess", "protecc", "collect", "grab", "marry"}

// Handler отвечает на /guess. Победу объявляет Notifier.
type Handler struct {
	engine *Engine
	out    common.Messenger
}

// NewHandler создаёт обработчик догадок.
func NewHandler(engine *Engine, out common.Messenger) *Handler {
	return &Handler{engine: engine, out: out}
}

// HandleGuess обрабатывает /guess <имя>.
func (h *Handler) HandleGuess(ctx context.Context, chatID int64, chatTitle string, p users.Profile, args []string) {
	res, err := h.engine.Guess(ctx, chatID, chatTitle, p, strings.Join(args, " "))
	if text := guessReply(res.Outcome, err); text != "" {
		h.out.SendText(ctx, chatID, text)
	}
}

func guessReply(outcome ClaimOutcome, err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidGuess):
		return "❌ В догадке нельзя использовать «()» и «&»"
	case err != nil:
		return "⚠️ " + common.ErrServiceUnavailable.Error()
	}
	switch outcome {
	case OutcomeWrong:
		return "❌ Неверно, попробуйте ещё раз"
	case OutcomeAlreadyClaimed:
		return "❌ Персонажа уже поймали, ждите следующего"
	default:
		// win объявляет Notifier, на no_active_spawn молчим
		return ""
	}
}
