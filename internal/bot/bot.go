// Package bot — транспортный слой: long polling Telegram, фильтрация,
// подсчёт сообщений для спавна и маршрутизация команд по обработчикам.
package bot

import (
	"context"
	"slices"
	"sync"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/catch-bot/internal/bot/filters"
	"serotonyl.ru/catch-bot/internal/bot/middleware"
	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/config"
	"serotonyl.ru/catch-bot/internal/features/admin"
	"serotonyl.ru/catch-bot/internal/features/shop"
	"serotonyl.ru/catch-bot/internal/features/spawn"
	"serotonyl.ru/catch-bot/internal/features/stats"
	"serotonyl.ru/catch-bot/internal/features/users"
)

const helpText = `🎴 Ловите персонажей, которые появляются в чате!

/guess &lt;имя&gt; — поймать персонажа (также /protecc, /collect, /grab, /marry)
/harem — ваша коллекция
/find &lt;имя&gt; — у кого есть персонаж
/fav &lt;id&gt; — выбрать любимого персонажа
/balance — баланс монет
/top — лучшие ловцы чата
/shop — магазин, /buy &lt;номер&gt; — купить`

// Handlers — обработчики команд по фичам.
type Handlers struct {
	Guess *spawn.Handler
	Users *users.Handler
	Stats *stats.Handler
	Shop  *shop.Handler
	Admin *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	engine   *spawn.Engine
	users    *users.Service
	handlers Handlers
	out      common.Messenger

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New создаёт бота. me — результат getMe: id и username нужны фильтру и парсеру.
func New(
	api *telego.Bot,
	cfg *config.Config,
	me *telego.User,
	engine *spawn.Engine,
	usersService *users.Service,
	handlers Handlers,
	out common.Messenger,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		chatFilter:  filters.NewChatFilter(me.ID),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		parser:      NewCommandParser(me.Username),
		engine:      engine,
		users:       usersService,
		handlers:    handlers,
		out:         out,
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает long polling и блокируется до отмены ctx.
// Перед возвратом дожидается обработчиков, которые уже в работе.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	defer func() {
		b.wg.Wait()
		b.rateLimiter.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			select {
			case b.inflight <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			b.wg.Add(1)
			go func(upd telego.Update) {
				defer func() {
					<-b.inflight
					b.wg.Done()
				}()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	message := update.Message
	scope := b.chatFilter.Classify(message)
	if scope == filters.ScopeIgnored {
		return
	}

	middleware.LogMessage(message)

	profile := users.Profile{
		ID:        message.From.ID,
		Username:  message.From.Username,
		FirstName: message.From.FirstName,
	}
	cmd, isCommand := b.parser.Parse(message.Text)

	// каждое сообщение группы идёт в счётчик, в том числе команды и стикеры
	if scope == filters.ScopeGroup {
		b.engine.Observe(ctx, spawn.Message{
			ChatID:    message.Chat.ID,
			ChatTitle: message.Chat.Title,
			Sender:    profile,
			Kind:      messageKind(message),
			IsCommand: isCommand,
		})
	}

	if !isCommand || !b.parser.Addressed(cmd) {
		return
	}

	if !b.rateLimiter.Allow(profile.ID) {
		log.WithFields(log.Fields{"user_id": profile.ID, "cmd": cmd.Name}).Debug("rate limited")
		return
	}

	b.users.Touch(ctx, profile)
	b.routeCommand(ctx, message, scope, profile, cmd)
}

// messageKind — вид сообщения для фильтров счётчика.
func messageKind(m *telego.Message) spawn.MessageKind {
	switch {
	case m.Sticker != nil:
		return spawn.KindSticker
	case m.Text != "":
		return spawn.KindText
	default:
		return spawn.KindOther
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *telego.Message, scope filters.Scope, p users.Profile, cmd Command) {
	chatID := message.Chat.ID
	log.WithFields(log.Fields{
		"chat_id": chatID,
		"user_id": p.ID,
		"cmd":     cmd.Name,
		"args":    cmd.Args,
	}).Debug("routing command")

	if slices.Contains(spawn.GuessAliases, cmd.Name) {
		b.handlers.Guess.HandleGuess(ctx, chatID, message.Chat.Title, p, cmd.Args)
		return
	}

	switch cmd.Name {
	case "start", "help":
		b.out.SendText(ctx, chatID, helpText)

	case "fav", "xfav":
		b.handlers.Users.HandleFavorite(ctx, chatID, p.ID, cmd.Args)

	case "find":
		b.handlers.Users.HandleFind(ctx, chatID, cmd.Args)

	case "harem":
		b.handlers.Users.HandleHarem(ctx, chatID, p.ID)

	case "balance":
		b.handlers.Users.HandleBalance(ctx, chatID, p.ID)

	case "top":
		b.handlers.Stats.HandleTop(ctx, chatID)

	case "shop":
		b.handlers.Shop.HandleShop(ctx, chatID)

	case "buy":
		b.handlers.Shop.HandleBuy(ctx, chatID, p, cmd.Args)

	case "login":
		b.handlers.Admin.HandleLogin(ctx, chatID, p.ID, scope == filters.ScopePrivate, cmd.Args)

	case "logout":
		b.handlers.Admin.HandleLogout(ctx, chatID, p.ID)

	case "shoprefresh":
		b.handlers.Admin.HandleShopRefresh(ctx, chatID, p.ID)

	case "give":
		b.handlers.Admin.HandleGive(ctx, chatID, p.ID, cmd.Args)

	case "take":
		b.handlers.Admin.HandleTake(ctx, chatID, p.ID, cmd.Args)
	}
}
