// Package spawn — игровое ядро: счётчик сообщений с антиспамом (Throttle),
// выбор персонажа без повторов (Rotator) и арбитр поимки (Arbiter).
// Engine связывает их в поток «сообщение → спавн → догадка → поимка».
//
// Состояние каждого чата независимо: разные чаты не блокируют друг друга,
// вызовы для одного чата сериализуются.
package spawn

import (
	"context"

	"serotonyl.ru/catch-bot/internal/features/catalog"
	"serotonyl.ru/catch-bot/internal/features/users"
)

// MessageKind — тип входящего сообщения для фильтра счётчика.
type MessageKind int

const (
	KindText MessageKind = iota
	KindSticker
	KindOther
)

// Message — входящее сообщение группы, как его видит счётчик.
type Message struct {
	ChatID    int64
	ChatTitle string
	Sender    users.Profile
	Kind      MessageKind
	IsCommand bool
}

// Policy — настройки счётчика, читаются заново на каждое сообщение.
type Policy struct {
	Frequency       int // сообщений между спавнами
	IncludeStickers bool
	IncludeCommands bool
}

// Decision — результат Throttle.Observe. Throttle ничего не вызывает сам.
type Decision struct {
	Counted bool // сообщение учтено счётчиком
	Spawn   bool // пора спавнить
	Warn    bool // отправитель только что попал в кулдаун
}

// ClaimOutcome — исход догадки.
type ClaimOutcome string

const (
	OutcomeWin            ClaimOutcome = "win"
	OutcomeWrong          ClaimOutcome = "wrong"
	OutcomeAlreadyClaimed ClaimOutcome = "already_claimed"
	OutcomeNoActiveSpawn  ClaimOutcome = "no_active_spawn"
)

// ClaimResult — исход догадки и пойманный персонаж (для win).
type ClaimResult struct {
	Outcome ClaimOutcome
	Item    catalog.Item
}

// Notifier — исходящие сообщения движка. Ошибки доставки не откатывают состояние.
type Notifier interface {
	AnnounceSpawn(ctx context.Context, chatID int64, item catalog.Item) error
	AnnounceCapture(ctx context.Context, chatID int64, winner users.Profile, item catalog.Item) error
	WarnSpam(ctx context.Context, chatID int64, sender users.Profile) error
}

// PolicySource отдаёт актуальную политику счётчика для чата.
type PolicySource interface {
	Policy(ctx context.Context, chatID int64) Policy
}

// ItemSource — каталог для ротатора.
type ItemSource interface {
	ListAll(ctx context.Context) ([]catalog.Item, error)
}

// Inventory — запись пойманного персонажа в коллекцию.
type Inventory interface {
	AppendInventory(ctx context.Context, p users.Profile, item catalog.Item) error
}

// CaptureRecorder — счётчики поимок (fire-and-forget).
type CaptureRecorder interface {
	RecordCapture(ctx context.Context, chatID int64, chatTitle string, winner users.Profile)
}
