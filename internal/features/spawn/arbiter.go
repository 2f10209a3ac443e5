package spawn

import (
	"sync"
	"sync/atomic"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// Arbiter хранит активный спавн чата и гарантирует ровно одного победителя.
//
// Состояния чата: Idle (нет спавна) → Spawned → Claimed → Idle. Переход
// Spawned → Claimed — один CompareAndSwap флага claimed. Победитель получает
// Ticket: после записи в коллекцию Finalize очищает спавн, при ошибке
// записи Rollback возвращает спавн в игру.
type Arbiter struct {
	slots *registry[int64, slot]
}

type slot struct {
	mu     sync.Mutex
	seq    uint64
	active *activeSpawn
}

type activeSpawn struct {
	seq     uint64
	item    catalog.Item
	claimed atomic.Bool
}

// Ticket — право победителя на запись персонажа.
type Ticket struct {
	ChatID int64
	Item   catalog.Item

	slot  *slot
	spawn *activeSpawn
}

// NewArbiter создаёт арбитра.
func NewArbiter() *Arbiter {
	return &Arbiter{slots: newRegistry[int64](func() *slot { return &slot{} })}
}

// Publish делает персонажа активным. Предыдущий спавн, пойманный или нет,
// вытесняется.
func (a *Arbiter) Publish(chatID int64, item catalog.Item) {
	s := a.slots.get(chatID)
	s.mu.Lock()
	s.seq++
	s.active = &activeSpawn{seq: s.seq, item: item}
	s.mu.Unlock()
}

// Active возвращает активного непойманного персонажа.
func (a *Arbiter) Active(chatID int64) (catalog.Item, bool) {
	s := a.slots.get(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.claimed.Load() {
		return catalog.Item{}, false
	}
	return s.active.item, true
}

// AttemptClaim проверяет догадку. Только для OutcomeWin возвращается Ticket.
// Недопустимая догадка даёт OutcomeWrong и common.ErrInvalidGuess.
func (a *Arbiter) AttemptClaim(chatID int64, guess string) (ClaimOutcome, *Ticket, error) {
	s := a.slots.get(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()

	sp := s.active
	if sp == nil {
		return OutcomeNoActiveSpawn, nil, nil
	}
	if sp.claimed.Load() {
		return OutcomeAlreadyClaimed, nil, nil
	}
	if forbiddenGuess(guess) {
		return OutcomeWrong, nil, common.ErrInvalidGuess
	}
	if !nameMatches(sp.item.Name, guess) {
		return OutcomeWrong, nil, nil
	}
	if !sp.claimed.CompareAndSwap(false, true) {
		return OutcomeAlreadyClaimed, nil, nil
	}
	return OutcomeWin, &Ticket{ChatID: chatID, Item: sp.item, slot: s, spawn: sp}, nil
}

// Finalize закрывает спавн после успешной записи: следующие догадки получат
// OutcomeNoActiveSpawn. Если спавн уже вытеснен новым, ничего не делает.
func (t *Ticket) Finalize() {
	t.slot.mu.Lock()
	if t.slot.active == t.spawn {
		t.slot.active = nil
	}
	t.slot.mu.Unlock()
}

// Rollback возвращает спавн в игру после неудачной записи.
func (t *Ticket) Rollback() {
	t.spawn.claimed.Store(false)
}
