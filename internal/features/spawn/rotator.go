package spawn

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// Rotator выбирает персонажа для спавна так, чтобы в чате не было повторов,
// пока не пройден весь каталог. Потом история чата сбрасывается.
type Rotator struct {
	items   ItemSource
	timeout time.Duration
	intn    func(n int) int

	history *registry[int64, rotation]
}

type rotation struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRotator создаёт ротатор поверх каталога. timeout ограничивает чтение
// каталога: Pick вызывается под замком чата.
func NewRotator(items ItemSource, timeout time.Duration) *Rotator {
	return &Rotator{
		items:   items,
		timeout: timeout,
		intn:    rand.IntN,
		history: newRegistry[int64](func() *rotation {
			return &rotation{seen: make(map[string]struct{})}
		}),
	}
}

// Pick выбирает следующего персонажа. Чтение истории, сброс при исчерпании
// и запись выбора выполняются под замком чата.
func (r *Rotator) Pick(ctx context.Context, chatID int64) (catalog.Item, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("чтение каталога: %w", err)
	}
	if len(all) == 0 {
		return catalog.Item{}, common.ErrNoItemsAvailable
	}

	h := r.history.get(chatID)
	h.mu.Lock()
	defer h.mu.Unlock()

	candidates := make([]catalog.Item, 0, len(all))
	for _, it := range all {
		if _, ok := h.seen[it.ID]; !ok {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		clear(h.seen)
		candidates = all
	}

	pick := candidates[r.intn(len(candidates))]
	h.seen[pick.ID] = struct{}{}
	return pick, nil
}

func (r *Rotator) listAll(ctx context.Context) ([]catalog.Item, error) {
	if r.timeout <= 0 {
		return r.items.ListAll(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.items.ListAll(ctx)
}

// Seen — сколько персонажей уже показано в текущем окне ротации.
func (r *Rotator) Seen(chatID int64) int {
	h := r.history.get(chatID)
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}
