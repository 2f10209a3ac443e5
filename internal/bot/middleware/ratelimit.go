package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту команд на пользователя (token bucket).
// Обычные сообщения чата через него не идут: их учитывает счётчик спавна.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
	rps      rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создаёт лимитер и запускает фоновую очистку простаивающих ведёр.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := newRateLimiter(rps, burst, time.Now)
	go rl.cleanup()
	return rl
}

func newRateLimiter(rps float64, burst int, now func() time.Time) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[int64]*userLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      now,
		stopCh:   make(chan struct{}),
	}
}

// Close останавливает фоновую горутину очистки.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow расходует токен пользователя. false — команду игнорируем.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

// evictIdle удаляет ведра пользователей, молчавших дольше idle.
func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idle)
	removed := 0
	for userID, ul := range rl.limiters {
		if ul.lastSeen.Before(cutoff) {
			delete(rl.limiters, userID)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}
