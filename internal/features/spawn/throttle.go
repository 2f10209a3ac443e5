package spawn

import (
	"sync"
	"time"
)

// Throttle считает сообщения по чатам и решает, когда спавнить.
//
// Антиспам: если один отправитель пишет spamThreshold учитываемых сообщений
// подряд, он уходит в кулдаун на spamCooldown с момента первого нарушения.
// Сообщения в кулдауне молча отбрасываются. Сообщение другого отправителя
// сбрасывает серию до 1.
type Throttle struct {
	defaultFrequency int
	spamThreshold    int
	spamCooldown     time.Duration
	now              func() time.Time

	chats *registry[int64, throttleState]
}

type throttleState struct {
	mu         sync.Mutex
	counter    int // учтённые сообщения с последнего спавна
	lastSender int64
	streak     int
	cooldowns  map[int64]time.Time // отправитель → конец кулдауна
}

// NewThrottle создаёт счётчик. now == nil — time.Now.
func NewThrottle(defaultFrequency, spamThreshold int, spamCooldown time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		defaultFrequency: defaultFrequency,
		spamThreshold:    spamThreshold,
		spamCooldown:     spamCooldown,
		now:              now,
		chats: newRegistry[int64](func() *throttleState {
			return &throttleState{cooldowns: make(map[int64]time.Time)}
		}),
	}
}

// Observe учитывает сообщение и возвращает решение.
func (t *Throttle) Observe(msg Message, p Policy) Decision {
	if msg.Kind == KindSticker && !p.IncludeStickers {
		return Decision{}
	}
	if msg.IsCommand && !p.IncludeCommands {
		return Decision{}
	}

	now := t.now()
	sender := msg.Sender.ID
	st := t.chats.get(msg.ChatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if until, ok := st.cooldowns[sender]; ok {
		if now.Before(until) {
			return Decision{}
		}
		// кулдаун истёк: серия начинается заново с этого сообщения
		delete(st.cooldowns, sender)
		st.lastSender, st.streak = sender, 1
	} else if sender == st.lastSender && st.streak > 0 {
		st.streak++
	} else {
		st.lastSender, st.streak = sender, 1
	}

	if st.streak >= t.spamThreshold {
		st.cooldowns[sender] = now.Add(t.spamCooldown)
		return Decision{Warn: true}
	}

	st.counter++
	freq := p.Frequency
	if freq <= 0 {
		freq = t.defaultFrequency
	}
	if st.counter >= freq {
		st.counter = 0
		return Decision{Counted: true, Spawn: true}
	}
	return Decision{Counted: true}
}

// InCooldown сообщает, молчит ли отправитель в чате.
func (t *Throttle) InCooldown(chatID, senderID int64) bool {
	st := t.chats.get(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()
	until, ok := st.cooldowns[senderID]
	return ok && t.now().Before(until)
}

// Sweep удаляет истёкшие кулдауны и возвращает их число.
func (t *Throttle) Sweep(now time.Time) int {
	removed := 0
	for _, st := range t.chats.snapshot() {
		st.mu.Lock()
		for sender, until := range st.cooldowns {
			if !now.Before(until) {
				delete(st.cooldowns, sender)
				// истёкший кулдаун не должен оставлять за собой серию
				if st.lastSender == sender {
					st.streak = 0
				}
				removed++
			}
		}
		st.mu.Unlock()
	}
	return removed
}
