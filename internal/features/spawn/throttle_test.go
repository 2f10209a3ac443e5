package spawn

import (
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/features/users"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestThrottle() (*Throttle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewThrottle(100, 10, 10*time.Minute, clock.now), clock
}

func text(chat, sender int64) Message {
	return Message{ChatID: chat, Sender: users.Profile{ID: sender}, Kind: KindText}
}

var defaultPolicy = Policy{Frequency: 100}

func TestThrottle_SpawnsEveryFrequencyMessages(t *testing.T) {
	th, _ := newTestThrottle()
	p := Policy{Frequency: 5}

	spawns := 0
	for i := 0; i < 12; i++ {
		// чередуем отправителей, чтобы не сработал антиспам
		d := th.Observe(text(1, int64(i%2)), p)
		if d.Spawn {
			spawns++
			if i != 4 && i != 9 {
				t.Fatalf("spawn at message %d", i+1)
			}
		}
	}
	if spawns != 2 {
		t.Fatalf("spawns = %d, want 2", spawns)
	}
}

func TestThrottle_StickersAndCommandsFiltered(t *testing.T) {
	th, _ := newTestThrottle()

	// 99 стикеров и 100 текстов при include_stickers=false: ровно один спавн,
	// на сотом тексте
	spawns := 0
	for i := 0; i < 99; i++ {
		sticker := text(1, int64(i%3))
		sticker.Kind = KindSticker
		if d := th.Observe(sticker, defaultPolicy); d.Counted || d.Spawn {
			t.Fatalf("sticker %d was counted", i)
		}
	}
	for i := 0; i < 100; i++ {
		d := th.Observe(text(1, int64(i%3)), defaultPolicy)
		if d.Spawn {
			spawns++
			if i != 99 {
				t.Fatalf("spawn at text %d", i+1)
			}
		}
	}
	if spawns != 1 {
		t.Fatalf("spawns = %d, want 1", spawns)
	}

	cmd := text(2, 1)
	cmd.IsCommand = true
	if d := th.Observe(cmd, defaultPolicy); d.Counted {
		t.Fatal("command must be ignored when include_commands=false")
	}
	if d := th.Observe(cmd, Policy{Frequency: 100, IncludeCommands: true}); !d.Counted {
		t.Fatal("command must be counted when include_commands=true")
	}
}

func TestThrottle_AntiSpam(t *testing.T) {
	th, clock := newTestThrottle()

	for i := 1; i <= 9; i++ {
		if d := th.Observe(text(1, 42), defaultPolicy); !d.Counted || d.Warn {
			t.Fatalf("message %d: %+v", i, d)
		}
	}
	d := th.Observe(text(1, 42), defaultPolicy)
	if d.Counted || !d.Warn {
		t.Fatalf("10th message must be dropped with a warning, got %+v", d)
	}
	if !th.InCooldown(1, 42) {
		t.Fatal("sender must be in cool-down")
	}

	// дальше молча отбрасываем, предупреждение только одно
	clock.advance(9 * time.Minute)
	for i := 0; i < 5; i++ {
		if d := th.Observe(text(1, 42), defaultPolicy); d.Counted || d.Warn {
			t.Fatalf("cool-down message %d: %+v", i, d)
		}
	}
	// другие отправители и другие чаты не затронуты
	if d := th.Observe(text(1, 7), defaultPolicy); !d.Counted {
		t.Fatal("other sender must be counted")
	}
	if d := th.Observe(text(2, 42), defaultPolicy); !d.Counted {
		t.Fatal("same sender in another chat must be counted")
	}

	// 600 секунд от десятого сообщения: снова считается, серия с 1
	clock.advance(time.Minute)
	for i := 1; i <= 9; i++ {
		if d := th.Observe(text(1, 42), defaultPolicy); !d.Counted {
			t.Fatalf("after cool-down message %d not counted", i)
		}
	}
	if d := th.Observe(text(1, 42), defaultPolicy); !d.Warn {
		t.Fatal("second violation must warn again")
	}
}

func TestThrottle_DifferentSenderResetsStreak(t *testing.T) {
	th, _ := newTestThrottle()
	for i := 0; i < 9; i++ {
		th.Observe(text(1, 42), defaultPolicy)
	}
	th.Observe(text(1, 7), defaultPolicy)
	for i := 1; i <= 9; i++ {
		if d := th.Observe(text(1, 42), defaultPolicy); !d.Counted || d.Warn {
			t.Fatalf("message %d after reset: %+v", i, d)
		}
	}
}

func TestThrottle_NonPositiveFrequencyUsesDefault(t *testing.T) {
	th := NewThrottle(3, 10, time.Minute, nil)
	spawned := false
	for i := 0; i < 3; i++ {
		spawned = th.Observe(text(1, int64(i)), Policy{Frequency: 0}).Spawn
	}
	if !spawned {
		t.Fatal("expected spawn on the default frequency")
	}
}

func TestThrottle_Sweep(t *testing.T) {
	th, clock := newTestThrottle()
	for i := 0; i < 10; i++ {
		th.Observe(text(1, 42), defaultPolicy)
	}
	if n := th.Sweep(clock.t); n != 0 {
		t.Fatalf("active cool-down swept: %d", n)
	}
	clock.advance(10 * time.Minute)
	if n := th.Sweep(clock.t); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if d := th.Observe(text(1, 42), defaultPolicy); !d.Counted {
		t.Fatal("sender must be counted after sweep")
	}
}
