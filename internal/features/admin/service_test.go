package admin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
)

// дешёвые параметры, чтобы тесты не ели 64 MB на каждую проверку
var testParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32}

type ownerList []int64

func (o ownerList) IsOwner(id int64) bool {
	for _, x := range o {
		if x == id {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	hash, err := HashPassword("hunter2", testParams)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryStore(), ownerList{1}, hash)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret", testParams)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}
	if !verifyArgon2id("secret", hash) {
		t.Fatal("correct password rejected")
	}
	if verifyArgon2id("Secret", hash) {
		t.Fatal("wrong password accepted")
	}
	if verifyArgon2id("secret", "not-a-hash") {
		t.Fatal("garbage hash accepted")
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Login(ctx, 2, "hunter2"); !errors.Is(err, common.ErrNotAdmin) {
		t.Fatalf("non-owner: %v", err)
	}
	if err := svc.Authorize(ctx, 1); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("before login: %v", err)
	}
	if err := svc.Login(ctx, 1, "hunter2"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Authorize(ctx, 1); err != nil {
		t.Fatalf("after login: %v", err)
	}
	if err := svc.Logout(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Authorize(ctx, 1); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("after logout: %v", err)
	}
}

func TestLogin_LockoutAfterThreeFailures(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts; i++ {
		if err := svc.Login(ctx, 1, "wrong"); !errors.Is(err, common.ErrWrongPassword) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if err := svc.Login(ctx, 1, "hunter2"); !errors.Is(err, common.ErrTooManyAttempts) {
		t.Fatalf("locked out: %v", err)
	}

	*now = now.Add(AttemptWindow + time.Second)
	if err := svc.Login(ctx, 1, "hunter2"); err != nil {
		t.Fatalf("after lock-out window: %v", err)
	}
}

func TestSessionExpiryAndCleanup(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()
	if err := svc.Login(ctx, 1, "hunter2"); err != nil {
		t.Fatal(err)
	}

	*now = now.Add(SessionTTL)
	if err := svc.Authorize(ctx, 1); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("expired session: %v", err)
	}
	n, err := svc.Cleanup(ctx)
	if err != nil || n != 1 {
		t.Fatalf("cleanup removed %d, err %v", n, err)
	}
}

type fakeShop struct{ calls int }

func (f *fakeShop) Refresh(context.Context) (int, error) { f.calls++; return 4, nil }

type fakeWallets struct{ given, taken map[int64]int64 }

func (w *fakeWallets) Give(_ context.Context, uid, amount int64) error {
	w.given[uid] += amount
	return nil
}

func (w *fakeWallets) Take(_ context.Context, uid, amount int64) error {
	if w.given[uid] < amount {
		return common.ErrInsufficientBalance
	}
	w.given[uid] -= amount
	w.taken[uid] += amount
	return nil
}

type recordingMessenger struct{ texts []string }

func (m *recordingMessenger) SendText(_ context.Context, _ int64, text string) {
	m.texts = append(m.texts, text)
}

func (m *recordingMessenger) last() string { return m.texts[len(m.texts)-1] }

func TestHandler_OwnerCommands(t *testing.T) {
	svc, _ := newTestService(t)
	shop := &fakeShop{}
	wallets := &fakeWallets{given: map[int64]int64{}, taken: map[int64]int64{}}
	out := &recordingMessenger{}
	h := NewHandler(svc, shop, wallets, out)
	ctx := context.Background()

	h.HandleShopRefresh(ctx, 1, 1)
	if shop.calls != 0 || !strings.Contains(out.last(), "сессия истекла") {
		t.Fatalf("refresh without session: calls=%d reply=%q", shop.calls, out.last())
	}

	h.HandleLogin(ctx, -100, 1, false, []string{"hunter2"})
	if !strings.Contains(out.last(), "личных") {
		t.Fatalf("group login reply = %q", out.last())
	}
	h.HandleLogin(ctx, 1, 1, true, []string{"hunter2"})
	if !strings.HasPrefix(out.last(), "✅") {
		t.Fatalf("login reply = %q", out.last())
	}

	h.HandleShopRefresh(ctx, 1, 1)
	if shop.calls != 1 || !strings.Contains(out.last(), "4") {
		t.Fatalf("refresh: calls=%d reply=%q", shop.calls, out.last())
	}

	h.HandleGive(ctx, 1, 1, []string{"42", "100"})
	if wallets.given[42] != 100 {
		t.Fatalf("given = %d", wallets.given[42])
	}
	h.HandleGive(ctx, 1, 1, []string{"42", "-5"})
	if !strings.Contains(out.last(), "Формат") {
		t.Fatalf("bad amount reply = %q", out.last())
	}
	h.HandleTake(ctx, 1, 1, []string{"42", "500"})
	if !strings.Contains(out.last(), common.ErrInsufficientBalance.Error()) {
		t.Fatalf("take over balance reply = %q", out.last())
	}
	h.HandleTake(ctx, 1, 1, []string{"42", "30"})
	if wallets.taken[42] != 30 {
		t.Fatalf("taken = %d", wallets.taken[42])
	}

	// не владелец
	h.HandleGive(ctx, 2, 2, []string{"42", "100"})
	if !strings.Contains(out.last(), common.ErrNotAdmin.Error()) {
		t.Fatalf("non-owner reply = %q", out.last())
	}
}
