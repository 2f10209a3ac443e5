package users

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

// flakyStore падает временной ошибкой заданное число раз.
type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
}

func (f *flakyStore) AppendInventory(ctx context.Context, p Profile, item catalog.Item) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return common.ErrTransientStore
	}
	return f.MemoryStore.AppendInventory(ctx, p, item)
}

func TestService_AppendInventoryRetriesOnce(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 1}
	svc := NewService(store, time.Second, time.Millisecond)

	if err := svc.AppendInventory(context.Background(), Profile{ID: 1}, asuna); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("calls = %d, want 2", store.calls)
	}
	u, _ := store.Get(context.Background(), 1)
	if len(u.Inventory) != 1 {
		t.Fatalf("inventory len = %d, want 1", len(u.Inventory))
	}
}

func TestService_AppendInventoryUnavailable(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 5}
	svc := NewService(store, time.Second, time.Millisecond)

	err := svc.AppendInventory(context.Background(), Profile{ID: 1}, asuna)
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("calls = %d, want 2", store.calls)
	}
}

func TestService_BalanceOfUnknownUserIsZero(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Second, time.Millisecond)
	bal, err := svc.Balance(context.Background(), 42)
	if err != nil || bal != 0 {
		t.Fatalf("Balance = %d, %v", bal, err)
	}
}

func TestService_TouchUpdatesOnlyKnownUsers(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Second, time.Millisecond)
	ctx := context.Background()

	svc.Touch(ctx, Profile{ID: 5, Username: "ghost"})
	if _, err := store.Get(ctx, 5); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("touch must not create users: %v", err)
	}

	_ = store.AppendInventory(ctx, Profile{ID: 5, FirstName: "Old"}, asuna)
	svc.Touch(ctx, Profile{ID: 5, Username: "ghost"})
	u, err := store.Get(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "ghost" || u.FirstName != "Old" || u.Wallet != 0 {
		t.Fatalf("user = %+v", u)
	}
}

func TestService_GiveAndTake(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Second, time.Millisecond)
	ctx := context.Background()

	if err := svc.Give(ctx, 1, 100); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("give to unknown: %v", err)
	}
	_ = store.UpsertProfile(ctx, Profile{ID: 1})
	if err := svc.Give(ctx, 1, -5); !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("negative give: %v", err)
	}
	if err := svc.Give(ctx, 1, 100); err != nil {
		t.Fatal(err)
	}
	if err := svc.Take(ctx, 1, 101); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("take over balance: %v", err)
	}
	if err := svc.Take(ctx, 1, 40); err != nil {
		t.Fatal(err)
	}
	bal, _ := svc.Balance(ctx, 1)
	if bal != 60 {
		t.Fatalf("balance = %d, want 60", bal)
	}

	kinds := []string{}
	for _, e := range store.Journal() {
		kinds = append(kinds, e.Kind)
	}
	if strings.Join(kinds, ",") != "admin_give,admin_take" {
		t.Fatalf("journal = %v", kinds)
	}
}

func TestService_GiveRejectsOverflow(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Second, time.Millisecond)
	ctx := context.Background()
	_ = store.UpsertProfile(ctx, Profile{ID: 1})

	if err := svc.Give(ctx, 1, math.MaxInt64); err != nil {
		t.Fatal(err)
	}
	if err := svc.Give(ctx, 1, 1); !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("overflowing give: %v", err)
	}
	bal, _ := svc.Balance(ctx, 1)
	if bal != math.MaxInt64 {
		t.Fatalf("balance = %d, want MaxInt64", bal)
	}
	if n := len(store.Journal()); n != 1 {
		t.Fatalf("journal has %d entries, want 1", n)
	}
}

func TestService_Harem(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Second, time.Millisecond)
	ctx := context.Background()

	_ = store.AppendInventory(ctx, Profile{ID: 1}, asuna)
	_ = store.AppendInventory(ctx, Profile{ID: 1}, rem)
	_ = store.AppendInventory(ctx, Profile{ID: 1}, asuna)

	if _, err := svc.SetFavorite(ctx, 1, "3"); err != nil {
		t.Fatal(err)
	}
	h, err := svc.Harem(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Total != 3 || h.Unique != 2 {
		t.Fatalf("total=%d unique=%d", h.Total, h.Unique)
	}
	if len(h.ByRarity) != 2 || h.ByRarity[0].Rarity != catalog.RarityRare || h.ByRarity[1].Rarity != catalog.RarityLegendary {
		t.Fatalf("by rarity = %+v", h.ByRarity)
	}
	if h.Favorite == nil || h.Favorite.ID != "3" {
		t.Fatalf("favorite = %+v", h.Favorite)
	}

	text := FormatHarem(h)
	if !strings.Contains(text, "3 персонажа") || !strings.Contains(text, "Rem") {
		t.Fatalf("unexpected harem text:\n%s", text)
	}
}
