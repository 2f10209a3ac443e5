package users

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

var asuna = catalog.Item{ID: "1", Name: "Asuna Yuuki", Anime: "Sword Art Online", Rarity: catalog.RarityRare}

func TestAppendInventory_CreatesAndPreserves(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.AppendInventory(ctx, Profile{ID: 7, Username: "kirito"}, asuna); err != nil {
		t.Fatal(err)
	}
	if err := s.Credit(ctx, 7, 500, TxAdminGive); err != nil {
		t.Fatal(err)
	}
	// повторная поимка без username не затирает профиль и кошелёк
	if err := s.AppendInventory(ctx, Profile{ID: 7, FirstName: "Kazuto"}, asuna); err != nil {
		t.Fatal(err)
	}

	u, err := s.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if u.Wallet != 500 || u.Username != "kirito" || u.FirstName != "Kazuto" {
		t.Fatalf("unexpected user %+v", u)
	}
	if len(u.Inventory) != 2 {
		t.Fatalf("inventory len = %d, want 2", len(u.Inventory))
	}
}

func TestConditionalDebit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.UpsertProfile(ctx, Profile{ID: 1})
	_ = s.Credit(ctx, 1, 100, TxAdminGive)

	ok, err := s.ConditionalDebit(ctx, 1, 150, TxAdminTake)
	if err != nil || ok {
		t.Fatalf("debit over balance: ok=%v err=%v", ok, err)
	}
	ok, err = s.ConditionalDebit(ctx, 1, 100, TxAdminTake)
	if err != nil || !ok {
		t.Fatalf("debit of full balance: ok=%v err=%v", ok, err)
	}
	if _, err := s.ConditionalDebit(ctx, 1, 0, TxAdminTake); !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("zero debit: %v", err)
	}
	u, _ := s.Get(ctx, 1)
	if u.Wallet != 0 {
		t.Fatalf("wallet = %d, want 0", u.Wallet)
	}
}

func TestPurchase_Outcomes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Purchase(ctx, 1, asuna, 100, "l1"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}

	_ = s.UpsertProfile(ctx, Profile{ID: 1})
	if _, err := s.Purchase(ctx, 1, asuna, 100, "l1"); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("empty wallet: %v", err)
	}

	_ = s.Credit(ctx, 1, 150, TxAdminGive)
	bal, err := s.Purchase(ctx, 1, asuna, 100, "l1")
	if err != nil || bal != 50 {
		t.Fatalf("purchase: bal=%d err=%v", bal, err)
	}
	if _, err := s.Purchase(ctx, 1, asuna, 10, "l1"); !errors.Is(err, common.ErrAlreadyOwned) {
		t.Fatalf("second purchase: %v", err)
	}
}

func TestPurchase_ConcurrentNeverNegative(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.UpsertProfile(ctx, Profile{ID: 1})
	_ = s.Credit(ctx, 1, 250, TxAdminGive)

	items := []catalog.Item{
		{ID: "a", Rarity: catalog.RarityCommon},
		{ID: "b", Rarity: catalog.RarityCommon},
		{ID: "c", Rarity: catalog.RarityCommon},
	}

	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(it catalog.Item) {
			defer wg.Done()
			if _, err := s.Purchase(ctx, 1, it, 100, it.ID); err == nil {
				ok.Add(1)
			}
		}(items[i%len(items)])
	}
	wg.Wait()

	u, _ := s.Get(ctx, 1)
	if u.Wallet < 0 {
		t.Fatalf("wallet went negative: %d", u.Wallet)
	}
	if ok.Load() != 2 || u.Wallet != 50 {
		t.Fatalf("successes = %d, wallet = %d; want 2 and 50", ok.Load(), u.Wallet)
	}
	counts := map[string]int{}
	for _, it := range u.Inventory {
		counts[it.ID]++
	}
	for id, n := range counts {
		if n > 1 {
			t.Fatalf("item %s bought %d times", id, n)
		}
	}
}

func TestSetFavorite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.SetFavorite(ctx, 1, "1"); !errors.Is(err, common.ErrNotOwned) {
		t.Fatalf("unknown user: %v", err)
	}
	_ = s.AppendInventory(ctx, Profile{ID: 1}, asuna)
	if err := s.SetFavorite(ctx, 1, "2"); !errors.Is(err, common.ErrNotOwned) {
		t.Fatalf("not owned: %v", err)
	}
	if err := s.SetFavorite(ctx, 1, "1"); err != nil {
		t.Fatal(err)
	}
	u, _ := s.Get(ctx, 1)
	if u.FavoriteID != "1" {
		t.Fatalf("favorite = %q", u.FavoriteID)
	}
}
