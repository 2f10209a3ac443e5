package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/cache"
	"serotonyl.ru/catch-bot/internal/config"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

func newService(store *MemoryStore, ttl time.Duration) *Service {
	defaults := Defaults(&config.Config{SpawnDefaultFrequency: 100})
	return NewService(store, cache.NewMemoryCache(), ttl, time.Second, defaults)
}

func TestPolicy_Resolution(t *testing.T) {
	store := NewMemoryStore()
	svc := newService(store, 0)
	ctx := context.Background()

	if err := svc.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if p := svc.Policy(ctx, 1); p.Frequency != 100 || p.IncludeStickers || p.IncludeCommands {
		t.Fatalf("defaults: %+v", p)
	}

	store.Set(Settings{GlobalFrequency: 50, IncludeStickers: true})
	store.SetChannelFrequency(2, 20)
	store.SetChannelFrequency(3, -1)

	if p := svc.Policy(ctx, 1); p.Frequency != 50 || !p.IncludeStickers {
		t.Fatalf("global: %+v", p)
	}
	if p := svc.Policy(ctx, 2); p.Frequency != 20 {
		t.Fatalf("override: %+v", p)
	}
	if p := svc.Policy(ctx, 3); p.Frequency != 50 {
		t.Fatalf("non-positive override must be ignored: %+v", p)
	}
}

func TestCurrent_FallsBackOnStoreError(t *testing.T) {
	store := NewMemoryStore()
	store.Set(Settings{GlobalFrequency: 5, ShopEnabled: true})
	store.FailWith(errors.New("db down"))
	svc := newService(store, 0)

	st := svc.Current(context.Background())
	if st.GlobalFrequency != 100 || st.ShopEnabled {
		t.Fatalf("fallback = %+v", st)
	}
	if p := svc.Policy(context.Background(), 1); p.Frequency != 100 {
		t.Fatalf("policy on failure = %+v", p)
	}
}

func TestCurrent_IsCached(t *testing.T) {
	store := NewMemoryStore()
	store.Set(Settings{GlobalFrequency: 5})
	svc := newService(store, time.Minute)
	ctx := context.Background()

	if got := svc.Current(ctx).GlobalFrequency; got != 5 {
		t.Fatalf("first read = %d", got)
	}
	store.Set(Settings{GlobalFrequency: 7})
	if got := svc.Current(ctx).GlobalFrequency; got != 5 {
		t.Fatalf("cached read = %d, want 5", got)
	}
}

func TestShop(t *testing.T) {
	store := NewMemoryStore()
	store.Set(Settings{GlobalFrequency: 100, ShopEnabled: true, ShopRarities: map[string]int{catalog.RarityRare: 3}})
	svc := newService(store, 0)

	enabled, rarities := svc.Shop(context.Background())
	if !enabled || rarities[catalog.RarityRare] != 3 {
		t.Fatalf("shop = %v %v", enabled, rarities)
	}
}
