package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/cache"
	"serotonyl.ru/catch-bot/internal/common"
)

func seed() *MemoryStore {
	return NewMemoryStore(
		Item{ID: "1", Name: "Asuna Yuuki", Anime: "Sword Art Online", Rarity: RarityRare},
		Item{ID: "2", Name: "Kirito", Anime: "Sword Art Online", Rarity: RarityRare},
		Item{ID: "3", Name: "Rem", Anime: "Re:Zero", Rarity: RarityLegendary},
		Item{ID: "4", Name: "Emilia", Anime: "Re:Zero", Rarity: RarityRare},
	)
}

func TestMemoryStore_SampleByRarity(t *testing.T) {
	s := seed()
	ctx := context.Background()

	got, err := s.SampleByRarity(ctx, RarityRare, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID == got[1].ID {
		t.Fatalf("expected 2 distinct items, got %+v", got)
	}
	for _, it := range got {
		if it.Rarity != RarityRare {
			t.Fatalf("wrong rarity in sample: %+v", it)
		}
	}

	// n больше популяции — отдаём всю популяцию
	got, _ = s.SampleByRarity(ctx, RarityRare, 10)
	if len(got) != 3 {
		t.Fatalf("sample capped at population: got %d, want 3", len(got))
	}

	got, _ = s.SampleByRarity(ctx, RaritySpecial, 5)
	if len(got) != 0 {
		t.Fatalf("expected empty sample, got %d", len(got))
	}
}

func TestMemoryStore_FindByID(t *testing.T) {
	s := seed()
	it, err := s.FindByID(context.Background(), "3")
	if err != nil || it.Name != "Rem" {
		t.Fatalf("FindByID = %+v, %v", it, err)
	}
	if _, err := s.FindByID(context.Background(), "404"); !errors.Is(err, common.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

type countingStore struct {
	*MemoryStore
	listCalls int
}

func (c *countingStore) ListAll(ctx context.Context) ([]Item, error) {
	c.listCalls++
	return c.MemoryStore.ListAll(ctx)
}

func TestCached_ListAllHitsStoreOnce(t *testing.T) {
	store := &countingStore{MemoryStore: seed()}
	c := NewCached(store, cache.NewMemoryCache(), time.Minute)

	for i := 0; i < 3; i++ {
		items, err := c.ListAll(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 4 {
			t.Fatalf("got %d items, want 4", len(items))
		}
	}
	if store.listCalls != 1 {
		t.Fatalf("store ListAll called %d times, want 1", store.listCalls)
	}
}

func TestValidateRarity(t *testing.T) {
	if err := ValidateRarity(RarityCommon); err != nil {
		t.Fatal(err)
	}
	if err := ValidateRarity("🟤 Mud"); !errors.Is(err, common.ErrUnknownRarity) {
		t.Fatalf("expected ErrUnknownRarity, got %v", err)
	}
}
