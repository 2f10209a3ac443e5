package spawn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

func testCatalog(n int) *catalog.MemoryStore {
	store := catalog.NewMemoryStore()
	for i := 0; i < n; i++ {
		store.Add(catalog.Item{ID: fmt.Sprint(i), Name: fmt.Sprintf("Item %d", i), Rarity: catalog.RarityCommon})
	}
	return store
}

func TestRotator_NoRepeatsUntilExhausted(t *testing.T) {
	const size = 7
	r := NewRotator(testCatalog(size), time.Second)
	ctx := context.Background()

	for window := 0; window < 3; window++ {
		seen := map[string]bool{}
		for i := 0; i < size; i++ {
			it, err := r.Pick(ctx, 1)
			if err != nil {
				t.Fatal(err)
			}
			if seen[it.ID] {
				t.Fatalf("window %d: item %s repeated", window, it.ID)
			}
			seen[it.ID] = true
		}
		if r.Seen(1) != size {
			t.Fatalf("window %d: seen = %d", window, r.Seen(1))
		}
	}
	// следующий выбор открывает новое окно
	if _, err := r.Pick(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if r.Seen(1) != 1 {
		t.Fatalf("history not reset, seen = %d", r.Seen(1))
	}
}

func TestRotator_ChannelsIndependent(t *testing.T) {
	r := NewRotator(testCatalog(3), time.Second)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = r.Pick(ctx, 1)
	}
	_, _ = r.Pick(ctx, 2)
	if r.Seen(1) != 3 || r.Seen(2) != 1 {
		t.Fatalf("seen(1)=%d seen(2)=%d", r.Seen(1), r.Seen(2))
	}
}

func TestRotator_ConcurrentPicksStayUnique(t *testing.T) {
	const size = 50
	r := NewRotator(testCatalog(size), time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, err := r.Pick(ctx, 1)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[it.ID]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != size {
		t.Fatalf("distinct picks = %d, want %d", len(seen), size)
	}
}

func TestRotator_EmptyCatalog(t *testing.T) {
	r := NewRotator(catalog.NewMemoryStore(), time.Second)
	if _, err := r.Pick(context.Background(), 1); !errors.Is(err, common.ErrNoItemsAvailable) {
		t.Fatalf("expected ErrNoItemsAvailable, got %v", err)
	}
}

// blockingSource отвечает только по отмене контекста.
type blockingSource struct{ calls atomic.Int64 }

func (b *blockingSource) ListAll(ctx context.Context) ([]catalog.Item, error) {
	b.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRotator_PickBoundedByTimeout(t *testing.T) {
	r := NewRotator(&blockingSource{}, 20*time.Millisecond)
	_, err := r.Pick(context.Background(), 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Pick() error = %v, want deadline exceeded", err)
	}
}
