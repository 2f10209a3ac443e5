package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"serotonyl.ru/catch-bot/internal/features/users"
)

func TestRecordCapture(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Second)
	ctx := context.Background()

	svc.RecordCapture(ctx, -100, "Waifu Hub", users.Profile{ID: 1, Username: "kirito"})
	svc.RecordCapture(ctx, -100, "Waifu Hub", users.Profile{ID: 2, FirstName: "Asuna"})
	svc.RecordCapture(ctx, -100, "", users.Profile{ID: 1})
	svc.RecordCapture(ctx, -200, "Other", users.Profile{ID: 1})

	if got := store.UserTotal(1); got != 3 {
		t.Fatalf("user total = %d, want 3", got)
	}
	if got := store.ChannelTotal(-100); got != 3 {
		t.Fatalf("channel total = %d, want 3", got)
	}

	top, err := svc.Top(ctx, -100)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].UserID != 1 || top[0].Count != 2 || top[0].Username != "kirito" {
		t.Fatalf("top = %+v", top)
	}

	text := FormatTop(top)
	if !strings.Contains(text, "1. @kirito — 2") || !strings.Contains(text, "2. Asuna — 1") {
		t.Fatalf("unexpected top text:\n%s", text)
	}
}

type failingStore struct{ *MemoryStore }

func (failingStore) IncrementCaptureCount(context.Context, int64, users.Profile) error {
	return errors.New("boom")
}

func TestRecordCapture_ErrorsAreSwallowed(t *testing.T) {
	store := failingStore{NewMemoryStore()}
	svc := NewService(store, time.Second)

	svc.RecordCapture(context.Background(), -1, "chat", users.Profile{ID: 1})

	if got := store.ChannelTotal(-1); got != 1 {
		t.Fatalf("channel counter must still be updated, got %d", got)
	}
}
