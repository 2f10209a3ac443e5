package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeShop struct {
	calls int
	err   error
}

func (f *fakeShop) Refresh(context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

type fakeSweeper struct{ calls int }

func (f *fakeSweeper) Sweep(time.Time) int { f.calls++; return 2 }

type fakeSessions struct{ calls int }

func (f *fakeSessions) Cleanup(context.Context) (int64, error) { f.calls++; return 1, nil }

func TestScheduler_StartRefreshesShopOnce(t *testing.T) {
	shop := &fakeShop{}
	s := NewScheduler("UTC", "0 0 * * *", shop, &fakeSweeper{}, &fakeSessions{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if shop.calls != 1 {
		t.Fatalf("Refresh called %d times at start, want 1", shop.calls)
	}
}

func TestScheduler_InvalidCron(t *testing.T) {
	shop := &fakeShop{}
	s := NewScheduler("UTC", "every midnight", shop, &fakeSweeper{}, &fakeSessions{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
	if shop.calls != 0 {
		t.Fatal("shop must not be refreshed when the schedule is rejected")
	}
}

func TestScheduler_JobsSurviveErrors(t *testing.T) {
	shop := &fakeShop{err: errors.New("boom")}
	sweeper, sessions := &fakeSweeper{}, &fakeSessions{}
	s := NewScheduler("UTC", "0 0 * * *", shop, sweeper, sessions)

	s.refreshShop(context.Background())
	s.sweep(context.Background())

	if shop.calls != 1 || sweeper.calls != 1 || sessions.calls != 1 {
		t.Fatalf("calls: shop=%d sweep=%d sessions=%d", shop.calls, sweeper.calls, sessions.calls)
	}
}
