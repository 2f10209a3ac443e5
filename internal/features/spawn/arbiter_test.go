package spawn

import (
	"errors"
	"sync"
	"testing"

	"serotonyl.ru/catch-bot/internal/common"
	"serotonyl.ru/catch-bot/internal/features/catalog"
)

var asuna = catalog.Item{ID: "1", Name: "Asuna Yuuki", Anime: "Sword Art Online", Rarity: catalog.RarityRare}

func TestArbiter_Lifecycle(t *testing.T) {
	a := NewArbiter()

	if o, _, _ := a.AttemptClaim(1, "asuna"); o != OutcomeNoActiveSpawn {
		t.Fatalf("idle channel: %s", o)
	}

	a.Publish(1, asuna)
	if o, _, err := a.AttemptClaim(1, "Asuna()"); o != OutcomeWrong || !errors.Is(err, common.ErrInvalidGuess) {
		t.Fatalf("forbidden guess: %s %v", o, err)
	}
	if o, _, _ := a.AttemptClaim(1, "kirito"); o != OutcomeWrong {
		t.Fatalf("wrong guess: %s", o)
	}

	o, ticket, err := a.AttemptClaim(1, "yuuki asuna")
	if o != OutcomeWin || ticket == nil || err != nil {
		t.Fatalf("winning guess: %s %v %v", o, ticket, err)
	}
	// запись ещё идёт
	if o, _, _ := a.AttemptClaim(1, "asuna"); o != OutcomeAlreadyClaimed {
		t.Fatalf("in-flight claim: %s", o)
	}
	ticket.Finalize()
	if o, _, _ := a.AttemptClaim(1, "asuna"); o != OutcomeNoActiveSpawn {
		t.Fatalf("after finalize: %s", o)
	}
}

func TestArbiter_RollbackMakesSpawnGuessable(t *testing.T) {
	a := NewArbiter()
	a.Publish(1, asuna)

	_, ticket, _ := a.AttemptClaim(1, "asuna")
	ticket.Rollback()

	if _, ok := a.Active(1); !ok {
		t.Fatal("spawn must be active after rollback")
	}
	if o, _, _ := a.AttemptClaim(1, "asuna"); o != OutcomeWin {
		t.Fatalf("after rollback: %s", o)
	}
}

func TestArbiter_PublishSupersedes(t *testing.T) {
	a := NewArbiter()
	a.Publish(1, asuna)
	_, ticket, _ := a.AttemptClaim(1, "asuna")

	rem := catalog.Item{ID: "2", Name: "Rem"}
	a.Publish(1, rem)
	// финализация старого билета не трогает новый спавн
	ticket.Finalize()

	it, ok := a.Active(1)
	if !ok || it.ID != "2" {
		t.Fatalf("active = %+v %v", it, ok)
	}
}

func TestArbiter_ExactlyOneWinner(t *testing.T) {
	a := NewArbiter()
	a.Publish(1, asuna)

	const n = 200
	var wg sync.WaitGroup
	results := make(chan ClaimOutcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, ticket, _ := a.AttemptClaim(1, "asuna yuuki")
			if ticket != nil {
				ticket.Finalize()
			}
			results <- o
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for o := range results {
		switch o {
		case OutcomeWin:
			wins++
		case OutcomeAlreadyClaimed, OutcomeNoActiveSpawn:
		default:
			t.Fatalf("unexpected outcome %s", o)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}
