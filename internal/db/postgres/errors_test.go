package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"serotonyl.ru/catch-bot/internal/common"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), transient: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, transient: true},
		{name: "connection class", err: &pgconn.PgError{Code: "08006"}, transient: true},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, transient: false},
		{name: "plain", err: errors.New("boom"), transient: false},
	}
	for _, tt := range tests {
		got := Classify(tt.err)
		if common.IsTransient(got) != tt.transient {
			t.Errorf("%s: transient=%v, want %v", tt.name, common.IsTransient(got), tt.transient)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("%s: original error lost", tt.name)
		}
	}
	if Classify(nil) != nil {
		t.Fatal("Classify(nil) must be nil")
	}
}

func TestIsOutOfRange(t *testing.T) {
	if !IsOutOfRange(fmt.Errorf("update: %w", &pgconn.PgError{Code: "22003"})) {
		t.Fatal("22003 must be out of range")
	}
	if IsOutOfRange(&pgconn.PgError{Code: "23514"}) || IsOutOfRange(errors.New("boom")) {
		t.Fatal("other errors are not out of range")
	}
}
