package database

import (
	"context"
	"os"
	"testing"

	"eventbot/internal/infrastructure/storetest"
	"eventbot/internal/ports/output"
)

// TestContract needs a disposable PostgreSQL database; tables are truncated
// before every subtest.
func TestContract(t *testing.T) {
	dsn := os.Getenv("EVENTBOT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("EVENTBOT_TEST_DATABASE_URL not set")
	}
	if err := RunMigrations(dsn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	storetest.Run(t, func(t *testing.T) output.EventRepository {
		if _, err := pool.Exec(ctx, `TRUNCATE events RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewEventRepository(pool)
	})
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"party":   "party",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
