package migrations_test

import (
	"context"
	"testing"

	"github.com/deepsafelabs/deepsafe-api/internal/database"
	"github.com/deepsafelabs/deepsafe-api/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	// Verify all tables exist by querying sqlite_master.
	want := []string{
		"profiles", "sessions", "login_tokens", "modules", "levels",
		"questions", "user_progress", "challenges", "friendships",
		"admins", "admin_sessions",
	}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

func TestPendingChallengeUniqueness(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	exec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.Exec(q, args...); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}

	exec(`INSERT INTO profiles (id, email) VALUES ('u1', 'a@x.test'), ('u2', 'b@x.test')`)
	exec(`INSERT INTO modules (id, title, order_index) VALUES ('m1', 'M', 1)`)
	exec(`INSERT INTO levels (id, module_id, day_number, title) VALUES ('l1', 'm1', 1, 'Day 1')`)
	exec(`INSERT INTO challenges (id, challenger_id, opponent_id, quiz_id) VALUES ('c1', 'u1', 'u2', 'l1')`)

	// Second pending challenge for the same triple must be rejected.
	_, err = db.Exec(`INSERT INTO challenges (id, challenger_id, opponent_id, quiz_id) VALUES ('c2', 'u1', 'u2', 'l1')`)
	if err == nil {
		t.Fatal("expected unique constraint violation for duplicate pending challenge")
	}

	// Resolving the first frees the slot.
	exec(`UPDATE challenges SET status = 'completed' WHERE id = 'c1'`)
	exec(`INSERT INTO challenges (id, challenger_id, opponent_id, quiz_id) VALUES ('c3', 'u1', 'u2', 'l1')`)
}
