package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/deepsafelabs/deepsafe-api/internal/avatars"
	"github.com/deepsafelabs/deepsafe-api/internal/database"
	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
	"github.com/deepsafelabs/deepsafe-api/internal/mailer"
	"github.com/deepsafelabs/deepsafe-api/internal/migrations"
	"github.com/deepsafelabs/deepsafe-api/internal/payments"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupStore returns a store over a seeded in-memory database.
func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	store := NewSQLiteStore(db)
	if err := SeedDemo(ctx, testLogger(), store); err != nil {
		t.Fatalf("seed demo content: %v", err)
	}
	return store
}

// newTestRouter mounts the full route table over a seeded store with all
// optional integrations disabled.
func newTestRouter(t *testing.T) (*chi.Mux, *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	store := setupStore(t)
	logger := testLogger()

	mail, err := mailer.New(ctx, "", "", "", logger)
	if err != nil {
		t.Fatalf("disabled mailer: %v", err)
	}
	av, err := avatars.New(ctx, "", "", logger)
	if err != nil {
		t.Fatalf("disabled avatar store: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, Deps{
		Logger:   logger,
		Store:    store,
		Admin:    store,
		DB:       store.db,
		Broker:   NewBroker(),
		Mailer:   mail,
		Avatars:  av,
		Payments: payments.New("", "http://app.test"),
		BaseURL:  "http://api.test",
		AppURL:   "http://app.test",
	})
	return r, store
}

// createPlayer provisions a profile with a username and a live session
// token.
func createPlayer(t *testing.T, store *SQLiteStore, email, username string) (deepsafe.Profile, string) {
	t.Helper()
	ctx := context.Background()

	profile, err := store.CreateProfile(ctx, email, username)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	token, err := store.CreateSession(ctx, profile.ID, sessionTTL)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return profile, token
}

// firstLevel returns the level with the lowest day number.
func firstLevel(t *testing.T, store *SQLiteStore) deepsafe.Level {
	t.Helper()
	levels, err := store.ListLevels(context.Background())
	if err != nil {
		t.Fatalf("list levels: %v", err)
	}
	if len(levels) == 0 {
		t.Fatal("no seeded levels")
	}
	return levels[0]
}
