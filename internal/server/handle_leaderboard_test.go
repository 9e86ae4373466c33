package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func getLeaderboard(t *testing.T, r http.Handler, token, scope string) leaderboardResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?scope="+scope, nil)
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp leaderboardResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func TestLeaderboardOrdering(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	first, token := createPlayer(t, store, "first@example.com", "first")
	second, _ := createPlayer(t, store, "second@example.com", "second")
	third, _ := createPlayer(t, store, "third@example.com", "third")

	level := firstLevel(t, store)
	store.CompleteLevel(ctx, first.ID, level.ID, 100, 300)
	store.CompleteLevel(ctx, second.ID, level.ID, 100, 200)
	store.CompleteLevel(ctx, third.ID, level.ID, 100, 100)

	resp := getLeaderboard(t, r, token, "global")
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if resp.Entries[i].Username != want {
			t.Errorf("rank %d: expected %q, got %q", i+1, want, resp.Entries[i].Username)
		}
		if resp.Entries[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, resp.Entries[i].Rank)
		}
	}
}

func TestLeaderboardFriendsScope(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	me, token := createPlayer(t, store, "me@example.com", "me")
	friend, _ := createPlayer(t, store, "friend@example.com", "friend")
	stranger, _ := createPlayer(t, store, "stranger@example.com", "stranger")

	level := firstLevel(t, store)
	store.CompleteLevel(ctx, friend.ID, level.ID, 100, 500)
	store.CompleteLevel(ctx, stranger.ID, level.ID, 100, 900)

	if err := store.CreateFriendRequest(ctx, me.ID, friend.ID); err != nil {
		t.Fatalf("friend request: %v", err)
	}
	if err := store.AcceptFriendRequest(ctx, friend.ID, me.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	resp := getLeaderboard(t, r, token, "friends")
	if len(resp.Entries) != 2 {
		t.Fatalf("friends board should hold me and my friend, got %d entries", len(resp.Entries))
	}
	for _, e := range resp.Entries {
		if e.Username == "stranger" {
			t.Error("strangers must not appear on the friends board")
		}
	}
	if resp.Entries[0].Username != "friend" {
		t.Errorf("expected friend on top, got %q", resp.Entries[0].Username)
	}
}

func TestLeaderboardBadScope(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "me@example.com", "me")

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?scope=galaxy", nil)
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}
