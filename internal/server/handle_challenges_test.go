package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChallengeLifecycle(t *testing.T) {
	r, store := newTestRouter(t)
	_, aliceToken := createPlayer(t, store, "alice@example.com", "alice")
	bob, bobToken := createPlayer(t, store, "bob@example.com", "bob")
	level := firstLevel(t, store)

	// Alice challenges Bob.
	w := postJSON(t, r, aliceToken, "/api/challenges", createChallengeRequest{
		OpponentID: bob.ID,
		LevelID:    level.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created challengeResponse
	json.NewDecoder(w.Body).Decode(&created)
	if created.Status != "pending" {
		t.Fatalf("expected pending, got %q", created.Status)
	}
	if created.QuizSeed == nil {
		t.Error("expected a quiz seed so both players face the same questions")
	}

	// Both submit scores; higher score wins.
	w = postJSON(t, r, aliceToken, "/api/challenges/"+created.ID+"/score", challengeScoreRequest{Score: 60})
	if w.Code != http.StatusOK {
		t.Fatalf("alice score: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var afterAlice challengeResponse
	json.NewDecoder(w.Body).Decode(&afterAlice)
	if afterAlice.Status != "pending" {
		t.Errorf("one-sided challenge should stay pending, got %q", afterAlice.Status)
	}

	w = postJSON(t, r, bobToken, "/api/challenges/"+created.ID+"/score", challengeScoreRequest{Score: 90})
	if w.Code != http.StatusOK {
		t.Fatalf("bob score: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resolved challengeResponse
	json.NewDecoder(w.Body).Decode(&resolved)
	if resolved.Status != "completed" {
		t.Fatalf("expected completed, got %q", resolved.Status)
	}
	if resolved.WinnerID != bob.ID {
		t.Errorf("expected winner %s, got %s", bob.ID, resolved.WinnerID)
	}
}

func TestChallengeDuplicatePendingRejected(t *testing.T) {
	r, store := newTestRouter(t)
	_, aliceToken := createPlayer(t, store, "alice@example.com", "alice")
	bob, _ := createPlayer(t, store, "bob@example.com", "bob")
	level := firstLevel(t, store)

	req := createChallengeRequest{OpponentID: bob.ID, LevelID: level.ID}
	if w := postJSON(t, r, aliceToken, "/api/challenges", req); w.Code != http.StatusCreated {
		t.Fatalf("first challenge: expected 201, got %d", w.Code)
	}
	if w := postJSON(t, r, aliceToken, "/api/challenges", req); w.Code != http.StatusConflict {
		t.Fatalf("duplicate pending challenge: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChallengeDeclineAllowsRematch(t *testing.T) {
	r, store := newTestRouter(t)
	_, aliceToken := createPlayer(t, store, "alice@example.com", "alice")
	bob, bobToken := createPlayer(t, store, "bob@example.com", "bob")
	level := firstLevel(t, store)

	req := createChallengeRequest{OpponentID: bob.ID, LevelID: level.ID}
	w := postJSON(t, r, aliceToken, "/api/challenges", req)
	var created challengeResponse
	json.NewDecoder(w.Body).Decode(&created)

	// Only the opponent may decline.
	if w := postJSON(t, r, aliceToken, "/api/challenges/"+created.ID+"/decline", nil); w.Code != http.StatusNotFound {
		t.Fatalf("challenger decline: expected 404, got %d", w.Code)
	}
	if w := postJSON(t, r, bobToken, "/api/challenges/"+created.ID+"/decline", nil); w.Code != http.StatusNoContent {
		t.Fatalf("opponent decline: expected 204, got %d: %s", w.Code, w.Body.String())
	}

	// A declined challenge no longer blocks a new one for the same level.
	if w := postJSON(t, r, aliceToken, "/api/challenges", req); w.Code != http.StatusCreated {
		t.Fatalf("rematch after decline: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChallengeSelfRejected(t *testing.T) {
	r, store := newTestRouter(t)
	alice, aliceToken := createPlayer(t, store, "alice@example.com", "alice")
	level := firstLevel(t, store)

	w := postJSON(t, r, aliceToken, "/api/challenges", createChallengeRequest{
		OpponentID: alice.ID,
		LevelID:    level.ID,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 challenging yourself, got %d", w.Code)
	}
}

func TestChallengeListShowsBothSides(t *testing.T) {
	r, store := newTestRouter(t)
	_, aliceToken := createPlayer(t, store, "alice@example.com", "alice")
	bob, bobToken := createPlayer(t, store, "bob@example.com", "bob")
	level := firstLevel(t, store)

	postJSON(t, r, aliceToken, "/api/challenges", createChallengeRequest{OpponentID: bob.ID, LevelID: level.ID})

	for _, token := range []string{aliceToken, bobToken} {
		req := httptest.NewRequest(http.MethodGet, "/api/challenges", nil)
		req.Header.Set("Authorization", bearerScheme+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp challengeListResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if len(resp.Challenges) != 1 {
			t.Fatalf("expected 1 challenge, got %d", len(resp.Challenges))
		}
	}
}
