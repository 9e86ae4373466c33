package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginRequestAccepted(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "", "/api/auth/login", loginRequest{Email: "new@example.com"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRequestInvalidEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "", "/api/auth/login", loginRequest{Email: "not-an-email"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestLoginVerifyCreatesProfileAndSession(t *testing.T) {
	r, store := newTestRouter(t)

	token, err := store.CreateLoginToken(context.Background(), "new@example.com", loginTokenTTL)
	if err != nil {
		t.Fatalf("create login token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp verifyResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if resp.Profile.Email != "new@example.com" {
		t.Errorf("expected profile email, got %q", resp.Profile.Email)
	}
	if resp.Profile.Hearts != 5 {
		t.Errorf("new profile should start with 5 hearts, got %d", resp.Profile.Hearts)
	}
	if resp.Profile.ReferralCode == "" {
		t.Error("new profile should have a referral code")
	}

	// The session works against /api/me.
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", bearerScheme+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
}

func TestLoginVerifyTokenSingleUse(t *testing.T) {
	r, store := newTestRouter(t)

	token, _ := store.CreateLoginToken(context.Background(), "once@example.com", loginTokenTTL)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first use: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+token, nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("second use: expected 401, got %d", w.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "bye@example.com", "bye")

	w := postJSON(t, r, token, "/api/auth/logout", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", bearerScheme+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", rec.Code)
	}
}

func TestProfileUpdateUsername(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "rename@example.com", "rename")

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader([]byte(`{"username":"cipher"}`)))
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp profileResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Username != "cipher" {
		t.Errorf("expected username cipher, got %q", resp.Username)
	}
}

func TestProfileUpdateUsernameTooShort(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := createPlayer(t, store, "tiny@example.com", "tiny")

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader([]byte(`{"username":"ab"}`)))
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestProfileUpdateUsernameTaken(t *testing.T) {
	r, store := newTestRouter(t)
	createPlayer(t, store, "first@example.com", "cipher")
	_, token := createPlayer(t, store, "second@example.com", "latecomer")

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader([]byte(`{"username":"cipher"}`)))
	req.Header.Set("Authorization", bearerScheme+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateProfileDropsTakenUsername(t *testing.T) {
	_, store := newTestRouter(t)
	createPlayer(t, store, "first@example.com", "cipher")

	profile, err := store.CreateProfile(context.Background(), "second@example.com", "cipher")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if profile.Username != "" {
		t.Errorf("taken sign-in name should be dropped, got %q", profile.Username)
	}
}
