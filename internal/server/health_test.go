package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthOK(t *testing.T) {
	store := setupStore(t)
	h := handleHealth(testLogger(), store.db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp healthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.DB != "ok" {
		t.Errorf("expected db ok, got %q", resp.DB)
	}
	if resp.Redis != "disabled" {
		t.Errorf("expected redis disabled without a client, got %q", resp.Redis)
	}
}

func TestHealthDBDown(t *testing.T) {
	store := setupStore(t)
	store.db.Close()
	h := handleHealth(testLogger(), store.db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var resp healthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Status != "degraded" || resp.DB != "unreachable" {
		t.Errorf("expected degraded/unreachable, got %+v", resp)
	}
}
