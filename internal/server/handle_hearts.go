package server

import (
	"errors"
	"log/slog"
	"net/http"
)

type heartsResponse struct {
	Hearts int `json:"hearts"`
}

// handleHeartsDecrement removes one heart, saturating at zero. Premium
// players are unaffected.
func handleHeartsDecrement(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		hearts, err := store.DecrementHearts(r.Context(), sess.UserID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		if err != nil {
			logger.Error("decrementing hearts", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, heartsResponse{Hearts: hearts})
	}
}

// handleAdReward grants one heart after a rewarded ad, capped at the
// maximum.
func handleAdReward(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		hearts, err := store.AddHearts(r.Context(), sess.UserID, 1)
		if err != nil {
			logger.Error("granting ad reward", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, heartsResponse{Hearts: hearts})
	}
}
