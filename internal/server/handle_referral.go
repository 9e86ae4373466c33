package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	XPAwarded int `json:"xpAwarded"`
}

// handleReferralRedeem redeems another player's referral code: the
// referrer gains a heart (capped at the maximum) and the redeemer gains
// XP. Redeeming your own code is rejected.
func handleReferralRedeem(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req redeemRequest
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Code) == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		result, err := store.RedeemReferralCode(r.Context(), sess.UserID, req.Code)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown referral code")
			return
		case errors.Is(err, ErrOwnReferral):
			writeError(w, http.StatusUnprocessableEntity, "cannot redeem your own code")
			return
		case err != nil:
			logger.Error("redeeming referral code", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, redeemResponse{XPAwarded: result.XPAwarded})
	}
}
