package server

import (
	"log/slog"
	"net/http"

	"github.com/deepsafelabs/deepsafe-api/internal/payments"
)

// ShopPrices maps shop items to payment-processor price IDs.
type ShopPrices struct {
	Premium      string
	Refill       string
	StreakFreeze string
}

type checkoutRequest struct {
	Item string `json:"item"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// handleCheckout opens a hosted checkout session for a shop item and
// returns the redirect URL. Premium is a subscription; the rest are
// one-off payments.
func handleCheckout(logger *slog.Logger, store Store, pay *payments.Client, prices ShopPrices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		if !pay.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "payments not configured")
			return
		}

		var req checkoutRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		var priceID, mode string
		var action payments.ActionType
		switch req.Item {
		case "premium":
			priceID, mode, action = prices.Premium, "subscription", payments.ActionPremium
		case "refill":
			priceID, mode, action = prices.Refill, "payment", payments.ActionRefill
		case "streak_freeze":
			priceID, mode, action = prices.StreakFreeze, "payment", payments.ActionStreakFreeze
		default:
			writeError(w, http.StatusUnprocessableEntity, "unknown shop item")
			return
		}

		url, err := pay.CreateCheckout(sess.UserID, priceID, mode, action)
		if err != nil {
			logger.Error("creating checkout", "error", err, "item", req.Item)
			writeError(w, http.StatusBadGateway, "checkout unavailable")
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
	}
}

type fulfilRequest struct {
	SessionID string `json:"sessionId"`
}

type fulfilResponse struct {
	Granted string `json:"granted"`
}

// handleCheckoutFulfil verifies a finished checkout session with the
// processor and grants the purchase. Verification is server-side; the
// client only relays the session id from the success redirect.
func handleCheckoutFulfil(logger *slog.Logger, store Store, pay *payments.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		if !pay.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "payments not configured")
			return
		}

		var req fulfilRequest
		if err := readJSON(r, &req); err != nil || req.SessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}

		f, err := pay.VerifySession(req.SessionID)
		if err != nil {
			logger.Error("verifying checkout session", "error", err)
			writeError(w, http.StatusBadGateway, "could not verify payment")
			return
		}
		if !f.Paid || f.UserID != sess.UserID {
			writeError(w, http.StatusPaymentRequired, "payment not completed")
			return
		}

		switch f.Action {
		case payments.ActionPremium:
			err = store.SetPremium(r.Context(), sess.UserID, true)
		case payments.ActionRefill:
			_, err = store.RefillHearts(r.Context(), sess.UserID)
		case payments.ActionStreakFreeze:
			// Streak freezes are consumed client-side on the next miss;
			// nothing to grant server-side yet.
		default:
			writeError(w, http.StatusUnprocessableEntity, "unknown purchase")
			return
		}
		if err != nil {
			logger.Error("granting purchase", "error", err, "action", string(f.Action))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, fulfilResponse{Granted: string(f.Action)})
	}
}
