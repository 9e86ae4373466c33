package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
	"github.com/deepsafelabs/deepsafe-api/internal/mailer"
)

type profileResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	XP            int    `json:"xp"`
	Hearts        int    `json:"hearts"`
	HighestStreak int    `json:"highestStreak"`
	IsPremium     bool   `json:"isPremium"`
	ReferralCode  string `json:"referralCode"`
}

func toProfileResponse(p deepsafe.Profile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		Email:         p.Email,
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		XP:            p.XP,
		Hearts:        p.CurrentHearts,
		HighestStreak: p.HighestStreak,
		IsPremium:     p.IsPremium,
		ReferralCode:  p.ReferralCode,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

// handleLoginRequest emails a one-time sign-in link. The response is the
// same whether or not the address is known, so it leaks nothing.
func handleLoginRequest(logger *slog.Logger, store Store, mail *mailer.Mailer, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !strings.Contains(email, "@") {
			writeError(w, http.StatusUnprocessableEntity, "invalid email address")
			return
		}

		token, err := store.CreateLoginToken(r.Context(), email, loginTokenTTL)
		if err != nil {
			logger.Error("creating login token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		link := baseURL + "/api/auth/verify?token=" + url.QueryEscape(token)
		if err := mail.SendLoginLink(r.Context(), email, link); err != nil {
			logger.Error("sending sign-in email", "error", err, "email", email)
			writeError(w, http.StatusInternalServerError, "could not send email")
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	}
}

type verifyResponse struct {
	Token   string          `json:"token"`
	Profile profileResponse `json:"profile"`
}

// handleLoginVerify consumes a sign-in token, creating the profile on
// first sign-in, and returns a bearer session token.
func handleLoginVerify(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "missing token")
			return
		}

		email, err := store.ConsumeLoginToken(r.Context(), token)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "link is invalid or expired")
			return
		}
		if err != nil {
			logger.Error("consuming login token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		profile, err := findOrCreateProfile(r, store, email, "")
		if err != nil {
			logger.Error("resolving profile", "error", err, "email", email)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		session, err := store.CreateSession(r.Context(), profile.ID, sessionTTL)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, verifyResponse{
			Token:   session,
			Profile: toProfileResponse(profile),
		})
	}
}

func findOrCreateProfile(r *http.Request, store Store, email, username string) (deepsafe.Profile, error) {
	profile, err := store.ProfileByEmail(r.Context(), email)
	if errors.Is(err, ErrNotFound) {
		return store.CreateProfile(r.Context(), email, username)
	}
	return profile, err
}

func handleLogout(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, bearerScheme)
		if token != "" {
			if err := store.DeleteSession(r.Context(), token); err != nil {
				logger.Error("deleting session", "error", err)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		profile, err := store.ProfileByID(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("loading profile", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}
