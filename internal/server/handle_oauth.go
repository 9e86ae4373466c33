package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

// NewGoogleOAuth builds the OAuth config for Google sign-in. Returns nil
// when no client ID is configured, which disables the routes.
func NewGoogleOAuth(clientID, clientSecret, baseURL string) *oauth2.Config {
	if clientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/api/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func handleOAuthStart(oauthCfg *oauth2.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/api/auth/google",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, oauthCfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

type googleUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// handleOAuthCallback exchanges the authorization code, provisions the
// profile on first sign-in, and hands the session token to the web client
// in the redirect fragment.
func handleOAuthCallback(logger *slog.Logger, store Store, oauthCfg *oauth2.Config, appURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(oauthStateCookie)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			writeError(w, http.StatusBadRequest, "state mismatch")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "missing code")
			return
		}

		token, err := oauthCfg.Exchange(r.Context(), code)
		if err != nil {
			logger.Error("exchanging oauth code", "error", err)
			writeError(w, http.StatusUnauthorized, "sign-in failed")
			return
		}

		resp, err := oauthCfg.Client(r.Context(), token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			logger.Error("fetching userinfo", "error", err)
			writeError(w, http.StatusBadGateway, "sign-in failed")
			return
		}
		defer resp.Body.Close()

		var info googleUserinfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
			logger.Error("decoding userinfo", "error", err)
			writeError(w, http.StatusBadGateway, "sign-in failed")
			return
		}

		profile, err := findOrCreateProfile(r, store, info.Email, info.Name)
		if err != nil {
			logger.Error("resolving profile", "error", err, "email", info.Email)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if profile.AvatarURL == "" && info.Picture != "" {
			if err := store.SetAvatarURL(r.Context(), profile.ID, info.Picture); err != nil {
				logger.Error("saving avatar url", "error", err)
			}
		}

		session, err := store.CreateSession(r.Context(), profile.ID, sessionTTL)
		if err != nil {
			logger.Error("creating session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.Redirect(w, r, appURL+"/#token="+session, http.StatusTemporaryRedirect)
	}
}
