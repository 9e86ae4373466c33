package server

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	errNoSession      = errors.New("no player session")
	errNoAdminSession = errors.New("no admin session")
)

const (
	sessionTTL      = 30 * 24 * time.Hour
	loginTokenTTL   = 15 * time.Minute
	adminCookieName = "admin_session"
	bearerScheme    = "Bearer "
)

// userFromRequest resolves the player session from the Authorization
// bearer token.
func userFromRequest(store Store, r *http.Request) (userSession, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerScheme) {
		return userSession{}, errNoSession
	}
	token := strings.TrimPrefix(header, bearerScheme)
	if token == "" {
		return userSession{}, errNoSession
	}
	return store.UserFromToken(r.Context(), token)
}

// adminFromRequest resolves the admin session from the session cookie.
func adminFromRequest(store AdminStore, r *http.Request) (adminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return adminSession{}, errNoAdminSession
	}
	return store.AdminFromSession(r.Context(), cookie.Value)
}
