package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/deepsafelabs/deepsafe-api/internal/avatars"
)

type updateProfileRequest struct {
	Username string `json:"username"`
}

func handleProfileUpdate(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req updateProfileRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		username := strings.TrimSpace(req.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 20 {
			writeError(w, http.StatusUnprocessableEntity, "username must be 3-20 characters")
			return
		}

		err = store.UpdateUsername(r.Context(), sess.UserID, username)
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		if err != nil {
			logger.Error("updating username", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		profile, err := store.ProfileByID(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("loading profile", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

const maxAvatarBytes = 2 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type avatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// handleAvatarUpload stores the uploaded image and saves its public URL
// on the profile. The upload replaces any previous avatar.
func handleAvatarUpload(logger *slog.Logger, store Store, av *avatars.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		if !av.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "avatar uploads not configured")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
		file, header, err := r.FormFile("avatar")
		if err != nil {
			writeError(w, http.StatusBadRequest, "avatar file is required (max 2 MB)")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !allowedAvatarTypes[contentType] {
			writeError(w, http.StatusUnsupportedMediaType, "avatar must be PNG, JPEG, or WebP")
			return
		}

		url, err := av.Upload(r.Context(), sess.UserID, contentType, file)
		if err != nil {
			logger.Error("uploading avatar", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusBadGateway, "upload failed")
			return
		}

		if err := store.SetAvatarURL(r.Context(), sess.UserID, url); err != nil {
			logger.Error("saving avatar url", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, avatarResponse{AvatarURL: url})
	}
}
