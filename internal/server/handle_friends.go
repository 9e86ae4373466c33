package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type friendRequest struct {
	Username string `json:"username"`
}

// handleFriendRequest sends a friend request by username. One friendship
// row exists per pair, whichever side initiated.
func handleFriendRequest(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req friendRequest
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Username) == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}

		friend, err := store.ProfileByUsername(r.Context(), strings.TrimSpace(req.Username))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no player with that username")
			return
		}
		if err != nil {
			logger.Error("looking up player", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if friend.ID == sess.UserID {
			writeError(w, http.StatusUnprocessableEntity, "cannot befriend yourself")
			return
		}

		err = store.CreateFriendRequest(r.Context(), sess.UserID, friend.ID)
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "friendship already exists")
			return
		}
		if err != nil {
			logger.Error("creating friend request", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		me, err := store.ProfileByID(r.Context(), sess.UserID)
		if err == nil {
			broker.Publish(friend.ID, Event{
				Type:       EventFriendRequest,
				FromUserID: sess.UserID,
				FromName:   me.Username,
			})
		}

		w.WriteHeader(http.StatusCreated)
	}
}

type friendAcceptRequest struct {
	FriendID string `json:"friendId"`
}

func handleFriendAccept(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req friendAcceptRequest
		if err := readJSON(r, &req); err != nil || req.FriendID == "" {
			writeError(w, http.StatusBadRequest, "friendId is required")
			return
		}

		err = store.AcceptFriendRequest(r.Context(), sess.UserID, req.FriendID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no pending request from that player")
			return
		}
		if err != nil {
			logger.Error("accepting friend request", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type friendListResponse struct {
	Friends []FriendEntry `json:"friends"`
}

func handleFriendList(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		friends, err := store.ListFriends(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("listing friends", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, friendListResponse{Friends: friends})
	}
}
