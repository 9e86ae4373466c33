package server

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

type challengeResponse struct {
	ID              string `json:"id"`
	ChallengerID    string `json:"challengerId"`
	OpponentID      string `json:"opponentId"`
	LevelID         string `json:"levelId"`
	Status          string `json:"status"`
	QuizSeed        *int64 `json:"quizSeed,omitempty"`
	ChallengerScore *int   `json:"challengerScore,omitempty"`
	OpponentScore   *int   `json:"opponentScore,omitempty"`
	WinnerID        string `json:"winnerId,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

func toChallengeResponse(c deepsafe.Challenge) challengeResponse {
	return challengeResponse{
		ID:              c.ID,
		ChallengerID:    c.ChallengerID,
		OpponentID:      c.OpponentID,
		LevelID:         c.LevelID,
		Status:          string(c.Status),
		QuizSeed:        c.QuizSeed,
		ChallengerScore: c.ChallengerScore,
		OpponentScore:   c.OpponentScore,
		WinnerID:        c.WinnerID,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

type createChallengeRequest struct {
	OpponentID string `json:"opponentId"`
	LevelID    string `json:"levelId"`
}

// handleChallengeCreate issues a head-to-head challenge. Both players get
// the same quiz seed so they face the same question order. A pair can
// have at most one pending challenge per level; a duplicate is a 409.
func handleChallengeCreate(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req createChallengeRequest
		if err := readJSON(r, &req); err != nil || req.OpponentID == "" || req.LevelID == "" {
			writeError(w, http.StatusBadRequest, "opponentId and levelId are required")
			return
		}
		if req.OpponentID == sess.UserID {
			writeError(w, http.StatusUnprocessableEntity, "cannot challenge yourself")
			return
		}

		if _, err := store.ProfileByID(r.Context(), req.OpponentID); errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "opponent not found")
			return
		}
		if _, err := store.LevelByID(r.Context(), req.LevelID); errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "level not found")
			return
		}

		seed := rand.Int63()
		challenge, err := store.CreateChallenge(r.Context(), sess.UserID, req.OpponentID, req.LevelID, seed)
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "a pending challenge for this level already exists")
			return
		}
		if err != nil {
			logger.Error("creating challenge", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		me, err := store.ProfileByID(r.Context(), sess.UserID)
		if err == nil {
			broker.Publish(req.OpponentID, Event{
				Type:        EventChallengeReceived,
				ChallengeID: challenge.ID,
				FromUserID:  sess.UserID,
				FromName:    me.Username,
				LevelID:     req.LevelID,
			})
		}

		writeJSON(w, http.StatusCreated, toChallengeResponse(challenge))
	}
}

type challengeListResponse struct {
	Challenges []challengeResponse `json:"challenges"`
}

func handleChallengeList(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		challenges, err := store.ListChallenges(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("listing challenges", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := challengeListResponse{Challenges: make([]challengeResponse, 0, len(challenges))}
		for _, c := range challenges {
			resp.Challenges = append(resp.Challenges, toChallengeResponse(c))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleChallengeDecline lets the opponent turn a pending challenge down.
func handleChallengeDecline(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		challengeID := chi.URLParam(r, "id")

		err = store.DeclineChallenge(r.Context(), challengeID, sess.UserID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no pending challenge to decline")
			return
		}
		if err != nil {
			logger.Error("declining challenge", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type challengeScoreRequest struct {
	Score int `json:"score"`
}

// handleChallengeScore records the caller's result. Once both sides have
// played, the challenge resolves and both players are notified.
func handleChallengeScore(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		challengeID := chi.URLParam(r, "id")

		var req challengeScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Score < 0 || req.Score > 100 {
			writeError(w, http.StatusUnprocessableEntity, "score must be 0-100")
			return
		}

		challenge, err := store.SubmitChallengeScore(r.Context(), challengeID, sess.UserID, req.Score)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "challenge not found")
			return
		}
		if err != nil {
			logger.Error("submitting challenge score", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if challenge.Status == deepsafe.ChallengeCompleted {
			event := Event{
				Type:        EventChallengeResolved,
				ChallengeID: challenge.ID,
				WinnerID:    challenge.WinnerID,
			}
			broker.Publish(challenge.ChallengerID, event)
			broker.Publish(challenge.OpponentID, event)
		}

		writeJSON(w, http.StatusOK, toChallengeResponse(challenge))
	}
}
