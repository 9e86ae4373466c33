package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
	"github.com/deepsafelabs/deepsafe-api/internal/quiz"
	"github.com/deepsafelabs/deepsafe-api/internal/saga"
)

type questionResponse struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Text     string             `json:"text"`
	Options  []string           `json:"options"`
	ImageURL string             `json:"imageUrl,omitempty"`
	Hotspots []deepsafe.Hotspot `json:"hotspots,omitempty"`
}

// toQuestionResponse strips the correct index and explanation; those are
// revealed only in the answer response.
func toQuestionResponse(q deepsafe.Question) questionResponse {
	return questionResponse{
		ID:       q.ID,
		Type:     string(q.Type),
		Text:     q.Text,
		Options:  q.Options,
		ImageURL: q.ImageURL,
		Hotspots: q.Hotspots,
	}
}

type runStateResponse struct {
	LevelID  string            `json:"levelId"`
	State    string            `json:"state"`
	Index    int               `json:"index"`
	Total    int               `json:"total"`
	Hearts   int               `json:"hearts"`
	Question *questionResponse `json:"question,omitempty"`
}

func toRunStateResponse(run *quiz.Run) runStateResponse {
	resp := runStateResponse{
		LevelID: run.LevelID,
		State:   string(run.State()),
		Index:   run.Index(),
		Total:   run.Total(),
		Hearts:  run.Lives().Count(),
	}
	if run.State() == quiz.StateAwaitingAnswer {
		q := toQuestionResponse(run.Current())
		resp.Question = &q
	}
	return resp
}

type quizStartRequest struct {
	LevelID string `json:"levelId"`
}

// handleQuizStart begins a run for an unlocked level. Starting replaces
// any run already in flight for the player.
func handleQuizStart(logger *slog.Logger, store Store, runs *runRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		var req quizStartRequest
		if err := readJSON(r, &req); err != nil || req.LevelID == "" {
			writeError(w, http.StatusBadRequest, "levelId is required")
			return
		}

		level, err := store.LevelByID(r.Context(), req.LevelID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "level not found")
			return
		}
		if err != nil {
			logger.Error("loading level", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		unlocked, err := levelUnlocked(r, store, sess.UserID, level.ID)
		if err != nil {
			logger.Error("resolving saga state", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !unlocked {
			writeError(w, http.StatusForbidden, "level is locked")
			return
		}

		profile, err := store.ProfileByID(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("loading profile", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		lives := quiz.NewLives(profile.CurrentHearts, deepsafe.MaxHearts)
		lives.SetInfinite(profile.IsPremium)
		if lives.Empty() {
			writeError(w, http.StatusForbidden, "out of hearts")
			return
		}

		questions, err := store.QuestionsByLevel(r.Context(), level.ID)
		if err != nil {
			logger.Error("loading questions", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		run, err := quiz.NewRun(level, questions, lives)
		if errors.Is(err, quiz.ErrNoQuestions) {
			writeError(w, http.StatusUnprocessableEntity, "level has no questions")
			return
		}
		if err != nil {
			logger.Error("starting run", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		runs.Put(sess.UserID, run)
		writeJSON(w, http.StatusCreated, toRunStateResponse(run))
	}
}

// levelUnlocked reports whether the level is playable: its resolved saga
// status is active or completed.
func levelUnlocked(r *http.Request, store Store, userID, levelID string) (bool, error) {
	levels, err := store.ListLevels(r.Context())
	if err != nil {
		return false, err
	}
	completedIDs, err := store.CompletedLevelIDs(r.Context(), userID)
	if err != nil {
		return false, err
	}
	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}
	for _, e := range saga.Resolve(levels, completed) {
		if e.Level.ID == levelID {
			return e.Status != saga.StatusLocked, nil
		}
	}
	return false, nil
}

func handleQuizState(store Store, runs *runRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		run, release, ok := runs.Acquire(sess.UserID)
		if !ok {
			writeError(w, http.StatusNotFound, "no run in progress")
			return
		}
		defer release()
		writeJSON(w, http.StatusOK, toRunStateResponse(run))
	}
}

type quizAnswerRequest struct {
	Option int `json:"option"`
}

type quizAnswerResponse struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation,omitempty"`
	Hearts       int    `json:"hearts"`
	State        string `json:"state"`
}

// handleQuizAnswer records an answer. A wrong answer consumes a heart in
// memory first, then mirrors the decrement to the store; a failed mirror
// is logged and play continues, with the store as the authority on the
// next refresh.
func handleQuizAnswer(logger *slog.Logger, store Store, runs *runRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		run, release, ok := runs.Acquire(sess.UserID)
		if !ok {
			writeError(w, http.StatusNotFound, "no run in progress")
			return
		}
		defer release()

		var req quizAnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := run.Answer(req.Option)
		switch {
		case errors.Is(err, quiz.ErrBlocked):
			writeError(w, http.StatusForbidden, "out of hearts")
			return
		case errors.Is(err, quiz.ErrInvalidOption):
			writeError(w, http.StatusUnprocessableEntity, "option out of range")
			return
		case errors.Is(err, quiz.ErrNotAwaiting):
			writeError(w, http.StatusConflict, "question already answered")
			return
		case err != nil:
			logger.Error("recording answer", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if result.HeartLost {
			hearts, err := store.DecrementHearts(r.Context(), sess.UserID)
			if err != nil {
				logger.Error("persisting heart decrement", "error", err, "user_id", sess.UserID)
			} else {
				run.Lives().Set(hearts)
			}
		}

		writeJSON(w, http.StatusOK, quizAnswerResponse{
			Correct:      result.Correct,
			CorrectIndex: result.CorrectIndex,
			Explanation:  result.Explanation,
			Hearts:       run.Lives().Count(),
			State:        string(run.State()),
		})
	}
}

type quizContinueResponse struct {
	Done     bool              `json:"done"`
	Score    int               `json:"score,omitempty"`
	EarnedXP int               `json:"earnedXp,omitempty"`
	Correct  int               `json:"correct,omitempty"`
	Total    int               `json:"total,omitempty"`
	Run      *runStateResponse `json:"run,omitempty"`
}

// handleQuizContinue advances past an answered question. Completing the
// last question persists the result: the atomic path upserts progress and
// credits XP together; if it fails, the score alone is recorded so the
// completion at least survives.
func handleQuizContinue(logger *slog.Logger, store Store, runs *runRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		run, release, ok := runs.Acquire(sess.UserID)
		if !ok {
			writeError(w, http.StatusNotFound, "no run in progress")
			return
		}
		defer release()

		done, err := run.Continue()
		switch {
		case errors.Is(err, quiz.ErrBlocked):
			writeError(w, http.StatusForbidden, "out of hearts")
			return
		case errors.Is(err, quiz.ErrNotAnswered):
			writeError(w, http.StatusConflict, "answer the current question first")
			return
		case err != nil:
			logger.Error("advancing run", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !done {
			state := toRunStateResponse(run)
			writeJSON(w, http.StatusOK, quizContinueResponse{Run: &state})
			return
		}

		score := run.Score()
		earnedXP := run.EarnedXP()
		if err := store.CompleteLevel(r.Context(), sess.UserID, run.LevelID, score, earnedXP); err != nil {
			logger.Error("completing level", "error", err, "user_id", sess.UserID, "level_id", run.LevelID)
			if err := store.UpsertProgress(r.Context(), sess.UserID, run.LevelID, score); err != nil {
				logger.Error("recording progress fallback", "error", err)
				writeError(w, http.StatusInternalServerError, "could not save progress")
				return
			}
		}
		runs.Delete(sess.UserID)

		writeJSON(w, http.StatusOK, quizContinueResponse{
			Done:     true,
			Score:    score,
			EarnedXP: earnedXP,
			Correct:  run.CorrectCount(),
			Total:    run.Total(),
		})
	}
}
