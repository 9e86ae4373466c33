package server

import (
	"log/slog"
	"net/http"

	"github.com/deepsafelabs/deepsafe-api/internal/saga"
)

type sagaLevelResponse struct {
	ID          string `json:"id"`
	DayNumber   int    `json:"dayNumber"`
	Title       string `json:"title"`
	ModuleTitle string `json:"moduleTitle"`
	ThemeColor  string `json:"themeColor,omitempty"`
	IsBossLevel bool   `json:"isBossLevel"`
	XPReward    int    `json:"xpReward"`
	Status      string `json:"status"`
}

type sagaStateResponse struct {
	Levels  []sagaLevelResponse `json:"levels"`
	Profile profileResponse     `json:"profile"`
}

// handleSagaState returns the visible saga map for the signed-in player:
// every level inside the fog-of-war window with its resolved status,
// plus the player's own stats for the header bar.
func handleSagaState(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		levels, err := store.ListLevels(r.Context())
		if err != nil {
			logger.Error("listing levels", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		completedIDs, err := store.CompletedLevelIDs(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("loading progress", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		completed := make(map[string]bool, len(completedIDs))
		for _, id := range completedIDs {
			completed[id] = true
		}

		profile, err := store.ProfileByID(r.Context(), sess.UserID)
		if err != nil {
			logger.Error("loading profile", "error", err, "user_id", sess.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		entries := saga.Resolve(levels, completed)
		resp := sagaStateResponse{
			Levels:  make([]sagaLevelResponse, 0, len(entries)),
			Profile: toProfileResponse(profile),
		}
		for _, e := range entries {
			resp.Levels = append(resp.Levels, sagaLevelResponse{
				ID:          e.Level.ID,
				DayNumber:   e.Level.DayNumber,
				Title:       e.Level.Title,
				ModuleTitle: e.Level.ModuleTitle,
				ThemeColor:  e.Level.ThemeColor,
				IsBossLevel: e.Level.IsBossLevel,
				XPReward:    e.Level.XPReward,
				Status:      string(e.Status),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
