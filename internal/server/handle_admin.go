package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleAdminLogin(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		adminID, hash, err := store.AdminByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			logger.Error("loading admin", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := store.CreateAdminSession(r.Context(), adminID)
		if err != nil {
			logger.Error("creating admin session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdminLogout(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(adminCookieName); err == nil && cookie.Value != "" {
			if err := store.DeleteAdminSession(r.Context(), cookie.Value); err != nil {
				logger.Error("deleting admin session", "error", err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdminMe(store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := adminFromRequest(store, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": sess.AdminID, "email": sess.Email})
	}
}

// requireAdmin guards the content-management routes.
func requireAdmin(store AdminStore, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := adminFromRequest(store, r); err != nil {
			writeError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next(w, r)
	}
}

type createModuleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ThemeColor  string `json:"themeColor"`
	OrderIndex  int    `json:"orderIndex"`
}

func handleAdminCreateModule(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createModuleRequest
		if err := readJSON(r, &req); err != nil || req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		m, err := store.CreateModule(r.Context(), deepsafe.Module{
			Title:       req.Title,
			Description: req.Description,
			ThemeColor:  req.ThemeColor,
			OrderIndex:  req.OrderIndex,
		})
		if err != nil {
			logger.Error("creating module", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": m.ID})
	}
}

type createLevelRequest struct {
	ModuleID    string `json:"moduleId"`
	DayNumber   int    `json:"dayNumber"`
	Title       string `json:"title"`
	IsBossLevel bool   `json:"isBossLevel"`
	XPReward    int    `json:"xpReward"`
}

func handleAdminCreateLevel(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLevelRequest
		if err := readJSON(r, &req); err != nil || req.ModuleID == "" || req.Title == "" {
			writeError(w, http.StatusBadRequest, "moduleId and title are required")
			return
		}
		if req.DayNumber < 1 {
			writeError(w, http.StatusUnprocessableEntity, "dayNumber must be positive")
			return
		}
		if req.XPReward == 0 {
			req.XPReward = 20
		}

		l, err := store.CreateLevel(r.Context(), deepsafe.Level{
			ModuleID:    req.ModuleID,
			DayNumber:   req.DayNumber,
			Title:       req.Title,
			IsBossLevel: req.IsBossLevel,
			XPReward:    req.XPReward,
		})
		if err != nil {
			logger.Error("creating level", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": l.ID})
	}
}

type createQuestionRequest struct {
	LevelID      string             `json:"levelId"`
	Type         string             `json:"type"`
	Text         string             `json:"text"`
	Options      []string           `json:"options"`
	CorrectIndex int                `json:"correctIndex"`
	Explanation  string             `json:"explanation"`
	ImageURL     string             `json:"imageUrl"`
	Hotspots     []deepsafe.Hotspot `json:"hotspots"`
}

func handleAdminCreateQuestion(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuestionRequest
		if err := readJSON(r, &req); err != nil || req.LevelID == "" || req.Text == "" {
			writeError(w, http.StatusBadRequest, "levelId and text are required")
			return
		}
		if len(req.Options) < 2 {
			writeError(w, http.StatusUnprocessableEntity, "at least two options are required")
			return
		}
		if req.CorrectIndex < 0 || req.CorrectIndex >= len(req.Options) {
			writeError(w, http.StatusUnprocessableEntity, "correctIndex out of range")
			return
		}

		q, err := store.CreateQuestion(r.Context(), deepsafe.Question{
			LevelID:      req.LevelID,
			Type:         deepsafe.QuestionType(req.Type),
			Text:         req.Text,
			Options:      req.Options,
			CorrectIndex: req.CorrectIndex,
			Explanation:  req.Explanation,
			ImageURL:     req.ImageURL,
			Hotspots:     req.Hotspots,
		})
		if err != nil {
			logger.Error("creating question", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": q.ID})
	}
}

func handleAdminListModules(logger *slog.Logger, store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := store.ListModules(r.Context())
		if err != nil {
			logger.Error("listing modules", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		type moduleResponse struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description,omitempty"`
			ThemeColor  string `json:"themeColor,omitempty"`
			OrderIndex  int    `json:"orderIndex"`
		}
		resp := make([]moduleResponse, 0, len(modules))
		for _, m := range modules {
			resp = append(resp, moduleResponse{
				ID:          m.ID,
				Title:       m.Title,
				Description: m.Description,
				ThemeColor:  m.ThemeColor,
				OrderIndex:  m.OrderIndex,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"modules": resp})
	}
}
