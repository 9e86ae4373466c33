package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	swgui "github.com/swaggest/swgui/v5emb"
	"golang.org/x/oauth2"

	"github.com/deepsafelabs/deepsafe-api/internal/avatars"
	"github.com/deepsafelabs/deepsafe-api/internal/mailer"
	"github.com/deepsafelabs/deepsafe-api/internal/payments"
)

// Deps carries everything the routes need. Optional integrations (redis,
// mailer, avatars, payments, oauth) degrade gracefully when absent.
type Deps struct {
	Logger   *slog.Logger
	Store    Store
	Admin    AdminStore
	DB       *sql.DB
	Redis    *redis.Client
	Broker   *Broker
	Mailer   *mailer.Mailer
	Avatars  *avatars.Store
	Payments *payments.Client
	OAuth    *oauth2.Config
	Prices   ShopPrices
	BaseURL  string
	AppURL   string
}

func addRoutes(r chi.Router, d Deps) {
	runs := newRunRegistry()

	r.Get("/api/health", handleHealth(d.Logger, d.DB, d.Redis))
	r.Get("/api/openapi.json", handleOpenAPI())
	r.Mount("/docs", swgui.New("Deepsafe API", "/api/openapi.json", "/docs"))

	// Sign-in.
	r.Post("/api/auth/login", handleLoginRequest(d.Logger, d.Store, d.Mailer, d.BaseURL))
	r.Get("/api/auth/verify", handleLoginVerify(d.Logger, d.Store))
	r.Post("/api/auth/logout", handleLogout(d.Logger, d.Store))
	if d.OAuth != nil {
		r.Get("/api/auth/google", handleOAuthStart(d.OAuth))
		r.Get("/api/auth/google/callback", handleOAuthCallback(d.Logger, d.Store, d.OAuth, d.AppURL))
	}

	// Player.
	r.Get("/api/me", handleMe(d.Logger, d.Store))
	r.Patch("/api/profile", handleProfileUpdate(d.Logger, d.Store))
	r.Post("/api/profile/avatar", handleAvatarUpload(d.Logger, d.Store, d.Avatars))
	r.Get("/api/events", handleEvents(d.Store, d.Broker))

	// Saga and quizzes.
	r.Get("/api/saga/state", handleSagaState(d.Logger, d.Store))
	r.Post("/api/quiz/start", handleQuizStart(d.Logger, d.Store, runs))
	r.Get("/api/quiz/state", handleQuizState(d.Store, runs))
	r.Post("/api/quiz/answer", handleQuizAnswer(d.Logger, d.Store, runs))
	r.Post("/api/quiz/continue", handleQuizContinue(d.Logger, d.Store, runs))

	// Hearts.
	r.Post("/api/hearts/decrement", handleHeartsDecrement(d.Logger, d.Store))
	r.Post("/api/ads/reward", handleAdReward(d.Logger, d.Store))

	// Social.
	r.Get("/api/leaderboard", handleLeaderboard(d.Logger, d.Store, d.Redis))
	r.Get("/api/friends", handleFriendList(d.Logger, d.Store))
	r.Post("/api/friends", handleFriendRequest(d.Logger, d.Store, d.Broker))
	r.Post("/api/friends/accept", handleFriendAccept(d.Logger, d.Store))
	r.Get("/api/challenges", handleChallengeList(d.Logger, d.Store))
	r.Post("/api/challenges", handleChallengeCreate(d.Logger, d.Store, d.Broker))
	r.Post("/api/challenges/{id}/decline", handleChallengeDecline(d.Logger, d.Store, d.Broker))
	r.Post("/api/challenges/{id}/score", handleChallengeScore(d.Logger, d.Store, d.Broker))

	// Rewards and shop.
	r.Post("/api/referral/redeem", handleReferralRedeem(d.Logger, d.Store))
	r.Post("/api/shop/checkout", handleCheckout(d.Logger, d.Store, d.Payments, d.Prices))
	r.Post("/api/shop/fulfil", handleCheckoutFulfil(d.Logger, d.Store, d.Payments))

	// Admin content management.
	r.Post("/api/admin/login", handleAdminLogin(d.Logger, d.Admin))
	r.Post("/api/admin/logout", handleAdminLogout(d.Logger, d.Admin))
	r.Get("/api/admin/me", handleAdminMe(d.Admin))
	r.Get("/api/admin/modules", requireAdmin(d.Admin, handleAdminListModules(d.Logger, d.Admin)))
	r.Post("/api/admin/modules", requireAdmin(d.Admin, handleAdminCreateModule(d.Logger, d.Admin)))
	r.Post("/api/admin/levels", requireAdmin(d.Admin, handleAdminCreateLevel(d.Logger, d.Admin)))
	r.Post("/api/admin/questions", requireAdmin(d.Admin, handleAdminCreateQuestion(d.Logger, d.Admin)))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}
