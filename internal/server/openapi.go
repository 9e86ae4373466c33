package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Deepsafe API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Deepsafe cybersecurity learning game.")

	// GET /api/health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/api/health")
	getHealth.SetSummary("Health check")
	getHealth.SetDescription("Returns the health status of backend dependencies.")
	getHealth.AddRespStructure(healthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealth.AddRespStructure(healthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealth)

	// POST /api/auth/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/auth/login")
	postLogin.SetSummary("Request sign-in link")
	postLogin.SetDescription("Emails a one-time sign-in link to the given address.")
	postLogin.AddReqStructure(loginRequest{})
	postLogin.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusAccepted))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postLogin)

	// GET /api/auth/verify
	getVerify, _ := r.NewOperationContext(http.MethodGet, "/api/auth/verify")
	getVerify.SetSummary("Verify sign-in link")
	getVerify.SetDescription("Consumes a sign-in token and returns a bearer session token. Creates the profile on first sign-in.")
	getVerify.AddRespStructure(verifyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getVerify)

	// POST /api/auth/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/auth/logout")
	postLogout.SetSummary("Sign out")
	postLogout.SetDescription("Deletes the bearer session.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLogout)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current player")
	getMe.SetDescription("Returns the signed-in player's profile. Requires Bearer token.")
	getMe.AddRespStructure(profileResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// PATCH /api/profile
	patchProfile, _ := r.NewOperationContext(http.MethodPatch, "/api/profile")
	patchProfile.SetSummary("Update profile")
	patchProfile.SetDescription("Updates the player's username. Requires Bearer token.")
	patchProfile.AddReqStructure(updateProfileRequest{})
	patchProfile.AddRespStructure(profileResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	patchProfile.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(patchProfile)

	// POST /api/profile/avatar
	postAvatar, _ := r.NewOperationContext(http.MethodPost, "/api/profile/avatar")
	postAvatar.SetSummary("Upload avatar")
	postAvatar.SetDescription("Multipart upload of a PNG, JPEG, or WebP avatar, max 2 MB. Replaces the previous one. Requires Bearer token.")
	postAvatar.AddRespStructure(avatarResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAvatar.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnsupportedMediaType))
	_ = r.AddOperation(postAvatar)

	// GET /api/saga/state
	getSaga, _ := r.NewOperationContext(http.MethodGet, "/api/saga/state")
	getSaga.SetSummary("Saga map state")
	getSaga.SetDescription("Returns the visible levels with their locked/active/completed status and the player's stats. Requires Bearer token.")
	getSaga.AddRespStructure(sagaStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSaga.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getSaga)

	// POST /api/quiz/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/start")
	postStart.SetSummary("Start a quiz run")
	postStart.SetDescription("Begins a run for an unlocked level. Requires Bearer token and at least one heart.")
	postStart.AddReqStructure(quizStartRequest{})
	postStart.AddRespStructure(runStateResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postStart)

	// GET /api/quiz/state
	getQuiz, _ := r.NewOperationContext(http.MethodGet, "/api/quiz/state")
	getQuiz.SetSummary("Current run state")
	getQuiz.AddRespStructure(runStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQuiz)

	// POST /api/quiz/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/answer")
	postAnswer.SetSummary("Answer the current question")
	postAnswer.SetDescription("A wrong answer costs one heart. Reveals the correct option and explanation.")
	postAnswer.AddReqStructure(quizAnswerRequest{})
	postAnswer.AddRespStructure(quizAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/quiz/continue
	postContinue, _ := r.NewOperationContext(http.MethodPost, "/api/quiz/continue")
	postContinue.SetSummary("Advance the run")
	postContinue.SetDescription("Moves to the next question, or completes the level and credits XP after the last one.")
	postContinue.AddRespStructure(quizContinueResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postContinue.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postContinue.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postContinue)

	// POST /api/hearts/decrement
	postHearts, _ := r.NewOperationContext(http.MethodPost, "/api/hearts/decrement")
	postHearts.SetSummary("Spend a heart")
	postHearts.SetDescription("Removes one heart, saturating at zero. Premium players are unaffected.")
	postHearts.AddRespStructure(heartsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postHearts.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postHearts)

	// POST /api/ads/reward
	postAd, _ := r.NewOperationContext(http.MethodPost, "/api/ads/reward")
	postAd.SetSummary("Rewarded ad heart")
	postAd.SetDescription("Grants one heart after a rewarded ad, capped at the maximum.")
	postAd.AddRespStructure(heartsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postAd)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("XP leaderboard")
	getBoard.SetDescription("Top players by XP. scope=global (default, cached) or scope=friends.")
	getBoard.AddRespStructure(leaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// GET /api/friends
	getFriends, _ := r.NewOperationContext(http.MethodGet, "/api/friends")
	getFriends.SetSummary("List friends")
	getFriends.AddRespStructure(friendListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getFriends)

	// POST /api/friends
	postFriends, _ := r.NewOperationContext(http.MethodPost, "/api/friends")
	postFriends.SetSummary("Send friend request")
	postFriends.AddReqStructure(friendRequest{})
	postFriends.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusCreated))
	postFriends.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFriends)

	// POST /api/friends/accept
	postAccept, _ := r.NewOperationContext(http.MethodPost, "/api/friends/accept")
	postAccept.SetSummary("Accept friend request")
	postAccept.AddReqStructure(friendAcceptRequest{})
	postAccept.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postAccept.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAccept)

	// GET /api/challenges
	getChallenges, _ := r.NewOperationContext(http.MethodGet, "/api/challenges")
	getChallenges.SetSummary("List challenges")
	getChallenges.AddRespStructure(challengeListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getChallenges)

	// POST /api/challenges
	postChallenge, _ := r.NewOperationContext(http.MethodPost, "/api/challenges")
	postChallenge.SetSummary("Issue a challenge")
	postChallenge.SetDescription("At most one pending challenge per opponent and level; a duplicate is rejected.")
	postChallenge.AddReqStructure(createChallengeRequest{})
	postChallenge.AddRespStructure(challengeResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postChallenge)

	// POST /api/challenges/{id}/decline
	postDecline, _ := r.NewOperationContext(http.MethodPost, "/api/challenges/{id}/decline")
	postDecline.SetSummary("Decline a challenge")
	postDecline.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postDecline.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postDecline)

	// POST /api/challenges/{id}/score
	postScore, _ := r.NewOperationContext(http.MethodPost, "/api/challenges/{id}/score")
	postScore.SetSummary("Submit challenge score")
	postScore.SetDescription("Once both sides have played, the challenge resolves: higher score wins.")
	postScore.AddReqStructure(challengeScoreRequest{})
	postScore.AddRespStructure(challengeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postScore)

	// POST /api/referral/redeem
	postRedeem, _ := r.NewOperationContext(http.MethodPost, "/api/referral/redeem")
	postRedeem.SetSummary("Redeem referral code")
	postRedeem.SetDescription("The referrer gains a heart, the redeemer gains XP. Own codes are rejected.")
	postRedeem.AddReqStructure(redeemRequest{})
	postRedeem.AddRespStructure(redeemResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRedeem.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postRedeem.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postRedeem)

	// POST /api/shop/checkout
	postCheckout, _ := r.NewOperationContext(http.MethodPost, "/api/shop/checkout")
	postCheckout.SetSummary("Open checkout")
	postCheckout.SetDescription("Creates a hosted checkout session for premium, refill, or streak_freeze.")
	postCheckout.AddReqStructure(checkoutRequest{})
	postCheckout.AddRespStructure(checkoutResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCheckout.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postCheckout)

	// POST /api/shop/fulfil
	postFulfil, _ := r.NewOperationContext(http.MethodPost, "/api/shop/fulfil")
	postFulfil.SetSummary("Fulfil checkout")
	postFulfil.SetDescription("Verifies a finished checkout session with the processor and grants the purchase.")
	postFulfil.AddReqStructure(fulfilRequest{})
	postFulfil.AddRespStructure(fulfilResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFulfil.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusPaymentRequired))
	_ = r.AddOperation(postFulfil)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for challenge and friend notifications. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postAdminLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postAdminLogin.SetSummary("Admin login")
	postAdminLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postAdminLogin.AddReqStructure(adminLoginRequest{})
	postAdminLogin.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postAdminLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAdminLogin)

	// POST /api/admin/logout
	postAdminLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postAdminLogout.SetSummary("Admin logout")
	postAdminLogout.SetDescription("Clears admin session and cookie.")
	postAdminLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postAdminLogout)

	// GET /api/admin/me
	getAdminMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getAdminMe.SetSummary("Current admin")
	getAdminMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getAdminMe.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusOK))
	getAdminMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getAdminMe)

	// GET /api/admin/modules
	listModules, _ := r.NewOperationContext(http.MethodGet, "/api/admin/modules")
	listModules.SetSummary("List modules")
	listModules.SetDescription("Returns all content modules. Requires admin_session cookie.")
	listModules.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	listModules.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listModules)

	// POST /api/admin/modules
	createModule, _ := r.NewOperationContext(http.MethodPost, "/api/admin/modules")
	createModule.SetSummary("Create module")
	createModule.AddReqStructure(createModuleRequest{})
	createModule.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusCreated))
	createModule.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createModule)

	// POST /api/admin/levels
	createLevel, _ := r.NewOperationContext(http.MethodPost, "/api/admin/levels")
	createLevel.SetSummary("Create level")
	createLevel.AddReqStructure(createLevelRequest{})
	createLevel.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusCreated))
	createLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createLevel)

	// POST /api/admin/questions
	createQuestion, _ := r.NewOperationContext(http.MethodPost, "/api/admin/questions")
	createQuestion.SetSummary("Create question")
	createQuestion.AddReqStructure(createQuestionRequest{})
	createQuestion.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusCreated))
	createQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createQuestion)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
