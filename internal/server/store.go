package server

import (
	"context"
	"errors"
	"time"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type userSession struct {
	UserID string
	Email  string
}

type adminSession struct {
	AdminID string
	Email   string
}

// RedeemResult is the outcome of a referral code redemption.
type RedeemResult struct {
	ReferrerID string
	XPAwarded  int
}

// LeaderboardEntry is one row of the XP ranking.
type LeaderboardEntry struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	XP        int    `json:"xp"`
	Rank      int    `json:"rank"`
}

// FriendEntry is a friendship row joined to the counterpart's profile.
type FriendEntry struct {
	FriendID  string `json:"friendId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	XP        int    `json:"xp"`
	Status    string `json:"status"`
	// Inbound reports whether the counterpart initiated the friendship.
	Inbound bool `json:"inbound"`
}

// Store is the data-plane contract consumed by the player handlers. It
// replaces the opaque remote procedures of the hosted backend with typed,
// atomic operations; handlers depend on this interface so tests can drive
// them through seeded in-memory databases.
type Store interface {
	// Sessions and sign-in.
	UserFromToken(ctx context.Context, token string) (userSession, error)
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)
	DeleteSession(ctx context.Context, token string) error
	CreateLoginToken(ctx context.Context, email string, ttl time.Duration) (string, error)
	ConsumeLoginToken(ctx context.Context, token string) (email string, err error)

	// Profiles and hearts.
	ProfileByID(ctx context.Context, id string) (deepsafe.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (deepsafe.Profile, error)
	ProfileByUsername(ctx context.Context, username string) (deepsafe.Profile, error)
	CreateProfile(ctx context.Context, email, username string) (deepsafe.Profile, error)
	UpdateUsername(ctx context.Context, id, username string) error
	SetAvatarURL(ctx context.Context, id, url string) error
	SetPremium(ctx context.Context, id string, premium bool) error
	DecrementHearts(ctx context.Context, id string) (hearts int, err error)
	AddHearts(ctx context.Context, id string, n int) (hearts int, err error)
	RefillHearts(ctx context.Context, id string) (hearts int, err error)

	// Saga content and progression.
	ListLevels(ctx context.Context) ([]deepsafe.Level, error)
	LevelByID(ctx context.Context, id string) (deepsafe.Level, error)
	QuestionsByLevel(ctx context.Context, levelID string) ([]deepsafe.Question, error)
	CompletedLevelIDs(ctx context.Context, userID string) ([]string, error)

	// CompleteLevel atomically upserts the completion record and credits
	// the earned XP (and streak bookkeeping) in one transaction.
	CompleteLevel(ctx context.Context, userID, levelID string, score, earnedXP int) error
	// UpsertProgress records the score only — the degraded fallback path
	// when CompleteLevel fails. XP consistency is not guaranteed here.
	UpsertProgress(ctx context.Context, userID, levelID string, score int) error

	// Referrals.
	RedeemReferralCode(ctx context.Context, userID, code string) (RedeemResult, error)

	// Leaderboard.
	TopProfiles(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	FriendLeaderboard(ctx context.Context, userID string, limit int) ([]LeaderboardEntry, error)

	// Friendships.
	CreateFriendRequest(ctx context.Context, userID, friendID string) error
	AcceptFriendRequest(ctx context.Context, userID, requesterID string) error
	ListFriends(ctx context.Context, userID string) ([]FriendEntry, error)

	// Challenges.
	CreateChallenge(ctx context.Context, challengerID, opponentID, levelID string, seed int64) (deepsafe.Challenge, error)
	ListChallenges(ctx context.Context, userID string) ([]deepsafe.Challenge, error)
	DeclineChallenge(ctx context.Context, challengeID, opponentID string) error
	SubmitChallengeScore(ctx context.Context, challengeID, userID string, score int) (deepsafe.Challenge, error)
}

// AdminStore is the contract for the content-management endpoints.
type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdmin(ctx context.Context, email, passwordHash string) (id string, err error)
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error

	CreateModule(ctx context.Context, m deepsafe.Module) (deepsafe.Module, error)
	CreateLevel(ctx context.Context, l deepsafe.Level) (deepsafe.Level, error)
	CreateQuestion(ctx context.Context, q deepsafe.Question) (deepsafe.Question, error)
	ListModules(ctx context.Context) ([]deepsafe.Module, error)
}
