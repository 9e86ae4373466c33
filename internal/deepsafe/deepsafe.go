// Package deepsafe defines the core domain types.
// It has zero external dependencies — everything here is pure Go.
package deepsafe

import "time"

// MaxHearts is the life cap for non-premium players.
const MaxHearts = 5

// ReferralXP is the XP credited to a player who redeems a referral code.
const ReferralXP = 50

type Profile struct {
	ID            string
	Email         string
	Username      string
	AvatarURL     string
	XP            int
	CurrentHearts int
	HighestStreak int
	IsPremium     bool
	ReferralCode  string
	UpdatedAt     time.Time
}

type Module struct {
	ID          string
	Title       string
	Description string
	ThemeColor  string
	OrderIndex  int
	CreatedAt   time.Time
}

type Level struct {
	ID          string
	ModuleID    string
	DayNumber   int
	Title       string
	IsBossLevel bool
	XPReward    int
	CreatedAt   time.Time

	// Denormalized from the parent module for saga rendering.
	ModuleTitle string
	ThemeColor  string
	OrderIndex  int
}

type QuestionType string

const (
	QuestionText  QuestionType = "text"
	QuestionImage QuestionType = "image"
)

type Question struct {
	ID           string
	LevelID      string
	Type         QuestionType
	Text         string
	Options      []string
	CorrectIndex int
	Explanation  string
	ImageURL     string
	Hotspots     []Hotspot
	CreatedAt    time.Time
}

// Hotspot annotates a region of an image question. Coordinates are
// percentages in [0, 100].
type Hotspot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

type Progress struct {
	ID          string
	UserID      string
	LevelID     string
	Score       int
	CompletedAt *time.Time
}

type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeDeclined  ChallengeStatus = "declined"
)

type Challenge struct {
	ID              string
	ChallengerID    string
	OpponentID      string
	LevelID         string
	Status          ChallengeStatus
	QuizSeed        *int64
	ChallengerScore *int
	OpponentScore   *int
	WinnerID        string
	CreatedAt       time.Time
}

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

type Friendship struct {
	ID        string
	UserID    string
	FriendID  string
	Status    FriendshipStatus
	CreatedAt time.Time
}
