package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

// ErrOwnReferral is returned when a player tries to redeem their own code.
var ErrOwnReferral = errors.New("cannot redeem own referral code")

const timeFormat = "2006-01-02T15:04:05.000Z"

// SQLiteStore implements Store and AdminStore on a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func now() string {
	return time.Now().UTC().Format(timeFormat)
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure. The driver exposes no typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Sessions and sign-in ---

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (userSession, error) {
	var sess userSession
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.email
		FROM sessions s
		JOIN profiles p ON p.id = s.user_id
		WHERE s.id = ? AND s.expires_at > ?
	`, token, now()).Scan(&sess.UserID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES (?, ?, ?)
	`, token, userID, time.Now().UTC().Add(ttl).Format(timeFormat))
	return token, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, token)
	return err
}

func (s *SQLiteStore) CreateLoginToken(ctx context.Context, email string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_tokens (token, email, expires_at)
		VALUES (?, ?, ?)
	`, token, email, time.Now().UTC().Add(ttl).Format(timeFormat))
	return token, err
}

func (s *SQLiteStore) ConsumeLoginToken(ctx context.Context, token string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM login_tokens
		WHERE token = ? AND expires_at > ?
		RETURNING email
	`, token, now()).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return email, err
}

// --- Profiles and hearts ---

const profileColumns = `id, email, COALESCE(username, ''), COALESCE(avatar_url, ''),
	xp, current_hearts, highest_streak, is_premium, COALESCE(referral_code, '')`

func scanProfile(row *sql.Row) (deepsafe.Profile, error) {
	var p deepsafe.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.AvatarURL,
		&p.XP, &p.CurrentHearts, &p.HighestStreak, &p.IsPremium, &p.ReferralCode)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) ProfileByID(ctx context.Context, id string) (deepsafe.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

func (s *SQLiteStore) ProfileByEmail(ctx context.Context, email string) (deepsafe.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email))
}

func (s *SQLiteStore) ProfileByUsername(ctx context.Context, username string) (deepsafe.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = ?`, username))
}

func (s *SQLiteStore) CreateProfile(ctx context.Context, email, username string) (deepsafe.Profile, error) {
	// Usernames are unique; a taken sign-in display name is dropped and
	// the player picks one later.
	if username != "" {
		if _, err := s.ProfileByUsername(ctx, username); err == nil {
			username = ""
		} else if !errors.Is(err, ErrNotFound) {
			return deepsafe.Profile{}, err
		}
	}

	id := uuid.NewString()
	// Referral codes are short, uppercase, and unique by construction.
	code := strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, username, current_hearts, referral_code)
		VALUES (?, ?, NULLIF(?, ''), ?, ?)
	`, id, email, username, deepsafe.MaxHearts, code)
	if err != nil {
		return deepsafe.Profile{}, err
	}
	return s.ProfileByID(ctx, id)
}

func (s *SQLiteStore) UpdateUsername(ctx context.Context, id, username string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET username = ?, updated_at = ? WHERE id = ?
	`, username, now(), id)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetAvatarURL(ctx context.Context, id, url string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET avatar_url = ?, updated_at = ? WHERE id = ?
	`, url, now(), id)
	return err
}

func (s *SQLiteStore) SetPremium(ctx context.Context, id string, premium bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET is_premium = ?, updated_at = ? WHERE id = ?
	`, premium, now(), id)
	return err
}

// DecrementHearts removes one heart atomically, saturating at zero.
// Premium players keep their hearts.
func (s *SQLiteStore) DecrementHearts(ctx context.Context, id string) (int, error) {
	var hearts int
	err := s.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET current_hearts = CASE WHEN is_premium = 1 THEN current_hearts ELSE MAX(current_hearts - 1, 0) END,
			updated_at = ?
		WHERE id = ?
		RETURNING current_hearts
	`, now(), id).Scan(&hearts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return hearts, err
}

func (s *SQLiteStore) AddHearts(ctx context.Context, id string, n int) (int, error) {
	var hearts int
	err := s.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET current_hearts = MIN(current_hearts + ?, ?), updated_at = ?
		WHERE id = ?
		RETURNING current_hearts
	`, n, deepsafe.MaxHearts, now(), id).Scan(&hearts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return hearts, err
}

func (s *SQLiteStore) RefillHearts(ctx context.Context, id string) (int, error) {
	var hearts int
	err := s.db.QueryRowContext(ctx, `
		UPDATE profiles SET current_hearts = ?, updated_at = ?
		WHERE id = ?
		RETURNING current_hearts
	`, deepsafe.MaxHearts, now(), id).Scan(&hearts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return hearts, err
}

// --- Saga content ---

const levelColumns = `l.id, l.module_id, l.day_number, l.title, l.is_boss_level, l.xp_reward,
	m.title, COALESCE(m.theme_color, ''), m.order_index`

func (s *SQLiteStore) ListLevels(ctx context.Context) ([]deepsafe.Level, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+levelColumns+`
		FROM levels l
		JOIN modules m ON m.id = l.module_id
		ORDER BY l.day_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []deepsafe.Level
	for rows.Next() {
		var l deepsafe.Level
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.DayNumber, &l.Title, &l.IsBossLevel,
			&l.XPReward, &l.ModuleTitle, &l.ThemeColor, &l.OrderIndex); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (s *SQLiteStore) LevelByID(ctx context.Context, id string) (deepsafe.Level, error) {
	var l deepsafe.Level
	err := s.db.QueryRowContext(ctx, `
		SELECT `+levelColumns+`
		FROM levels l
		JOIN modules m ON m.id = l.module_id
		WHERE l.id = ?
	`, id).Scan(&l.ID, &l.ModuleID, &l.DayNumber, &l.Title, &l.IsBossLevel,
		&l.XPReward, &l.ModuleTitle, &l.ThemeColor, &l.OrderIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	return l, err
}

func (s *SQLiteStore) QuestionsByLevel(ctx context.Context, levelID string) ([]deepsafe.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level_id, type, text, options, correct_index,
			COALESCE(explanation, ''), COALESCE(image_url, ''), COALESCE(hotspots, '[]')
		FROM questions
		WHERE level_id = ?
		ORDER BY created_at, id
	`, levelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []deepsafe.Question
	for rows.Next() {
		var q deepsafe.Question
		var optionsJSON, hotspotsJSON string
		if err := rows.Scan(&q.ID, &q.LevelID, &q.Type, &q.Text, &optionsJSON,
			&q.CorrectIndex, &q.Explanation, &q.ImageURL, &hotspotsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("decoding options for question %s: %w", q.ID, err)
		}
		if err := json.Unmarshal([]byte(hotspotsJSON), &q.Hotspots); err != nil {
			return nil, fmt.Errorf("decoding hotspots for question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) CompletedLevelIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quiz_id FROM user_progress WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Completion ---

// CompleteLevel upserts the completion record and credits XP in one
// transaction. XP and streak are credited only for the first completion
// of a level; repeats keep the best score.
func (s *SQLiteStore) CompleteLevel(ctx context.Context, userID, levelID string, score, earnedXP int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_progress (id, user_id, quiz_id, score, completed_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), userID, levelID, score, now())
	if err != nil {
		return err
	}

	inserted, _ := result.RowsAffected()
	if inserted == 0 {
		// Repeat completion: keep the best score, no XP.
		_, err = tx.ExecContext(ctx, `
			UPDATE user_progress SET score = MAX(score, ?), completed_at = ?
			WHERE user_id = ? AND quiz_id = ?
		`, score, now(), userID, levelID)
		if err != nil {
			return err
		}
		return tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE profiles
		SET xp = xp + ?, highest_streak = highest_streak + 1, updated_at = ?
		WHERE id = ?
	`, earnedXP, now(), userID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertProgress is the degraded fallback: the score persists but no XP
// is credited.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, userID, levelID string, score int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_progress (id, user_id, quiz_id, score, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET score = MAX(score, excluded.score), completed_at = excluded.completed_at
	`, uuid.NewString(), userID, levelID, score, now())
	return err
}

// --- Referrals ---

func (s *SQLiteStore) RedeemReferralCode(ctx context.Context, userID, code string) (RedeemResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RedeemResult{}, err
	}
	defer tx.Rollback()

	var referrerID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM profiles WHERE referral_code = ?
	`, strings.ToUpper(strings.TrimSpace(code))).Scan(&referrerID)
	if errors.Is(err, sql.ErrNoRows) {
		return RedeemResult{}, ErrNotFound
	}
	if err != nil {
		return RedeemResult{}, err
	}
	if referrerID == userID {
		return RedeemResult{}, ErrOwnReferral
	}

	// Referrer gets a heart (capped), redeemer gets XP.
	if _, err := tx.ExecContext(ctx, `
		UPDATE profiles SET current_hearts = MIN(current_hearts + 1, ?), updated_at = ?
		WHERE id = ?
	`, deepsafe.MaxHearts, now(), referrerID); err != nil {
		return RedeemResult{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE profiles SET xp = xp + ?, updated_at = ? WHERE id = ?
	`, deepsafe.ReferralXP, now(), userID); err != nil {
		return RedeemResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return RedeemResult{}, err
	}
	return RedeemResult{ReferrerID: referrerID, XPAwarded: deepsafe.ReferralXP}, nil
}

// --- Leaderboard ---

func scanLeaderboard(rows *sql.Rows) ([]LeaderboardEntry, error) {
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.AvatarURL, &e.XP); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) TopProfiles(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(username, ''), COALESCE(avatar_url, ''), xp
		FROM profiles
		ORDER BY xp DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanLeaderboard(rows)
}

func (s *SQLiteStore) FriendLeaderboard(ctx context.Context, userID string, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, COALESCE(p.username, ''), COALESCE(p.avatar_url, ''), p.xp
		FROM profiles p
		WHERE p.id = ?
			OR p.id IN (
				SELECT friend_id FROM friendships WHERE user_id = ? AND status = 'accepted'
				UNION
				SELECT user_id FROM friendships WHERE friend_id = ? AND status = 'accepted'
			)
		ORDER BY p.xp DESC, p.id
		LIMIT ?
	`, userID, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanLeaderboard(rows)
}

// --- Friendships ---

func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, userID, friendID string) error {
	// Reject when a friendship already exists in either direction.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (id, user_id, friend_id, status)
		SELECT ?, ?, ?, 'pending'
		WHERE NOT EXISTS (
			SELECT 1 FROM friendships
			WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
		)
	`, uuid.NewString(), userID, friendID, userID, friendID, friendID, userID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, userID, requesterID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE friendships SET status = 'accepted'
		WHERE user_id = ? AND friend_id = ? AND status = 'pending'
	`, requesterID, userID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]FriendEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END,
			COALESCE(p.username, ''), COALESCE(p.avatar_url, ''), p.xp,
			f.status, f.user_id != ?
		FROM friendships f
		JOIN profiles p ON p.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = ? OR f.friend_id = ?) AND f.status != 'blocked'
		ORDER BY f.created_at
	`, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []FriendEntry
	for rows.Next() {
		var f FriendEntry
		if err := rows.Scan(&f.FriendID, &f.Username, &f.AvatarURL, &f.XP, &f.Status, &f.Inbound); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// --- Challenges ---

func scanChallenge(row *sql.Row) (deepsafe.Challenge, error) {
	var c deepsafe.Challenge
	var seed sql.NullInt64
	var cScore, oScore sql.NullInt64
	var winner sql.NullString
	var createdAt string
	err := row.Scan(&c.ID, &c.ChallengerID, &c.OpponentID, &c.LevelID, &c.Status,
		&seed, &cScore, &oScore, &winner, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	if seed.Valid {
		c.QuizSeed = &seed.Int64
	}
	if cScore.Valid {
		v := int(cScore.Int64)
		c.ChallengerScore = &v
	}
	if oScore.Valid {
		v := int(oScore.Int64)
		c.OpponentScore = &v
	}
	c.WinnerID = winner.String
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return c, nil
}

const challengeColumns = `id, challenger_id, opponent_id, quiz_id, status,
	quiz_seed, challenger_score, opponent_score, winner_id, created_at`

// CreateChallenge inserts a pending challenge. The partial unique index on
// pending rows makes the at-most-one-pending rule atomic: a concurrent
// duplicate loses the insert, there is no check-then-act window.
func (s *SQLiteStore) CreateChallenge(ctx context.Context, challengerID, opponentID, levelID string, seed int64) (deepsafe.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO challenges (id, challenger_id, opponent_id, quiz_id, status, quiz_seed)
		VALUES (?, ?, ?, ?, 'pending', ?)
		ON CONFLICT (challenger_id, opponent_id, quiz_id) WHERE status = 'pending' DO NOTHING
		RETURNING `+challengeColumns+`
	`, uuid.NewString(), challengerID, opponentID, levelID, seed)

	c, err := scanChallenge(row)
	if errors.Is(err, ErrNotFound) {
		return c, ErrDuplicate
	}
	return c, err
}

func (s *SQLiteStore) ListChallenges(ctx context.Context, userID string) ([]deepsafe.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE challenger_id = ? OR opponent_id = ?
		ORDER BY created_at DESC
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []deepsafe.Challenge
	for rows.Next() {
		var c deepsafe.Challenge
		var seed, cScore, oScore sql.NullInt64
		var winner sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.ChallengerID, &c.OpponentID, &c.LevelID, &c.Status,
			&seed, &cScore, &oScore, &winner, &createdAt); err != nil {
			return nil, err
		}
		if seed.Valid {
			c.QuizSeed = &seed.Int64
		}
		if cScore.Valid {
			v := int(cScore.Int64)
			c.ChallengerScore = &v
		}
		if oScore.Valid {
			v := int(oScore.Int64)
			c.OpponentScore = &v
		}
		c.WinnerID = winner.String
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (s *SQLiteStore) DeclineChallenge(ctx context.Context, challengeID, opponentID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE challenges SET status = 'declined'
		WHERE id = ? AND opponent_id = ? AND status = 'pending'
	`, challengeID, opponentID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitChallengeScore records the caller's score. When both sides have
// played, the challenge resolves: higher score wins, ties have no winner.
func (s *SQLiteStore) SubmitChallengeScore(ctx context.Context, challengeID, userID string, score int) (deepsafe.Challenge, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return deepsafe.Challenge{}, err
	}
	defer tx.Rollback()

	var challengerID, opponentID string
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT challenger_id, opponent_id, status FROM challenges WHERE id = ?
	`, challengeID).Scan(&challengerID, &opponentID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return deepsafe.Challenge{}, ErrNotFound
	}
	if err != nil {
		return deepsafe.Challenge{}, err
	}
	if status != string(deepsafe.ChallengePending) {
		return deepsafe.Challenge{}, fmt.Errorf("challenge is %s, not pending", status)
	}

	var column string
	switch userID {
	case challengerID:
		column = "challenger_score"
	case opponentID:
		column = "opponent_score"
	default:
		return deepsafe.Challenge{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE challenges SET `+column+` = ? WHERE id = ?`, score, challengeID); err != nil {
		return deepsafe.Challenge{}, err
	}

	// Resolve once both scores are in.
	if _, err := tx.ExecContext(ctx, `
		UPDATE challenges
		SET status = 'completed',
			winner_id = CASE
				WHEN challenger_score > opponent_score THEN challenger_id
				WHEN opponent_score > challenger_score THEN opponent_id
				ELSE NULL
			END
		WHERE id = ? AND challenger_score IS NOT NULL AND opponent_score IS NOT NULL
	`, challengeID); err != nil {
		return deepsafe.Challenge{}, err
	}

	c, err := scanChallenge(tx.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, challengeID))
	if err != nil {
		return c, err
	}
	return c, tx.Commit()
}

// --- Admin ---

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash)
		VALUES (?, ?, ?)
	`, id, email, passwordHash)
	return id, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id)
		VALUES (?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) CreateModule(ctx context.Context, m deepsafe.Module) (deepsafe.Module, error) {
	m.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO modules (id, title, description, theme_color, order_index)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
	`, m.ID, m.Title, m.Description, m.ThemeColor, m.OrderIndex)
	return m, err
}

func (s *SQLiteStore) CreateLevel(ctx context.Context, l deepsafe.Level) (deepsafe.Level, error) {
	l.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO levels (id, module_id, day_number, title, is_boss_level, xp_reward)
		VALUES (?, ?, ?, ?, ?, ?)
	`, l.ID, l.ModuleID, l.DayNumber, l.Title, l.IsBossLevel, l.XPReward)
	return l, err
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, q deepsafe.Question) (deepsafe.Question, error) {
	q.ID = uuid.NewString()
	if q.Type == "" {
		q.Type = deepsafe.QuestionText
	}
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return q, fmt.Errorf("encoding options: %w", err)
	}
	var hotspotsJSON any
	if len(q.Hotspots) > 0 {
		b, err := json.Marshal(q.Hotspots)
		if err != nil {
			return q, fmt.Errorf("encoding hotspots: %w", err)
		}
		hotspotsJSON = string(b)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (id, level_id, type, text, options, correct_index, explanation, image_url, hotspots)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
	`, q.ID, q.LevelID, q.Type, q.Text, string(optionsJSON), q.CorrectIndex, q.Explanation, q.ImageURL, hotspotsJSON)
	return q, err
}

func (s *SQLiteStore) ListModules(ctx context.Context) ([]deepsafe.Module, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(description, ''), COALESCE(theme_color, ''), order_index
		FROM modules
		ORDER BY order_index
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []deepsafe.Module
	for rows.Next() {
		var m deepsafe.Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.ThemeColor, &m.OrderIndex); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}
