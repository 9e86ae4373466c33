package server

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/deepsafelabs/deepsafe-api/internal/deepsafe"
)

type seedModule struct {
	title      string
	themeColor string
	levels     []seedLevel
}

type seedLevel struct {
	title     string
	questions []seedQuestion
}

type seedQuestion struct {
	text    string
	options []string
	correct int
	explain string
}

var demoModules = []seedModule{
	{
		title:      "Password Security",
		themeColor: "#45A29E",
		levels: []seedLevel{
			{
				title: "What makes a password strong?",
				questions: []seedQuestion{
					{
						text:    "Which of these passwords is the strongest?",
						options: []string{"password123", "Tr0ub4dor&3", "correct-horse-battery-staple-91!", "qwerty2024"},
						correct: 2,
						explain: "Long passphrases beat short complex passwords: length is what drives up cracking time.",
					},
					{
						text:    "How often should you reuse the same password across sites?",
						options: []string{"Never", "Only on unimportant sites", "Whenever it's easier to remember", "On at most three sites"},
						correct: 0,
						explain: "One breached site exposes every account sharing that password. A password manager removes the need to reuse.",
					},
					{
						text:    "What is a password manager for?",
						options: []string{"Storing passwords in a plain text file", "Generating and storing unique passwords per site", "Sharing passwords with colleagues", "Remembering one master password for everything"},
						correct: 1,
						explain: "A manager generates a unique random password per site and keeps them encrypted behind one master secret.",
					},
				},
			},
			{
				title: "Two-factor authentication",
				questions: []seedQuestion{
					{
						text:    "Which second factor is the most resistant to phishing?",
						options: []string{"SMS codes", "Email codes", "A hardware security key", "Security questions"},
						correct: 2,
						explain: "Hardware keys verify the site's origin, so they cannot be tricked into signing in to a fake page.",
					},
					{
						text:    "An attacker has your password but not your second factor. What happens?",
						options: []string{"They get in anyway", "They are blocked at the second step", "Your account is deleted", "The password stops working"},
						correct: 1,
						explain: "That is the point of a second factor: a stolen password alone is not enough.",
					},
				},
			},
		},
	},
	{
		title:      "Phishing Defense",
		themeColor: "#C3073F",
		levels: []seedLevel{
			{
				title: "Spotting a phishing email",
				questions: []seedQuestion{
					{
						text:    "An email from 'your bank' asks you to verify your account via a link. What do you do?",
						options: []string{"Click the link and sign in", "Reply with your account number", "Open your bank's site directly and check there", "Forward it to friends as a warning"},
						correct: 2,
						explain: "Never authenticate through a link you were sent. Navigate to the site yourself.",
					},
					{
						text:    "Which of these is a common phishing tell?",
						options: []string{"A personalized greeting", "Urgency and threats of account closure", "A plain text signature", "Correct spelling"},
						correct: 1,
						explain: "Manufactured urgency short-circuits careful reading. Legitimate institutions rarely threaten instant closure.",
					},
					{
						text:    "The sender address is 'support@paypa1.com'. What's wrong?",
						options: []string{"Nothing, it's PayPal", "The domain is spoofed with a digit 1", "Support addresses never send email", "The TLD should be .org"},
						correct: 1,
						explain: "Lookalike domains swap characters that render similarly. Read the domain character by character.",
					},
				},
			},
		},
	},
}

const (
	demoAdminEmail    = "admin@deepsafe.local"
	demoAdminPassword = "deepsafe-admin"
)

// SeedDemo loads the demo curriculum and a demo admin if the database has
// no modules yet. Idempotent: an already seeded database is left alone.
// Every seventh level is a boss level worth more XP.
func SeedDemo(ctx context.Context, logger *slog.Logger, store AdminStore) error {
	existing, err := store.ListModules(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	day := 0
	for i, sm := range demoModules {
		m, err := store.CreateModule(ctx, deepsafe.Module{
			Title:      sm.title,
			ThemeColor: sm.themeColor,
			OrderIndex: i + 1,
		})
		if err != nil {
			return fmt.Errorf("seeding module %q: %w", sm.title, err)
		}

		for _, sl := range sm.levels {
			day++
			boss := day%7 == 0
			xp := 20
			if boss {
				xp = 50
			}
			l, err := store.CreateLevel(ctx, deepsafe.Level{
				ModuleID:    m.ID,
				DayNumber:   day,
				Title:       sl.title,
				IsBossLevel: boss,
				XPReward:    xp,
			})
			if err != nil {
				return fmt.Errorf("seeding level %q: %w", sl.title, err)
			}

			for _, sq := range sl.questions {
				if _, err := store.CreateQuestion(ctx, deepsafe.Question{
					LevelID:      l.ID,
					Type:         deepsafe.QuestionText,
					Text:         sq.text,
					Options:      sq.options,
					CorrectIndex: sq.correct,
					Explanation:  sq.explain,
				}); err != nil {
					return fmt.Errorf("seeding question: %w", err)
				}
			}
		}
	}

	if err := seedDemoAdmin(ctx, store); err != nil {
		return err
	}

	logger.Info("demo content seeded", "modules", len(demoModules), "levels", day)
	return nil
}

func seedDemoAdmin(ctx context.Context, store AdminStore) error {
	if _, _, err := store.AdminByEmail(ctx, demoAdminEmail); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(demoAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = store.CreateAdmin(ctx, demoAdminEmail, string(hash))
	return err
}
