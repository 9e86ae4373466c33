// Package mailer sends transactional email through Amazon SESv2.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends sign-in link emails. With no from-address configured it is
// disabled and silently skips sends, which keeps local development and
// tests free of AWS credentials.
type Mailer struct {
	client   *sesv2.Client
	from     string
	fromName string
	logger   *slog.Logger
}

func New(ctx context.Context, region, fromEmail, fromName string, logger *slog.Logger) (*Mailer, error) {
	if fromEmail == "" {
		logger.Info("mailer disabled: no from address configured")
		return &Mailer{logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &Mailer{
		client:   sesv2.NewFromConfig(cfg),
		from:     fromEmail,
		fromName: fromName,
		logger:   logger,
	}, nil
}

func (m *Mailer) Enabled() bool { return m.client != nil }

// SendLoginLink emails a one-time sign-in link.
func (m *Mailer) SendLoginLink(ctx context.Context, to, link string) error {
	if !m.Enabled() {
		m.logger.Info("skipping sign-in email (mailer disabled)", "to", to)
		return nil
	}

	subject := "Your Deepsafe sign-in link"
	htmlBody := fmt.Sprintf(`<p>Tap the button below to sign in to Deepsafe.</p>
<p><a href="%s" style="display:inline-block;padding:12px 30px;background:#45A29E;color:#fff;text-decoration:none;border-radius:8px">Sign in</a></p>
<p>The link expires in 15 minutes. If you didn't request it, ignore this email.</p>`, link)
	textBody := fmt.Sprintf("Sign in to Deepsafe: %s\n\nThe link expires in 15 minutes.", link)

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", m.fromName, m.from)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending sign-in email: %w", err)
	}
	return nil
}
