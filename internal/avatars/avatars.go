// Package avatars stores user avatar images in S3, one object per user.
package avatars

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store uploads avatars keyed by user ID and returns their public URL.
// Uploading replaces the previous avatar. With no bucket configured the
// store is disabled and Upload reports an error.
type Store struct {
	client *s3.Client
	bucket string
	region string
}

func New(ctx context.Context, region, bucket string, logger *slog.Logger) (*Store, error) {
	if bucket == "" {
		logger.Info("avatar store disabled: no bucket configured")
		return &Store{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (s *Store) Enabled() bool { return s.client != nil }

// Upload writes the avatar for userID, overwriting any previous one, and
// returns its public URL.
func (s *Store) Upload(ctx context.Context, userID, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("avatar storage not configured")
	}

	key := fmt.Sprintf("%s/avatar", userID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
