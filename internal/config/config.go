package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/deepsafe.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Public base URL of the API, used in sign-in links and OAuth redirects.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	// Where the web client lives; checkout and OAuth flows redirect here.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	SESRegion    string `env:"SES_REGION" envDefault:"eu-west-1"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME" envDefault:"Deepsafe"`

	AvatarBucket string `env:"AVATAR_BUCKET"`
	AvatarRegion string `env:"AVATAR_REGION" envDefault:"eu-west-1"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripePremiumPrice  string `env:"STRIPE_PREMIUM_PRICE_ID"`
	StripeRefillPrice   string `env:"STRIPE_REFILL_PRICE_ID"`
	StripeFreezePrice   string `env:"STRIPE_FREEZE_PRICE_ID"`

	SeedDemoContent bool `env:"SEED_DEMO_CONTENT" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
