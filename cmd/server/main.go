package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/deepsafelabs/deepsafe-api/internal/avatars"
	"github.com/deepsafelabs/deepsafe-api/internal/config"
	"github.com/deepsafelabs/deepsafe-api/internal/database"
	"github.com/deepsafelabs/deepsafe-api/internal/mailer"
	"github.com/deepsafelabs/deepsafe-api/internal/migrations"
	"github.com/deepsafelabs/deepsafe-api/internal/payments"
	"github.com/deepsafelabs/deepsafe-api/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Redis (optional: leaderboard cache degrades without it) ---
	rdb, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	} else {
		defer rdb.Close()
		logger.Info("connected to redis")
	}

	// --- Integrations ---
	mail, err := mailer.New(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		return fmt.Errorf("setting up mailer: %w", err)
	}
	av, err := avatars.New(ctx, cfg.AvatarRegion, cfg.AvatarBucket, logger)
	if err != nil {
		return fmt.Errorf("setting up avatar store: %w", err)
	}
	pay := payments.New(cfg.StripeSecretKey, cfg.AppURL)

	// --- Store and demo content ---
	store := server.NewSQLiteStore(db)
	if cfg.SeedDemoContent {
		if err := server.SeedDemo(ctx, logger, store); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:   logger,
		Store:    store,
		Admin:    store,
		DB:       db,
		Redis:    rdb,
		Broker:   server.NewBroker(),
		Mailer:   mail,
		Avatars:  av,
		Payments: pay,
		OAuth:    server.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL),
		Prices: server.ShopPrices{
			Premium:      cfg.StripePremiumPrice,
			Refill:       cfg.StripeRefillPrice,
			StreakFreeze: cfg.StripeFreezePrice,
		},
		BaseURL: cfg.BaseURL,
		AppURL:  cfg.AppURL,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
