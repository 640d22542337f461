package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lifepath/internal/cache"
	"lifepath/internal/config"
	"lifepath/internal/db"
	"lifepath/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	svc := game.NewService(pool, redisCache, logger, game.Options{})

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("LIFEPATH_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := svc.RotateDailyChallenges(ctx, cfg.DailyActiveCount); err != nil {
			logger.Error("rotation failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.DailyRotateEvery)
	defer ticker.Stop()

	logger.Info("worker started", "rotate_every", cfg.DailyRotateEvery.String(), "active_count", cfg.DailyActiveCount)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := svc.RotateDailyChallenges(ctx, cfg.DailyActiveCount); err != nil {
				logger.Error("challenge rotation failed", "err", err)
				continue
			}
			logger.Info("challenge rotation complete")
		}
	}
}
