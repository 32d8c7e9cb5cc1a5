package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"worktime/cache"
	"worktime/config"
	"worktime/database"
	"worktime/store"
	"worktime/timeutil"
)

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	clock  timeutil.Clock
	store  *store.Gorm
	redis  *redis.Client
	cache  *cache.Cache
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		clock:  timeutil.SystemClock{Location: loc},
		store:  store.NewGorm(db),
	}

	if cfg.CacheEnabled() {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		} else {
			a.redis = client
			a.cache = cache.New(client, cfg.CacheTTL, logger)
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// parseDate reads a YYYY-MM-DD flag in the clock's location; empty means now.
func parseDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}
