package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/multicco/sportbot4-sub000/core/logger"
)

const (
	connectAttemptTimeout = 5 * time.Second
	connectRetryDelay     = 2 * time.Second
	// connectDeadline bounds how long startup waits for Postgres to accept
	// connections, e.g. while a compose stack is still booting.
	connectDeadline = 30 * time.Second
	defaultPoolSize = 10
)

// Connect opens the pool and pings until Postgres answers or connectDeadline passes.
func Connect(cfg Config) (*sqlx.DB, error) {
	pool := cfg.MaxConnections
	if pool <= 0 {
		pool = defaultPoolSize
	}
	ctx := context.Background()
	target := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}

	start := time.Now()
	deadline := start.Add(connectDeadline)
	for attempt := 1; ; attempt++ {
		db, err := dial(cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(pool)
			db.SetMaxIdleConns(pool)
			logger.Info(ctx, "db", "db.connect", append(target,
				slog.String("status", "ok"),
				slog.Int("pool_open", pool),
				slog.Int("attempts", attempt),
				slog.Duration("duration", logger.Took(start)),
			)...)
			return db, nil
		}
		if time.Now().Add(connectRetryDelay).After(deadline) {
			logger.Error(ctx, "db", "db.connect", append(target,
				slog.String("status", "fail"),
				slog.Int("attempts", attempt),
				slog.String("err", err.Error()),
			)...)
			return nil, fmt.Errorf("db connect: %w", err)
		}
		logger.Warn(ctx, "db", "db.connect", append(target,
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)...)
		time.Sleep(connectRetryDelay)
	}
}

func dial(dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectAttemptTimeout)
	defer cancel()
	// ConnectContext pings, so a returned pool is usable.
	return sqlx.ConnectContext(ctx, "postgres", dsn)
}
