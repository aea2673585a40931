package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/multicco/sportbot4-sub000/core/config"
	coredatabase "github.com/multicco/sportbot4-sub000/core/database"
	"github.com/multicco/sportbot4-sub000/core/logger"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the core
// logger and database implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Seeders  []Seeder

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

func (o Options) withDefaults() Options {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	return o
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run brings up logging, the database connection, the schema and reference
// data, in that order. The connection is closed again if a later step fails.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts = opts.withDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations: %w", err)
	}
	if err := seed(ctx, db, opts.Seeders); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Result{DB: db}, nil
}

func seed(ctx context.Context, db *sqlx.DB, seeders []Seeder) error {
	for _, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(ctx, db); err != nil {
			logger.Error(ctx, "db.seed", "seed.done",
				slog.String("status", "fail"),
				slog.String("operation", s.Name()),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("bootstrap: seeder %s: %w", s.Name(), err)
		}
		logger.Info(ctx, "db.seed", "seed.done",
			slog.String("status", "ok"),
			slog.String("operation", s.Name()),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}
