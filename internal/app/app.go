// Package app composes storage, flows and the Telegram runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/multicco/sportbot4-sub000/core/bootstrap"
	"github.com/multicco/sportbot4-sub000/core/logger"
	tg "github.com/multicco/sportbot4-sub000/core/telegram"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/bot"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/export"
	"github.com/multicco/sportbot4-sub000/internal/flow"
	"github.com/multicco/sportbot4-sub000/internal/jobs"
	"github.com/multicco/sportbot4-sub000/internal/ops"
	"github.com/multicco/sportbot4-sub000/internal/storage"
	"github.com/multicco/sportbot4-sub000/internal/storage/postgres"
)

// App holds the wired components between bootstrap and shutdown.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *postgres.Store
	notifier *bot.Notifier
	adapter  *bot.Adapter
	registry *tg.Registry
	sweeper  *jobs.Sweeper

	scheduler *jobs.Scheduler
	ops       *ops.Server
}

// Bootstrap runs the infrastructure pipeline and wires the application.
// hooks may override the bootstrap steps; nil fields use the defaults.
func Bootstrap(ctx context.Context, cfg *Config, hooks bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	hooks.Config = &cfg.Config
	hooks.Database = cfg.Database
	hooks.Seeders = append(hooks.Seeders, postgres.ExerciseSeeder())

	res, err := bootstrap.Run(ctx, hooks)
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// New wires the application around an open database.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("app: config and database are required")
	}
	a := &App{
		cfg:      cfg,
		db:       db,
		store:    postgres.New(db),
		notifier: bot.NewNotifier(),
		registry: tg.NewRegistry(),
	}
	a.sweeper = &jobs.Sweeper{Store: a.store, After: cfg.AbandonAfter()}

	flows := flow.New(flow.Deps{
		Store:        a.store,
		State:        state.NewMemoryStore(),
		Notifier:     a.notifier,
		Exporter:     exporter{},
		TeamCapacity: cfg.Teams.DefaultMaxMembers,
	})
	a.adapter = bot.New(flows, bot.Options{
		IsAdmin: cfg.Telegram.IsAdmin,
		Sweep:   a.sweeper.RunOnce,
	})
	if err := a.adapter.Register(a.registry); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	return a, nil
}

// TelegramRunOptions describes how the runtime should serve this app.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, bot.OnLimited),
		Routes:      a.adapter.Routes(a.registry),
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot != nil {
		a.notifier.Bind(rt.Bot, rt.Dispatcher)
	}

	sched, err := jobs.Start(ctx, a.cfg.Jobs.AbandonSchedule, a.sweeper)
	if err != nil {
		return err
	}
	a.scheduler = sched

	if a.cfg.Ops.Listen != "" {
		srv, err := ops.Listen(ctx, a.cfg.Ops.Listen, a.store)
		if err != nil {
			a.scheduler.Stop()
			return fmt.Errorf("app: ops listener: %w", err)
		}
		a.ops = srv
	}
	return nil
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	a.scheduler.Stop()
	var errs []error
	if err := a.ops.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("ops shutdown: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	err := errors.Join(errs...)
	if err != nil {
		logger.Error(ctx, "app", "stop.failed", slog.String("err", err.Error()))
	}
	return err
}

type exporter struct{}

func (exporter) TeamReport(team domain.Team, rows []storage.ReportRow) (flow.Document, error) {
	data, err := export.TeamReport(team, rows)
	if err != nil {
		return flow.Document{}, err
	}
	return flow.Document{
		FileName: export.FileName(team),
		Caption:  fmt.Sprintf("%s: %d session(s)", team.Name, len(rows)),
		Data:     data,
	}, nil
}
