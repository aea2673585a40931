package router

import (
	"context"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	tg "github.com/multicco/sportbot4-sub000/core/telegram"
	"github.com/multicco/sportbot4-sub000/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command. Admin-only
// commands are gated by opts.IsAdmin.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	}

	defs := reg.Commands()
	routes := make([]tg.Route, 0, len(defs))
	for cmd, def := range defs {
		name := normalizeHandlerName(cmd)
		inner := def.Handler
		h := func(c tele.Context) error {
			return summarize(name).run(c, func() error { return inner(c) })
		}
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: wrap(h)})
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.Int("commands", len(defs)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
