// Package bot connects the flow dispatcher to Telegram through the core
// telegram runtime.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	tg "github.com/multicco/sportbot4-sub000/core/telegram"
	"github.com/multicco/sportbot4-sub000/core/telegram/commands"
	tghelpers "github.com/multicco/sportbot4-sub000/core/telegram/helpers"
	"github.com/multicco/sportbot4-sub000/core/telegram/router"
	"github.com/multicco/sportbot4-sub000/internal/flow"

	tele "gopkg.in/telebot.v4"
)

const (
	msgTextOnly   = "I only understand text and buttons."
	msgAdminsOnly = "This command is for operators."
	msgSlowDown   = "Too fast, try again in a moment."
)

// Options configures the adapter.
type Options struct {
	// IsAdmin gates operator commands.
	IsAdmin func(userID int64) bool
	// Sweep abandons stale sessions on demand and reports how many changed.
	// The /sweep operator command is registered only when it is set.
	Sweep func(ctx context.Context) (int64, error)
}

// Adapter feeds Telegram updates into a flow dispatcher.
type Adapter struct {
	flows *flow.Dispatcher
	opts  Options
}

// New returns an adapter for flows.
func New(flows *flow.Dispatcher, opts Options) *Adapter {
	return &Adapter{flows: flows, opts: opts}
}

// Register publishes commands and callback tags to reg and routes free text
// and unknown callbacks to the dispatcher.
func (a *Adapter) Register(reg *tg.Registry) error {
	for _, cmd := range a.flows.Commands() {
		if err := reg.RegisterCommand("/"+cmd.Name, commands.Command{
			Handler:     a.handle,
			Description: cmd.Description,
		}); err != nil {
			return fmt.Errorf("register /%s: %w", cmd.Name, err)
		}
	}
	if a.opts.Sweep != nil {
		if err := reg.RegisterCommand("/sweep", commands.Command{
			Handler:     a.sweep,
			Description: "Abandon stale sessions now",
			AdminOnly:   true,
			Hidden:      true,
		}); err != nil {
			return fmt.Errorf("register /sweep: %w", err)
		}
	}
	for _, tag := range flow.Tags() {
		if err := reg.RegisterCallback(tag, a.handle); err != nil {
			return fmt.Errorf("register callback %s: %w", tag, err)
		}
	}
	// Stale buttons from older builds still reach the dispatcher, which
	// answers them as unsupported.
	reg.SetCallbackNotFound(a.handle)
	reg.SetTextFallback(a.handle)
	return nil
}

// Routes wires the registry into telebot endpoints.
func (a *Adapter) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: a.opts.IsAdmin,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, msgAdminsOnly)
		},
	})
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownDocument: func(c tele.Context) error {
			return tghelpers.SendText(c, msgTextOnly)
		},
	})...)
	return append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
}

// OnLimited answers rate-limited callbacks so the client stops waiting.
// Limited messages are dropped silently.
func OnLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
	}
	return nil
}

func (a *Adapter) handle(c tele.Context) error {
	if chat := c.Chat(); chat != nil && chat.Type != tele.ChatPrivate {
		logger.Debug(tghelpers.BuildContext(c), "tg", "update.skip",
			slog.String("reason", "not_private"),
			slog.String("chat_type", string(chat.Type)),
		)
		return nil
	}
	ev, ok := eventFrom(c)
	if !ok {
		return nil
	}
	return a.flows.Dispatch(tghelpers.BuildContext(c), ev, chatResponder{c: c})
}

func (a *Adapter) sweep(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	n, err := a.opts.Sweep(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, "Sweep failed, see logs.")
		return err
	}
	logger.Info(ctx, "jobs", "sweep.manual", slog.Int64("abandoned", n))
	return tghelpers.SendText(c, fmt.Sprintf("Abandoned %d stale session(s).", n))
}
