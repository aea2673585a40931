package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

// DefaultTeamCapacity applies when the configuration leaves max members unset.
const DefaultTeamCapacity = 30

// ErrPanic wraps a recovered handler panic.
var ErrPanic = errors.New("flow: handler panic")

// Deps are the collaborators injected into the dispatcher.
type Deps struct {
	Store    storage.Gateway
	State    state.Store
	Notifier Notifier
	Exporter Exporter
	// Now is the clock used for session timestamps.
	Now          func() time.Time
	TeamCapacity int
}

// Dispatcher owns the routing table and every flow definition.
type Dispatcher struct {
	deps     Deps
	flows    map[state.FlowID]*Definition
	commands []Command
	table    *Table
}

// New wires flows, commands and stateless actions into a routing table.
func New(deps Deps) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.TeamCapacity <= 0 {
		deps.TeamCapacity = DefaultTeamCapacity
	}
	d := &Dispatcher{deps: deps}
	d.flows = indexFlows(
		teamCreateFlow(),
		joinFlow(),
		rosterAddFlow(),
		studentAddFlow(),
		rpeFlow(),
		workoutCreateFlow(),
		workoutAssignFlow(),
		trainerLinkFlow(),
	)
	d.commands = commands()
	d.table = newTable(d, d.commands, actions())
	return d
}

// Commands lists slash commands for client-side registration.
func (d *Dispatcher) Commands() []Command { return d.commands }

// Table exposes the routing table.
func (d *Dispatcher) Table() *Table { return d.table }

// Dispatch routes ev and replies through out. A handler error or panic is
// answered with a generic message, clears the subject's conversation and is
// returned to the caller for logging.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, out Responder) error {
	conv, err := d.deps.State.Get(ctx, ev.SubjectID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	t := &Turn{Event: ev, Conv: conv, d: d, out: out}
	t.resolve()
	t.ctx = logger.WithFlow(ctx, string(conv.Flow), string(conv.Step))

	rule := d.table.match(t)
	logger.Debug(t.ctx, "flow", "flow.route",
		slog.String("rule", rule.Name),
		slog.String("kind", ev.Kind.String()),
		slog.String("tag", ev.Tag),
	)
	if err := run(t, rule); err != nil {
		d.fail(t, rule, err)
		return err
	}
	return nil
}

func run(t *Turn, rule Rule) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(t.ctx, "flow", "flow.panic",
				slog.String("rule", rule.Name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return rule.Handle(t)
}

// levelFor grades a failure: conflicts are ordinary outcomes, refused
// ownership hints at stale or forged buttons, anything else is an outage.
func levelFor(err error) slog.Level {
	switch {
	case domain.IsConflict(err):
		return slog.LevelInfo
	case errors.Is(err, domain.ErrForbidden):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func (d *Dispatcher) fail(t *Turn, rule Rule, err error) {
	logger.Event(t.ctx, "flow", levelFor(err), "flow.failed",
		slog.String("rule", rule.Name),
		slog.String("err_code", domain.CodeOf(err)),
		slog.String("err", err.Error()),
	)
	if clearErr := d.deps.State.Clear(t.ctx, t.Event.SubjectID); clearErr != nil {
		logger.Error(t.ctx, "flow", "flow.clear_failed", slog.String("err", clearErr.Error()))
	}
	if sendErr := t.out.Send(t.ctx, Reply{
		Text:    msgGenericError,
		Buttons: [][]Button{{{Text: "🏠 Menu", Tag: TagMainMenu}}},
	}); sendErr != nil {
		logger.Warn(t.ctx, "flow", "flow.reply_failed", slog.String("err", sendErr.Error()))
	}
}

func logAttrs(subjectID int64, err error) []slog.Attr {
	return []slog.Attr{
		slog.Int64("subject_id", subjectID),
		slog.String("err", err.Error()),
	}
}
