package flow

import (
	"fmt"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
)

// Rule is one row of the routing table.
type Rule struct {
	Name   string
	Match  func(t *Turn) bool
	Handle func(t *Turn) error
}

// Command is a slash command.
type Command struct {
	Name        string
	Description string
	// KeepsFlow leaves an active conversation in place.
	KeepsFlow bool
	Handle    func(t *Turn, args string) error
}

// Table is the ordered routing table. The first matching rule handles the
// event and the last rule matches everything.
type Table struct {
	rules []Rule
}

// Names lists rule names in evaluation order.
func (tb *Table) Names() []string {
	out := make([]string, len(tb.rules))
	for i, r := range tb.rules {
		out[i] = r.Name
	}
	return out
}

func (tb *Table) match(t *Turn) Rule {
	for _, r := range tb.rules {
		if r.Match(t) {
			return r
		}
	}
	return tb.rules[len(tb.rules)-1]
}

func newTable(d *Dispatcher, commands []Command, actions map[string]ActionHandler) *Table {
	byName := make(map[string]Command, len(commands))
	for _, c := range commands {
		byName[c.Name] = c
	}
	scoped := make(map[string]bool)
	for _, def := range d.flows {
		for _, spec := range def.Steps {
			for tag := range spec.Actions {
				if _, clash := actions[tag]; clash {
					panic(fmt.Sprintf("flow: tag %s is both stateless and step-scoped", tag))
				}
				scoped[tag] = true
			}
		}
	}

	isAction := func(t *Turn) bool { return t.Event.Kind == KindAction }
	isText := func(t *Turn) bool { return t.Event.Kind == KindText }

	return &Table{rules: []Rule{
		{
			Name: "command",
			Match: func(t *Turn) bool {
				_, ok := byName[t.Event.Command]
				return t.Event.Kind == KindCommand && ok
			},
			Handle: func(t *Turn) error {
				cmd := byName[t.Event.Command]
				if t.Conv.Active() && !cmd.KeepsFlow {
					if err := t.Finish(); err != nil {
						return err
					}
				}
				return cmd.Handle(t, t.Event.Text)
			},
		},
		{
			Name:   "cancel",
			Match:  func(t *Turn) bool { return isAction(t) && t.Event.Tag == TagCancel && t.Conv.Active() },
			Handle: cancel,
		},
		{
			Name: "step-action",
			Match: func(t *Turn) bool {
				return isAction(t) && t.spec != nil && t.spec.Actions[t.Event.Tag] != nil
			},
			Handle: func(t *Turn) error {
				return t.spec.Actions[t.Event.Tag](t, t.Event.Payload)
			},
		},
		{
			Name: "action",
			Match: func(t *Turn) bool {
				_, ok := actions[t.Event.Tag]
				return isAction(t) && ok
			},
			Handle: func(t *Turn) error {
				return actions[t.Event.Tag](t, t.Event.Payload)
			},
		},
		{
			Name:   "step-action-ignored",
			Match:  func(t *Turn) bool { return isAction(t) && scoped[t.Event.Tag] && !t.stale() },
			Handle: func(*Turn) error { return nil },
		},
		{
			Name:   "step-text",
			Match:  func(t *Turn) bool { return isText(t) && t.spec != nil },
			Handle: stepText,
		},
		{
			Name:   "stale",
			Match:  func(t *Turn) bool { return (isText(t) || isAction(t)) && t.stale() },
			Handle: restart,
		},
		{
			Name:   "fallback",
			Match:  func(*Turn) bool { return true },
			Handle: fallback,
		},
	}}
}

func cancel(t *Turn) error {
	def, last := t.def, t.Conv
	if err := t.Finish(); err != nil {
		return err
	}
	if def != nil && def.OnCancel != nil {
		return def.OnCancel(t, last)
	}
	return mainMenu(t, "")
}

func stepText(t *Turn) error {
	if t.spec.OnText == nil {
		return t.Retry(msgUseButtons)
	}
	return t.spec.OnText(t, t.Event.Text)
}

func restart(t *Turn) error {
	logger.Warn(t.ctx, "flow", "flow.stale",
		slog.String("flow", string(t.Conv.Flow)),
		slog.String("step", string(t.Conv.Step)),
	)
	if err := t.Finish(); err != nil {
		return err
	}
	return t.Say(msgRestart, []Button{{Text: "🏠 Menu", Tag: TagMainMenu}})
}

func fallback(t *Turn) error {
	if t.Event.Kind == KindAction {
		return t.Say(msgUnsupported)
	}
	return t.Say(helpText())
}
