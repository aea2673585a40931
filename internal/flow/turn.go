package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

// Turn is the handling of a single event for a single subject.
type Turn struct {
	Event Event
	Conv  state.Conversation

	ctx     context.Context
	d       *Dispatcher
	out     Responder
	def     *Definition
	spec    *StepSpec
	subject *domain.Subject
}

func (t *Turn) resolve() {
	t.def, t.spec = nil, nil
	if !t.Conv.Active() {
		return
	}
	if def, ok := t.d.flows[t.Conv.Flow]; ok {
		t.def = def
		t.spec = def.Steps[t.Conv.Step]
	}
}

// stale reports a stored flow or step this build does not know.
func (t *Turn) stale() bool {
	return t.Conv.Active() && t.spec == nil
}

func (t *Turn) Context() context.Context { return t.ctx }

func (t *Turn) Store() storage.Gateway { return t.d.deps.Store }

// Reply sends r to the current chat.
func (t *Turn) Reply(r Reply) error {
	if err := t.out.Send(t.ctx, r); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// Say sends plain text with optional button rows.
func (t *Turn) Say(text string, rows ...[]Button) error {
	return t.Reply(Reply{Text: text, Buttons: rows})
}

// Value returns a collected field.
func (t *Turn) Value(key string) string { return t.Conv.Value(key) }

// Has reports whether a field was collected. Skipped fields are absent.
func (t *Turn) Has(key string) bool { return t.Conv.Has(key) }

// Int64 returns a collected numeric field.
func (t *Turn) Int64(key string) (int64, error) {
	v, err := strconv.ParseInt(t.Conv.Value(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

// Subject returns the caller's record, creating it on first contact.
func (t *Turn) Subject() (domain.Subject, error) {
	if t.subject != nil {
		return *t.subject, nil
	}
	s, err := t.Store().GetSubject(t.ctx, t.Event.SubjectID)
	if errors.Is(err, domain.ErrNotFound) {
		s, err = t.Store().UpsertSubject(t.ctx, domain.Subject{
			ID:        t.Event.SubjectID,
			Username:  t.Event.Username,
			FirstName: t.Event.FirstName,
		})
	}
	if err != nil {
		return domain.Subject{}, err
	}
	t.subject = &s
	return s, nil
}

// Start clears any previous conversation, enters flow id at its first step
// with the given entry fields and prompts.
func (t *Turn) Start(id state.FlowID, fields map[string]string) error {
	if err := t.enter(id, fields); err != nil {
		return err
	}
	return t.prompt()
}

// enter is Start without the prompt, for entry points that already carry the
// first step's input.
func (t *Turn) enter(id state.FlowID, fields map[string]string) error {
	def, ok := t.d.flows[id]
	if !ok {
		return fmt.Errorf("start: unknown flow %s", id)
	}
	for k := range fields {
		if !def.acceptsEntry(k) {
			return fmt.Errorf("start %s: undeclared entry field %q", id, k)
		}
	}
	if err := t.d.deps.State.Clear(t.ctx, t.Event.SubjectID); err != nil {
		return fmt.Errorf("start %s: %w", id, err)
	}
	if err := t.d.deps.State.SetStep(t.ctx, t.Event.SubjectID, id, def.First); err != nil {
		return fmt.Errorf("start %s: %w", id, err)
	}
	t.Conv = state.Conversation{SubjectID: t.Event.SubjectID, Flow: id, Step: def.First, Data: map[string]string{}}
	if len(fields) > 0 {
		if err := t.d.deps.State.MergeData(t.ctx, t.Event.SubjectID, fields); err != nil {
			return fmt.Errorf("start %s: %w", id, err)
		}
		for k, v := range fields {
			t.Conv.Data[k] = v
		}
	}
	t.resolve()
	t.ctx = logger.WithFlow(t.ctx, string(id), string(def.First))
	logger.Debug(t.ctx, "flow", "flow.start")
	return nil
}

// Advance stores fields declared by the current step, moves to next and prompts.
func (t *Turn) Advance(next state.Step, fields map[string]string) error {
	if t.spec == nil {
		return errors.New("advance: no active step")
	}
	if t.def.Steps[next] == nil {
		return fmt.Errorf("advance %s: unknown step %s", t.def.ID, next)
	}
	for k := range fields {
		if !t.spec.declares(k) {
			return fmt.Errorf("advance %s/%s: undeclared field %q", t.def.ID, t.Conv.Step, k)
		}
	}
	if len(fields) > 0 {
		if err := t.d.deps.State.MergeData(t.ctx, t.Event.SubjectID, fields); err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		for k, v := range fields {
			t.Conv.Data[k] = v
		}
	}
	if err := t.d.deps.State.SetStep(t.ctx, t.Event.SubjectID, t.def.ID, next); err != nil {
		return fmt.Errorf("advance: %w", err)
	}
	t.Conv.Step = next
	t.resolve()
	t.ctx = logger.WithFlow(t.ctx, string(t.def.ID), string(next))
	return t.prompt()
}

// Retry reports invalid input and keeps the current step.
func (t *Turn) Retry(text string) error {
	return t.Say(text, cancelRow())
}

// Finish drops the conversation. Callers render the outcome themselves.
func (t *Turn) Finish() error {
	if err := t.d.deps.State.Clear(t.ctx, t.Event.SubjectID); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	t.Conv = state.Conversation{SubjectID: t.Event.SubjectID, Data: map[string]string{}}
	t.def, t.spec = nil, nil
	return nil
}

// Abort finishes the conversation and explains why.
func (t *Turn) Abort(text string, rows ...[]Button) error {
	if err := t.Finish(); err != nil {
		return err
	}
	return t.Say(text, rows...)
}

// Refuse answers a business refusal such as a full roster or a foreign
// record and logs its code. The conversation is left as is.
func (t *Turn) Refuse(cause error, text string, rows ...[]Button) error {
	logger.Event(t.ctx, "flow", levelFor(cause), "flow.refused",
		slog.String("err_code", domain.CodeOf(cause)),
		slog.String("err", cause.Error()),
	)
	return t.Say(text, rows...)
}

// Decline is Refuse after dropping the conversation.
func (t *Turn) Decline(cause error, text string, rows ...[]Button) error {
	if err := t.Finish(); err != nil {
		return err
	}
	return t.Refuse(cause, text, rows...)
}

func (t *Turn) prompt() error {
	if t.spec == nil || t.spec.Prompt == nil {
		return nil
	}
	r, err := t.spec.Prompt(t)
	if err != nil {
		return err
	}
	r.Buttons = append(r.Buttons, cancelRow())
	return t.Reply(r)
}

// notify delivers r to another subject and swallows failures.
func (t *Turn) notify(subjectID int64, r Reply) {
	if t.d.deps.Notifier == nil || subjectID == t.Event.SubjectID {
		return
	}
	if err := t.d.deps.Notifier.Notify(t.ctx, subjectID, r); err != nil {
		logger.Warn(t.ctx, "flow", "notify.failed", logAttrs(subjectID, err)...)
	}
}
