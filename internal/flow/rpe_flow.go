package flow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowRPE state.FlowID = "session_rpe"

	rpeStepValue state.Step = "rpe"
)

func rpeFlow() *Definition {
	return &Definition{
		ID:    flowRPE,
		First: rpeStepValue,
		Entry: []string{"session_id", "workout_name"},
		Steps: map[state.Step]*StepSpec{
			rpeStepValue: {
				Prompt: func(t *Turn) (Reply, error) {
					return Reply{Text: fmt.Sprintf(
						"How hard was %s? Rate from 1 to 10, decimals allowed (for example 7.5).",
						t.Value("workout_name"))}, nil
				},
				OnText: recordRPE,
			},
		},
		OnCancel: func(t *Turn, _ state.Conversation) error { return listSessions(t, "") },
	}
}

func startRPE(t *Turn, payload string) error {
	s, ok, err := ownSession(t, payload)
	if !ok || err != nil {
		return err
	}
	if s.Status != domain.SessionInProgress {
		return t.Say("Only a started workout can be finished.", menuRow())
	}
	return t.Start(flowRPE, map[string]string{
		"session_id":   id(s.ID),
		"workout_name": s.WorkoutName,
	})
}

func recordRPE(t *Turn, text string) error {
	rpe, err := ParseRPE(text)
	if err != nil {
		return t.Retry("Send a number from 1 to 10, like 7 or 8,5.")
	}
	sessionID, err := t.Int64("session_id")
	if err != nil {
		return err
	}
	now := t.d.deps.Now()
	var duration *int
	if s, err := t.Store().GetSession(t.ctx, sessionID); err == nil && s.StartedAt != nil {
		mins := int(now.Sub(*s.StartedAt).Minutes())
		if mins >= 0 {
			duration = &mins
		}
	}
	done, err := t.Store().CompleteSession(t.ctx, domain.SessionResult{
		SessionID:       sessionID,
		SubjectID:       t.Event.SubjectID,
		RPE:             rpe,
		CompletedAt:     now,
		DurationMinutes: duration,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return t.Abort("This workout is already closed.", menuRow())
	case errors.Is(err, domain.ErrNotFound):
		return t.Abort(msgGone, menuRow())
	case err != nil:
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "session.completed",
		slog.Int64("session_id", done.ID),
		slog.Float64("rpe", rpe),
	)
	return t.Say(fmt.Sprintf("Logged %s with RPE %.1f. Good work!", done.WorkoutName, rpe), menuRow())
}
