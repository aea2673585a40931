package flow

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

func listSessions(t *Turn, _ string) error {
	s, err := t.Subject()
	if err != nil {
		return err
	}
	sessions, err := t.Store().ListActiveSessions(t.ctx, s.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderSessions(sessions))
}

// ownSession resolves a session id payload owned by the caller.
func ownSession(t *Turn, payload string) (domain.WorkoutSession, bool, error) {
	sessionID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return domain.WorkoutSession{}, false, t.Say(msgUnsupported)
	}
	s, err := t.Store().GetSession(t.ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && s.SubjectID != t.Event.SubjectID) {
		return domain.WorkoutSession{}, false, t.Say(msgGone, menuRow())
	}
	if err != nil {
		return domain.WorkoutSession{}, false, err
	}
	return s, true, nil
}

func startSession(t *Turn, payload string) error {
	s, ok, err := ownSession(t, payload)
	if !ok || err != nil {
		return err
	}
	started, err := t.Store().StartSession(t.ctx, s.ID, t.Event.SubjectID, t.d.deps.Now())
	if errors.Is(err, domain.ErrInvalidTransition) {
		return t.Say("This workout is already "+strings.ReplaceAll(string(s.Status), "_", " ")+".", menuRow())
	}
	if err != nil {
		return err
	}
	w, err := t.Store().GetWorkout(t.ctx, started.WorkoutID)
	if err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "session.started", slog.Int64("session_id", started.ID))
	return t.Reply(renderSessionStarted(w, started))
}

func abandonSession(t *Turn, payload string) error {
	s, ok, err := ownSession(t, payload)
	if !ok || err != nil {
		return err
	}
	err = t.Store().AbandonSession(t.ctx, s.ID, t.Event.SubjectID)
	if errors.Is(err, domain.ErrInvalidTransition) {
		return t.Say("This workout is already closed.", menuRow())
	}
	if err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "session.abandoned", slog.Int64("session_id", s.ID))
	return listSessions(t, "")
}

// startWorkoutByCode opens an in-progress session for a shared workout code.
func startWorkoutByCode(t *Turn, args string) error {
	code := strings.TrimSpace(args)
	if code == "" {
		return t.Say("Send the code along with the command, for example /workout AB12CD34.")
	}
	subject, err := t.Subject()
	if err != nil {
		return err
	}
	w, err := t.Store().GetWorkoutByCode(t.ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return t.Say("No workout with this code.")
	}
	if err != nil {
		return err
	}
	s, err := t.Store().StartWorkout(t.ctx, w.ID, subject.ID, t.d.deps.Now())
	if err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "session.started",
		slog.Int64("session_id", s.ID),
		slog.Int64("workout_id", w.ID),
	)
	return t.Reply(renderSessionStarted(w, s))
}
