package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowWorkoutAssign state.FlowID = "workout_assign"

	assignStepTarget state.Step = "target"
)

func workoutAssignFlow() *Definition {
	return &Definition{
		ID:    flowWorkoutAssign,
		First: assignStepTarget,
		Entry: []string{"workout_id", "workout_name"},
		Steps: map[state.Step]*StepSpec{
			assignStepTarget: {
				Prompt: promptAssignTarget,
				Actions: map[string]ActionHandler{
					TagAssignTeam:    assignToTeam,
					TagAssignTrainee: assignToTrainee,
				},
			},
		},
		OnCancel: func(t *Turn, last state.Conversation) error { return showWorkout(t, last.Value("workout_id")) },
	}
}

func startWorkoutAssign(t *Turn, payload string) error {
	w, ok, err := ownWorkout(t, payload)
	if !ok || err != nil {
		return err
	}
	return t.Start(flowWorkoutAssign, map[string]string{
		"workout_id":   id(w.ID),
		"workout_name": w.Name,
	})
}

func promptAssignTarget(t *Turn) (Reply, error) {
	coach, err := t.Subject()
	if err != nil {
		return Reply{}, err
	}
	teams, err := t.Store().ListCoachTeams(t.ctx, coach.ID)
	if err != nil {
		return Reply{}, err
	}
	trainees, err := t.Store().ListTrainees(t.ctx, coach.ID)
	if err != nil {
		return Reply{}, err
	}
	rows := make([][]Button, 0, len(teams)+len(trainees))
	for _, team := range teams {
		rows = append(rows, []Button{{Text: "👥 " + team.Name, Tag: TagAssignTeam, Payload: id(team.ID)}})
	}
	for _, tr := range trainees {
		rows = append(rows, []Button{{Text: "🏃 " + tr.FirstName, Tag: TagAssignTrainee, Payload: id(tr.SubjectID)}})
	}
	text := fmt.Sprintf("Who should do %s?", t.Value("workout_name"))
	if len(rows) == 0 {
		text = "You have no teams or trainees to assign to yet."
	}
	return Reply{Text: text, Buttons: rows}, nil
}

func assignToTeam(t *Turn, payload string) error {
	team, ok, err := ownTeam(t, payload)
	if !ok || err != nil {
		return err
	}
	players, err := t.Store().ListRoster(t.ctx, team.ID)
	if err != nil {
		return err
	}
	var subjects []int64
	for _, p := range players {
		if p.IsActive && p.SubjectID != nil {
			subjects = append(subjects, *p.SubjectID)
		}
	}
	if len(subjects) == 0 {
		return t.Abort(fmt.Sprintf("Nobody on %s has joined through the bot yet.", team.Name), menuRow())
	}
	return assign(t, subjects, team.Name)
}

func assignToTrainee(t *Turn, payload string) error {
	coach, err := t.Subject()
	if err != nil {
		return err
	}
	subjectID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return t.Retry(msgUseButtons)
	}
	linked, err := t.Store().IsTrainee(t.ctx, coach.ID, subjectID)
	if err != nil {
		return err
	}
	if !linked {
		return t.Decline(fmt.Errorf("trainee %d: %w", subjectID, domain.ErrForbidden), msgNotYours, menuRow())
	}
	return assign(t, []int64{subjectID}, "your trainee")
}

func assign(t *Turn, subjects []int64, target string) error {
	workoutID, err := t.Int64("workout_id")
	if err != nil {
		return err
	}
	name := t.Value("workout_name")
	sessions, err := t.Store().AssignWorkout(t.ctx, workoutID, subjects)
	if errors.Is(err, domain.ErrNotFound) {
		return t.Abort(msgGone, menuRow())
	}
	if err != nil {
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "workout.assigned",
		slog.Int64("workout_id", workoutID),
		slog.Int("sessions", len(sessions)),
	)
	for _, s := range sessions {
		t.notify(s.SubjectID, Reply{
			Text:    "New workout assigned: " + name,
			Buttons: [][]Button{sessionButtons(s)},
		})
	}
	return t.Say(fmt.Sprintf("Assigned %s to %s (%d athlete(s)).", name, target, len(sessions)), menuRow())
}
