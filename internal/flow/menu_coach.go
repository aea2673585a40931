package flow

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

func listTeams(t *Turn, _ string) error {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return err
	}
	teams, err := t.Store().ListCoachTeams(t.ctx, coach.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderTeams(teams))
}

func showTeam(t *Turn, payload string) error {
	team, ok, err := ownTeam(t, payload)
	if !ok || err != nil {
		return err
	}
	return t.Reply(renderTeamCard(team))
}

func listRoster(t *Turn, payload string) error {
	team, ok, err := ownTeam(t, payload)
	if !ok || err != nil {
		return err
	}
	players, err := t.Store().ListRoster(t.ctx, team.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderRoster(team, players))
}

// removePlayer deactivates a roster entry; the row is kept for history.
func removePlayer(t *Turn, payload string) error {
	playerID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return t.Say(msgUnsupported)
	}
	player, err := t.Store().GetRosterPlayer(t.ctx, playerID)
	if errors.Is(err, domain.ErrNotFound) {
		return t.Say(msgGone, menuRow())
	}
	if err != nil {
		return err
	}
	team, ok, err := ownTeam(t, id(player.TeamID))
	if !ok || err != nil {
		return err
	}
	if err := t.Store().DeactivateRosterPlayer(t.ctx, playerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	logger.Info(t.ctx, "service.roster", "roster.removed",
		slog.Int64("team_id", team.ID),
		slog.Int64("player_id", playerID),
	)
	players, err := t.Store().ListRoster(t.ctx, team.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderRoster(team, players))
}

func exportTeam(t *Turn, payload string) error {
	team, ok, err := ownTeam(t, payload)
	if !ok || err != nil {
		return err
	}
	if t.d.deps.Exporter == nil {
		return t.Say(msgUnsupported)
	}
	rows, err := t.Store().TeamReport(t.ctx, team.ID)
	if err != nil {
		return err
	}
	doc, err := t.d.deps.Exporter.TeamReport(team, rows)
	if err != nil {
		return err
	}
	return t.Reply(Reply{Document: &doc})
}

func listStudents(t *Turn, _ string) error {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return err
	}
	students, err := t.Store().ListStudents(t.ctx, coach.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderStudents(students))
}

func listTrainees(t *Turn, _ string) error {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return err
	}
	trainees, err := t.Store().ListTrainees(t.ctx, coach.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderTrainees(trainees))
}

func listWorkouts(t *Turn, _ string) error {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return err
	}
	workouts, err := t.Store().ListWorkouts(t.ctx, coach.ID)
	if err != nil {
		return err
	}
	return t.Reply(renderWorkouts(workouts))
}

func showWorkout(t *Turn, payload string) error {
	w, ok, err := ownWorkout(t, payload)
	if !ok || err != nil {
		return err
	}
	return t.Reply(renderWorkoutCard(w))
}
