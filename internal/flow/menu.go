package flow

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

func commands() []Command {
	return []Command{
		{Name: "start", Description: "Main menu", Handle: func(t *Turn, _ string) error { return mainMenu(t, "") }},
		{Name: "menu", Description: "Main menu", Handle: func(t *Turn, _ string) error { return mainMenu(t, "") }},
		{Name: "help", Description: "What I can do", KeepsFlow: true, Handle: func(t *Turn, _ string) error { return t.Say(helpText()) }},
		{Name: "cancel", Description: "Abort the current dialog", Handle: func(t *Turn, _ string) error { return mainMenu(t, "Cancelled.") }},
		{Name: "newteam", Description: "Create a team", Handle: func(t *Turn, _ string) error { return startTeamCreate(t, "") }},
		{Name: "join", Description: "Join a team by code", Handle: startJoin},
		{Name: "newstudent", Description: "Add an individual student", Handle: func(t *Turn, _ string) error { return startStudentAdd(t, "") }},
		{Name: "newworkout", Description: "Build a workout", Handle: func(t *Turn, _ string) error { return startWorkoutCreate(t, "") }},
		{Name: "workout", Description: "Start a workout by code", Handle: startWorkoutByCode},
		{Name: "trainer", Description: "Link to your coach", Handle: startTrainerLink},
		{Name: "teams", Description: "Your teams", Handle: listTeams},
		{Name: "sessions", Description: "Your assigned workouts", Handle: listSessions},
	}
}

func actions() map[string]ActionHandler {
	return map[string]ActionHandler{
		TagCancel:         func(t *Turn, _ string) error { return mainMenu(t, "") },
		TagMainMenu:       func(t *Turn, _ string) error { return mainMenu(t, "") },
		TagRoleChoose:     func(t *Turn, _ string) error { return t.Reply(renderRoleMenu()) },
		TagRoleSet:        setRole,
		TagTeamNew:        startTeamCreate,
		TagTeamJoin:       startJoin,
		TagTeams:          listTeams,
		TagTeamCard:       showTeam,
		TagTeamExport:     exportTeam,
		TagRoster:         listRoster,
		TagRosterAdd:      startRosterAdd,
		TagRosterRemove:   removePlayer,
		TagStudentNew:     startStudentAdd,
		TagStudents:       listStudents,
		TagWorkoutNew:     startWorkoutCreate,
		TagWorkouts:       listWorkouts,
		TagWorkoutCard:    showWorkout,
		TagWorkoutAssign:  startWorkoutAssign,
		TagTrainerLink:    startTrainerLink,
		TagTrainees:       listTrainees,
		TagSessions:       listSessions,
		TagSessionStart:   startSession,
		TagSessionFinish:  startRPE,
		TagSessionAbandon: abandonSession,
	}
}

func mainMenu(t *Turn, notice string) error {
	s, err := t.Subject()
	if err != nil {
		return err
	}
	return t.Reply(renderMainMenu(s, notice))
}

func setRole(t *Turn, payload string) error {
	role := domain.Role(payload)
	if !role.Valid() {
		return t.Say(msgUnsupported)
	}
	if _, err := t.Subject(); err != nil {
		return err
	}
	s, err := t.Store().SetRole(t.ctx, t.Event.SubjectID, role)
	if err != nil {
		return err
	}
	t.subject = &s
	return t.Reply(renderMainMenu(s, "Role updated."))
}

// requireCoach loads the caller and tells non-coaches to switch role.
func requireCoach(t *Turn) (domain.Subject, bool, error) {
	s, err := t.Subject()
	if err != nil {
		return domain.Subject{}, false, err
	}
	if !s.IsCoach() {
		return s, false, t.Say(msgCoachOnly, []Button{{Text: "🔁 Switch role", Tag: TagRoleChoose}})
	}
	return s, true, nil
}

// ownTeam resolves a team id payload that must belong to the calling coach.
func ownTeam(t *Turn, payload string) (domain.Team, bool, error) {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return domain.Team{}, false, err
	}
	teamID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return domain.Team{}, false, t.Say(msgUnsupported)
	}
	team, err := t.Store().GetTeam(t.ctx, teamID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Team{}, false, t.Say(msgGone, menuRow())
	}
	if err != nil {
		return domain.Team{}, false, err
	}
	if team.CoachID != coach.ID {
		return domain.Team{}, false, t.Refuse(fmt.Errorf("team %d: %w", team.ID, domain.ErrForbidden), msgNotYours, menuRow())
	}
	return team, true, nil
}

// ownWorkout resolves a workout id payload authored by the calling coach.
func ownWorkout(t *Turn, payload string) (domain.WorkoutDefinition, bool, error) {
	coach, ok, err := requireCoach(t)
	if !ok || err != nil {
		return domain.WorkoutDefinition{}, false, err
	}
	workoutID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return domain.WorkoutDefinition{}, false, t.Say(msgUnsupported)
	}
	w, err := t.Store().GetWorkout(t.ctx, workoutID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WorkoutDefinition{}, false, t.Say(msgGone, menuRow())
	}
	if err != nil {
		return domain.WorkoutDefinition{}, false, err
	}
	if w.CreatedBy != coach.ID {
		return domain.WorkoutDefinition{}, false, t.Refuse(fmt.Errorf("workout %d: %w", w.ID, domain.ErrForbidden), msgNotYours, menuRow())
	}
	return w, true, nil
}
