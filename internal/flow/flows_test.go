package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

func TestCreateTeamFalcons(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "newteam", "")
	h.text(coachID, "Falcons")
	h.action(coachID, TagSkip, "")
	h.action(coachID, TagSport, "football")

	if strings.Join(h.store.writes, ",") != "CreateTeam" {
		t.Fatalf("writes = %v", h.store.writes)
	}
	var team domain.Team
	for _, tm := range h.store.teams {
		team = tm
	}
	if team.Name != "Falcons" || team.Description != "" || team.SportType != domain.SportFootball {
		t.Fatalf("team = %+v", team)
	}
	if team.MaxMembers != 30 || team.CoachID != coachID {
		t.Fatalf("team = %+v", team)
	}
	h.lastContains(team.AccessCode)
	if h.conv(coachID).Active() {
		t.Fatal("flow still active after completion")
	}
}

func TestCreateTeamRejectsShortName(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "newteam", "")
	h.text(coachID, "F")
	if h.step(coachID) != teamStepName {
		t.Fatalf("step = %s", h.step(coachID))
	}
	h.text(coachID, strings.Repeat("x", 101))
	if h.step(coachID) != teamStepName {
		t.Fatalf("step = %s", h.step(coachID))
	}
	h.text(coachID, "Фалконс")
	if h.step(coachID) != teamStepDescription {
		t.Fatalf("unicode name not accepted, step = %s", h.step(coachID))
	}
}

func TestJoinFalconsAsAlex(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)

	h.command(athleteID, "join", "")
	h.text(athleteID, strings.ToLower(team.AccessCode))
	h.text(athleteID, "Alex")
	h.action(athleteID, TagSkip, "")
	h.action(athleteID, TagSkip, "")
	h.text(athleteID, "7")

	if strings.Join(h.store.writes, ",") != "AddRosterPlayer" {
		t.Fatalf("writes = %v", h.store.writes)
	}
	if len(h.store.roster) != 1 {
		t.Fatalf("roster = %+v", h.store.roster)
	}
	p := h.store.roster[0]
	if p.FirstName != "Alex" || p.LastName != nil || p.Position != nil {
		t.Fatalf("player = %+v", p)
	}
	if p.JerseyNumber == nil || *p.JerseyNumber != 7 {
		t.Fatalf("jersey = %v", p.JerseyNumber)
	}
	if p.SubjectID == nil || *p.SubjectID != athleteID || p.TeamID != team.ID {
		t.Fatalf("player = %+v", p)
	}
	if h.conv(athleteID).Active() {
		t.Fatal("flow still active")
	}
	if len(h.notes.notes) != 1 || h.notes.notes[0].to != coachID {
		t.Fatalf("notes = %+v", h.notes.notes)
	}
}

func TestJoinByCommandArgument(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	h.command(athleteID, "join", team.AccessCode)
	if h.step(athleteID) != joinStepFirstName {
		t.Fatalf("step = %s", h.step(athleteID))
	}
	h.lastContains("Falcons")
}

func TestJoinUnknownCodeReprompts(t *testing.T) {
	h := newHarness(t)
	h.addTeam("Falcons", 20)
	h.command(athleteID, "join", "")
	h.text(athleteID, "WRONG123")
	if h.step(athleteID) != joinStepCode {
		t.Fatalf("step = %s", h.step(athleteID))
	}
}

func TestJoinFullTeamAbortsBeforeRosterSteps(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 1)
	other := int64(9)
	h.store.roster = append(h.store.roster, domain.RosterPlayer{ID: 5, TeamID: team.ID, SubjectID: &other, FirstName: "Sam", IsActive: true})

	h.command(athleteID, "join", "")
	h.text(athleteID, team.AccessCode)
	h.lastContains("full")
	if h.conv(athleteID).Active() {
		t.Fatal("flow active after full-team rejection")
	}
	if len(h.store.writes) != 0 {
		t.Fatalf("writes = %v", h.store.writes)
	}
}

func TestJoinAlreadyMemberAborts(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	me := athleteID
	h.store.roster = append(h.store.roster, domain.RosterPlayer{ID: 5, TeamID: team.ID, SubjectID: &me, FirstName: "Alex", IsActive: true})

	h.command(athleteID, "join", team.AccessCode)
	h.lastContains("already")
	if h.conv(athleteID).Active() {
		t.Fatal("flow active after duplicate join")
	}
}

func TestJoinJerseyBounds(t *testing.T) {
	for _, tc := range []struct {
		in string
		ok bool
	}{{"0", true}, {"99", true}, {"-1", false}, {"100", false}} {
		t.Run(tc.in, func(t *testing.T) {
			h := newHarness(t)
			team := h.addTeam("Falcons", 20)
			h.command(athleteID, "join", team.AccessCode)
			h.text(athleteID, "Alex")
			h.action(athleteID, TagSkip, "")
			h.action(athleteID, TagSkip, "")
			h.text(athleteID, tc.in)
			if tc.ok != (len(h.store.roster) == 1) {
				t.Fatalf("jersey %s: roster = %+v", tc.in, h.store.roster)
			}
			if !tc.ok && h.step(athleteID) != joinStepJersey {
				t.Fatalf("step = %s", h.step(athleteID))
			}
		})
	}
}

func TestCoachAddsRosterPlayer(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	h.action(coachID, TagRosterAdd, id(team.ID))
	h.text(coachID, "Jo")
	h.text(coachID, "Smith")
	h.text(coachID, "Goalkeeper")
	h.text(coachID, "0")
	if h.step(coachID) != rosterStepJersey {
		t.Fatal("jersey 0 accepted in coach-add")
	}
	h.text(coachID, "1000")
	if h.step(coachID) != rosterStepJersey {
		t.Fatal("jersey 1000 accepted in coach-add")
	}
	h.text(coachID, "999")

	if len(h.store.roster) != 1 {
		t.Fatalf("roster = %+v", h.store.roster)
	}
	p := h.store.roster[0]
	if p.SubjectID != nil || *p.LastName != "Smith" || *p.Position != "Goalkeeper" || *p.JerseyNumber != 999 {
		t.Fatalf("player = %+v", p)
	}
}

func TestRosterAddRequiresOwnership(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	team.CoachID = 55
	h.store.teams[team.ID] = team
	h.action(coachID, TagRosterAdd, id(team.ID))
	if h.conv(coachID).Active() {
		t.Fatal("foreign coach entered roster flow")
	}
	if h.last().Text != msgNotYours {
		t.Fatalf("reply = %q", h.last().Text)
	}
}

func TestForeignTeamCardKeepsActiveFlow(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Hawks", 20)
	team.CoachID = 55
	h.store.teams[team.ID] = team

	h.command(coachID, "newteam", "")
	before := h.step(coachID)
	h.action(coachID, TagTeamCard, id(team.ID))
	if h.last().Text != msgNotYours {
		t.Fatalf("reply = %q", h.last().Text)
	}
	if h.step(coachID) != before {
		t.Fatalf("step = %q, want %q", h.step(coachID), before)
	}
}

func TestCancelRosterAddReturnsToTeamCard(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	h.action(coachID, TagRosterAdd, id(team.ID))
	h.action(coachID, TagCancel, "")
	if !hasButton(h.last(), TagRoster) {
		t.Fatalf("reply = %+v", h.last())
	}
}

func TestRemovePlayerIsSoft(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	h.store.roster = append(h.store.roster, domain.RosterPlayer{ID: 5, TeamID: team.ID, FirstName: "Sam", IsActive: true})
	h.action(coachID, TagRosterRemove, "5")
	if len(h.store.roster) != 1 || h.store.roster[0].IsActive {
		t.Fatalf("roster = %+v", h.store.roster)
	}
	h.lastContains("No players yet")
}

func TestAddStudentWithSkippedOptionals(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "newstudent", "")
	h.text(coachID, "Ivan")
	h.action(coachID, TagSkip, "")
	h.action(coachID, TagSkip, "")
	h.action(coachID, TagLevel, "intermediate")

	if len(h.store.students) != 1 {
		t.Fatalf("students = %+v", h.store.students)
	}
	s := h.store.students[0]
	if s.LastName != nil || s.Specialization != nil || s.Level != domain.LevelIntermediate || s.CoachID != coachID {
		t.Fatalf("student = %+v", s)
	}
}

func TestAddStudentWithSpecialization(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "newstudent", "")
	h.text(coachID, "Ivan")
	h.text(coachID, "Petrov")
	h.action(coachID, TagSpecialty, "rehab")
	h.action(coachID, TagLevel, "expert")
	if h.step(coachID) != studentStepLevel {
		t.Fatal("invalid level accepted")
	}
	h.action(coachID, TagLevel, "beginner")
	s := h.store.students[0]
	if *s.Specialization != domain.SpecRehab || *s.LastName != "Petrov" {
		t.Fatalf("student = %+v", s)
	}
}

func (h *harness) seedWorkout() domain.WorkoutDefinition {
	w := domain.WorkoutDefinition{
		ID: h.store.id(), Name: "Legs", CreatedBy: coachID, UniqueID: "LEGS0001",
		Phases: map[domain.Phase][]domain.ExerciseAssignment{
			domain.PhaseMain: {{ExerciseName: "Back squat", Sets: 5, RepsMin: 5, RepsMax: 5}},
		},
	}
	h.store.workouts[w.ID] = w
	return w
}

func TestRecordRPE(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	started := h.now.Add(-45 * time.Minute)
	s := h.store.newSession(w.ID, athleteID, domain.SessionInProgress, &started)

	h.action(athleteID, TagSessionFinish, id(s.ID))
	if h.step(athleteID) != rpeStepValue {
		t.Fatalf("step = %s", h.step(athleteID))
	}
	for _, bad := range []string{"0", "11", "abc"} {
		h.text(athleteID, bad)
		if h.step(athleteID) != rpeStepValue {
			t.Fatalf("%q moved the step", bad)
		}
	}
	h.text(athleteID, "8,5")

	got := h.store.sessions[s.ID]
	if got.Status != domain.SessionCompleted || got.RPE == nil || *got.RPE != 8.5 {
		t.Fatalf("session = %+v", got)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 45 || !got.CompletedAt.Equal(h.now) {
		t.Fatalf("session = %+v", got)
	}
	if h.conv(athleteID).Active() {
		t.Fatal("flow still active")
	}
}

func TestFinishRequiresStartedSession(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	s := h.store.newSession(w.ID, athleteID, domain.SessionPending, nil)
	h.action(athleteID, TagSessionFinish, id(s.ID))
	if h.conv(athleteID).Active() {
		t.Fatal("pending session entered the RPE flow")
	}
	h.action(coachID, TagSessionFinish, id(s.ID))
	if h.last().Text != msgGone {
		t.Fatal("foreign session was not hidden")
	}
}

func TestSessionLifecycleFromMenu(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	s := h.store.newSession(w.ID, athleteID, domain.SessionPending, nil)

	h.command(athleteID, "sessions", "")
	if !hasButton(h.last(), TagSessionStart) {
		t.Fatalf("reply = %+v", h.last())
	}
	h.action(athleteID, TagSessionStart, id(s.ID))
	if h.store.sessions[s.ID].Status != domain.SessionInProgress {
		t.Fatal("session not started")
	}
	if !hasButton(h.last(), TagSessionFinish) {
		t.Fatalf("reply = %+v", h.last())
	}
	h.action(athleteID, TagSessionStart, id(s.ID))
	h.lastContains("already")
	h.action(athleteID, TagSessionAbandon, id(s.ID))
	if h.store.sessions[s.ID].Status != domain.SessionAbandoned {
		t.Fatal("session not abandoned")
	}
}

func TestStartWorkoutByCode(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	h.command(athleteID, "workout", "legs0001")
	var s domain.WorkoutSession
	for _, v := range h.store.sessions {
		s = v
	}
	if s.WorkoutID != w.ID || s.Status != domain.SessionInProgress || s.StartedAt == nil {
		t.Fatalf("session = %+v", s)
	}
	h.command(athleteID, "workout", "nope")
	h.lastContains("No workout")
}

func TestCreateWorkoutWithPhases(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "newworkout", "")
	h.text(coachID, "Legs")
	h.action(coachID, TagSkip, "")
	if hasButton(h.last(), TagPhaseDone) {
		t.Fatal("done offered before any exercise")
	}
	h.action(coachID, TagPhaseDone, "")
	if len(h.store.writes) != 0 {
		t.Fatal("empty workout persisted")
	}

	h.action(coachID, TagPhase, string(domain.PhaseMain))
	if !hasButton(h.last(), TagExercisePick) {
		t.Fatalf("catalog picks missing: %+v", h.last())
	}
	h.text(coachID, "Back squat")
	h.text(coachID, "5")
	h.text(coachID, "12-8")
	if h.step(coachID) != workoutStepReps {
		t.Fatal("descending reps range accepted")
	}
	h.text(coachID, "8-12")
	h.text(coachID, "70%")
	h.text(coachID, "90")

	h.action(coachID, TagPhase, string(domain.PhaseWarmup))
	h.action(coachID, TagExercisePick, "Jog")
	h.text(coachID, "1")
	h.text(coachID, "10")
	h.action(coachID, TagSkip, "")
	h.text(coachID, "0")
	h.action(coachID, TagPhaseDone, "")

	if strings.Join(h.store.writes, ",") != "CreateWorkout" {
		t.Fatalf("writes = %v", h.store.writes)
	}
	var w domain.WorkoutDefinition
	for _, v := range h.store.workouts {
		w = v
	}
	if w.Name != "Legs" || w.ExerciseCount() != 2 {
		t.Fatalf("workout = %+v", w)
	}
	main := w.Phases[domain.PhaseMain][0]
	if main.RepsMin != 8 || main.RepsMax != 12 || main.Percent1RM == nil || *main.Percent1RM != 70 || main.RestSeconds != 90 {
		t.Fatalf("main = %+v", main)
	}
	warm := w.Phases[domain.PhaseWarmup][0]
	if warm.ExerciseName != "Jog" || warm.Percent1RM != nil || warm.FixedWeight != nil {
		t.Fatalf("warmup load leaked from previous exercise: %+v", warm)
	}
	if ph := w.OrderedPhases(); ph[0] != domain.PhaseWarmup {
		t.Fatalf("phases = %v", ph)
	}
	h.lastContains(w.UniqueID)
	if h.conv(coachID).Active() {
		t.Fatal("flow still active")
	}
}

func TestAssignWorkoutToTeam(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	team := h.addTeam("Falcons", 20)
	me := athleteID
	h.store.roster = append(h.store.roster,
		domain.RosterPlayer{ID: 5, TeamID: team.ID, SubjectID: &me, FirstName: "Alex", IsActive: true},
		domain.RosterPlayer{ID: 6, TeamID: team.ID, FirstName: "Offline", IsActive: true},
	)

	h.action(coachID, TagWorkoutAssign, id(w.ID))
	if !hasButton(h.last(), TagAssignTeam) {
		t.Fatalf("reply = %+v", h.last())
	}
	h.action(coachID, TagAssignTeam, id(team.ID))

	sessions, _ := h.store.ListActiveSessions(context.Background(), athleteID)
	if len(sessions) != 1 || sessions[0].Status != domain.SessionPending {
		t.Fatalf("sessions = %+v", sessions)
	}
	if len(h.notes.notes) != 1 || h.notes.notes[0].to != athleteID {
		t.Fatalf("notes = %+v", h.notes.notes)
	}
	if !hasButton(h.notes.notes[0].reply, TagSessionStart) {
		t.Fatal("notification lacks a start button")
	}
	if h.conv(coachID).Active() {
		t.Fatal("flow still active")
	}
}

func TestAssignWorkoutToTrainee(t *testing.T) {
	h := newHarness(t)
	w := h.seedWorkout()
	h.store.trainees[[2]int64{coachID, athleteID}] = true

	h.action(coachID, TagWorkoutAssign, id(w.ID))
	h.action(coachID, TagAssignTrainee, "999")
	if h.last().Text != msgNotYours || h.conv(coachID).Active() {
		t.Fatal("unlinked trainee accepted")
	}

	h.action(coachID, TagWorkoutAssign, id(w.ID))
	h.action(coachID, TagAssignTrainee, id(athleteID))
	if strings.Join(h.store.writes, ",") != "AssignWorkout" {
		t.Fatalf("writes = %v", h.store.writes)
	}
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notes.err = errors.New("blocked by user")
	team := h.addTeam("Falcons", 20)
	h.command(athleteID, "join", team.AccessCode)
	h.text(athleteID, "Alex")
	h.action(athleteID, TagSkip, "")
	h.action(athleteID, TagSkip, "")
	h.action(athleteID, TagSkip, "")
	if len(h.store.roster) != 1 {
		t.Fatal("join failed because of notification error")
	}
	h.lastContains("Welcome")
}

func TestLinkTrainer(t *testing.T) {
	h := newHarness(t)
	h.command(athleteID, "trainer", "")
	h.text(athleteID, "bad")
	if h.step(athleteID) != trainerStepCode {
		t.Fatal("unknown code left the step")
	}
	h.text(athleteID, "coach001")
	if !h.store.trainees[[2]int64{coachID, athleteID}] {
		t.Fatal("trainee not linked")
	}
	if len(h.notes.notes) != 1 || h.notes.notes[0].to != coachID {
		t.Fatalf("notes = %+v", h.notes.notes)
	}
	h.command(athleteID, "trainer", "COACH001")
	h.lastContains("already linked")
	if h.conv(athleteID).Active() {
		t.Fatal("flow active after duplicate link")
	}
}

func TestCoachCannotLinkToSelf(t *testing.T) {
	h := newHarness(t)
	h.command(coachID, "trainer", "COACH001")
	if h.step(coachID) != trainerStepCode {
		t.Fatal("self link left the step")
	}
}

func TestExportTeamSendsDocument(t *testing.T) {
	h := newHarness(t)
	team := h.addTeam("Falcons", 20)
	h.action(coachID, TagTeamExport, id(team.ID))
	doc := h.last().Document
	if doc == nil || doc.FileName != "Falcons.xlsx" {
		t.Fatalf("reply = %+v", h.last())
	}
}
