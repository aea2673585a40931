// Package storage declares the persistence gateway used by conversation flows.
// Implementations return domain.ErrNotFound for unresolved references and the
// other domain errors for business conflicts; anything else is an outage.
package storage

import (
	"context"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

// Subjects stores Telegram users and their roles.
type Subjects interface {
	UpsertSubject(ctx context.Context, s domain.Subject) (domain.Subject, error)
	GetSubject(ctx context.Context, id int64) (domain.Subject, error)
	// SetRole switches the role; becoming a coach issues a coach code once.
	SetRole(ctx context.Context, id int64, role domain.Role) (domain.Subject, error)
	GetCoachByCode(ctx context.Context, code string) (domain.Subject, error)
}

// Teams stores teams.
type Teams interface {
	// CreateTeam persists the team with a freshly generated access code.
	CreateTeam(ctx context.Context, t domain.NewTeam) (domain.Team, error)
	GetTeam(ctx context.Context, id int64) (domain.Team, error)
	GetTeamByCode(ctx context.Context, code string) (domain.Team, error)
	ListCoachTeams(ctx context.Context, coachID int64) ([]domain.Team, error)
}

// Roster stores team members.
type Roster interface {
	IsTeamMember(ctx context.Context, teamID, subjectID int64) (bool, error)
	// AddRosterPlayer enforces capacity and, for claimed players, single membership.
	AddRosterPlayer(ctx context.Context, p domain.NewRosterPlayer) (domain.RosterPlayer, error)
	GetRosterPlayer(ctx context.Context, id int64) (domain.RosterPlayer, error)
	ListRoster(ctx context.Context, teamID int64) ([]domain.RosterPlayer, error)
	// DeactivateRosterPlayer marks the player inactive without deleting the row.
	DeactivateRosterPlayer(ctx context.Context, playerID int64) error
}

// Students stores coach-owned individual students.
type Students interface {
	AddStudent(ctx context.Context, s domain.NewStudent) (domain.IndividualStudent, error)
	ListStudents(ctx context.Context, coachID int64) ([]domain.IndividualStudent, error)
}

// Trainees stores trainer-trainee links.
type Trainees interface {
	AssignTrainee(ctx context.Context, coachID, subjectID int64) error
	IsTrainee(ctx context.Context, coachID, subjectID int64) (bool, error)
	ListTrainees(ctx context.Context, coachID int64) ([]domain.Trainee, error)
}

// Workouts stores workout definitions.
type Workouts interface {
	// CreateWorkout writes the workout and all its exercises atomically.
	CreateWorkout(ctx context.Context, w domain.NewWorkout) (domain.WorkoutDefinition, error)
	GetWorkout(ctx context.Context, id int64) (domain.WorkoutDefinition, error)
	GetWorkoutByCode(ctx context.Context, code string) (domain.WorkoutDefinition, error)
	ListWorkouts(ctx context.Context, coachID int64) ([]domain.WorkoutDefinition, error)
}

// Exercises reads the exercise catalog.
type Exercises interface {
	ListExercises(ctx context.Context, limit int) ([]string, error)
}

// Sessions stores workout sessions.
type Sessions interface {
	// AssignWorkout creates one pending session per subject.
	AssignWorkout(ctx context.Context, workoutID int64, subjectIDs []int64) ([]domain.WorkoutSession, error)
	// StartWorkout creates an in-progress session directly.
	StartWorkout(ctx context.Context, workoutID, subjectID int64, at time.Time) (domain.WorkoutSession, error)
	// StartSession moves a pending session owned by subjectID to in_progress.
	StartSession(ctx context.Context, sessionID, subjectID int64, at time.Time) (domain.WorkoutSession, error)
	GetSession(ctx context.Context, id int64) (domain.WorkoutSession, error)
	// CompleteSession sets status=completed, rpe and completed_at on an in-progress session.
	CompleteSession(ctx context.Context, r domain.SessionResult) (domain.WorkoutSession, error)
	AbandonSession(ctx context.Context, sessionID, subjectID int64) error
	ListActiveSessions(ctx context.Context, subjectID int64) ([]domain.WorkoutSession, error)
	// AbandonStaleSessions abandons in-progress sessions started before cutoff.
	AbandonStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportRow is one line of a coach's team report.
type ReportRow struct {
	PlayerName   string     `db:"player_name"`
	JerseyNumber *int       `db:"jersey_number"`
	Position     *string    `db:"position"`
	WorkoutName  *string    `db:"workout_name"`
	Status       *string    `db:"status"`
	RPE          *float64   `db:"rpe"`
	Duration     *int       `db:"duration_minutes"`
	CompletedAt  *time.Time `db:"completed_at"`
}

// Reports serves read-only aggregates.
type Reports interface {
	TeamReport(ctx context.Context, teamID int64) ([]ReportRow, error)
}

// Gateway is the full persistence surface handed to the flow layer.
type Gateway interface {
	Subjects
	Teams
	Roster
	Students
	Trainees
	Workouts
	Exercises
	Sessions
	Reports
}
