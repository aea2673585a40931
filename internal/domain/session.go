package domain

import "time"

// SessionStatus tracks a workout session lifecycle.
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Active reports whether the session can still progress.
func (s SessionStatus) Active() bool {
	return s == SessionPending || s == SessionInProgress
}

// CanTransition reports whether moving from s to next is allowed.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch next {
	case SessionInProgress:
		return s == SessionPending
	case SessionCompleted:
		return s == SessionInProgress
	case SessionAbandoned:
		return s.Active()
	}
	return false
}

// WorkoutSession is one athlete's attempt at a workout.
type WorkoutSession struct {
	ID              int64         `db:"id"`
	WorkoutID       int64         `db:"workout_id"`
	WorkoutName     string        `db:"workout_name"`
	SubjectID       int64         `db:"subject_id"`
	Status          SessionStatus `db:"status"`
	CreatedAt       time.Time     `db:"created_at"`
	StartedAt       *time.Time    `db:"started_at"`
	CompletedAt     *time.Time    `db:"completed_at"`
	RPE             *float64      `db:"rpe"`
	DurationMinutes *int          `db:"duration_minutes"`
}

// SessionResult is the payload written when a session completes.
type SessionResult struct {
	SessionID       int64
	SubjectID       int64
	RPE             float64
	CompletedAt     time.Time
	DurationMinutes *int
}
