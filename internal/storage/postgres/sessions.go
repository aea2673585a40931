package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

// sessionFrom selects session columns joined with the workout name from a
// relation aliased ws (a table or a data-modifying CTE).
const sessionFrom = `
	SELECT ws.id, ws.workout_id, w.name AS workout_name, ws.subject_id, ws.status,
	       ws.created_at, ws.started_at, ws.completed_at, ws.rpe, ws.duration_minutes
	FROM %s ws
	JOIN workouts w ON w.id = ws.workout_id`

var sessionSelect = fmt.Sprintf(sessionFrom, "workout_sessions")

func cteSelect(cte string) string {
	return `WITH changed AS (` + cte + `)` + fmt.Sprintf(sessionFrom, "changed")
}

// AssignWorkout creates one pending session per subject in a single statement.
func (s *Store) AssignWorkout(ctx context.Context, workoutID int64, subjectIDs []int64) (out []domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.assign", start, err) }(time.Now())
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	err = s.db.SelectContext(ctx, &out, cteSelect(`
		INSERT INTO workout_sessions (workout_id, subject_id, status)
		SELECT $1, unnest($2::bigint[]), 'pending'
		RETURNING *`)+` ORDER BY ws.id`,
		workoutID, pq.Array(subjectIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("assign workout %d: %w", workoutID, err)
	}
	return out, nil
}

// StartWorkout creates a session that is already in progress.
func (s *Store) StartWorkout(ctx context.Context, workoutID, subjectID int64, at time.Time) (out domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.start_workout", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, cteSelect(`
		INSERT INTO workout_sessions (workout_id, subject_id, status, started_at)
		VALUES ($1, $2, 'in_progress', $3)
		RETURNING *`),
		workoutID, subjectID, at,
	)
	if err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("start workout %d: %w", workoutID, err)
	}
	return out, nil
}

// StartSession moves the subject's pending session to in_progress.
func (s *Store) StartSession(ctx context.Context, sessionID, subjectID int64, at time.Time) (out domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.start", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, cteSelect(`
		UPDATE workout_sessions SET status = 'in_progress', started_at = $3
		WHERE id = $1 AND subject_id = $2 AND status = 'pending'
		RETURNING *`),
		sessionID, subjectID, at,
	)
	if err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("start session %d: %w", sessionID, s.explainMiss(ctx, err, sessionID, subjectID))
	}
	return out, nil
}

// GetSession loads a session with its workout name.
func (s *Store) GetSession(ctx context.Context, id int64) (out domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.get", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, sessionSelect+` WHERE ws.id = $1`, id); err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("get session %d: %w", id, notFound(err))
	}
	return out, nil
}

// CompleteSession only touches in-progress sessions owned by the subject.
func (s *Store) CompleteSession(ctx context.Context, r domain.SessionResult) (out domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.complete", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, cteSelect(`
		UPDATE workout_sessions
		SET status = 'completed', rpe = $3, completed_at = $4, duration_minutes = $5
		WHERE id = $1 AND subject_id = $2 AND status = 'in_progress'
		RETURNING *`),
		r.SessionID, r.SubjectID, r.RPE, r.CompletedAt, r.DurationMinutes,
	)
	if err != nil {
		return domain.WorkoutSession{}, fmt.Errorf("complete session %d: %w", r.SessionID, s.explainMiss(ctx, err, r.SessionID, r.SubjectID))
	}
	return out, nil
}

// AbandonSession abandons a pending or in-progress session owned by the subject.
func (s *Store) AbandonSession(ctx context.Context, sessionID, subjectID int64) (err error) {
	defer func(start time.Time) { observe(ctx, "session.abandon", start, err) }(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE workout_sessions SET status = 'abandoned'
		WHERE id = $1 AND subject_id = $2 AND status IN ('pending', 'in_progress')`,
		sessionID, subjectID)
	if err != nil {
		return fmt.Errorf("abandon session %d: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("abandon session %d: %w", sessionID, s.explainMiss(ctx, errNoMatch, sessionID, subjectID))
	}
	return nil
}

// ListActiveSessions returns pending and in-progress sessions, oldest first.
func (s *Store) ListActiveSessions(ctx context.Context, subjectID int64) (out []domain.WorkoutSession, err error) {
	defer func(start time.Time) { observe(ctx, "session.list_active", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, sessionSelect+`
		WHERE ws.subject_id = $1 AND ws.status IN ('pending', 'in_progress')
		ORDER BY ws.created_at`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return out, nil
}

// AbandonStaleSessions abandons sessions started before cutoff and returns how many.
func (s *Store) AbandonStaleSessions(ctx context.Context, cutoff time.Time) (n int64, err error) {
	defer func(start time.Time) { observe(ctx, "session.abandon_stale", start, err) }(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE workout_sessions SET status = 'abandoned'
		WHERE status = 'in_progress' AND started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	return n, nil
}

var errNoMatch = errors.New("no matching row")

// explainMiss turns an empty conditional update into ErrNotFound when the
// session is missing or foreign, and ErrInvalidTransition otherwise.
func (s *Store) explainMiss(ctx context.Context, err error, sessionID, subjectID int64) error {
	if !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, errNoMatch) {
		return err
	}
	var owner int64
	if err := s.db.GetContext(ctx, &owner, `SELECT subject_id FROM workout_sessions WHERE id = $1`, sessionID); err != nil {
		return notFound(err)
	}
	if owner != subjectID {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}
