package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const workoutColumns = `id, name, description, created_by, unique_id, created_at`

// CreateWorkout writes the workout row, upserts catalog exercises and links
// them in one transaction. Positions are renumbered per phase in input order.
func (s *Store) CreateWorkout(ctx context.Context, in domain.NewWorkout) (out domain.WorkoutDefinition, err error) {
	defer func(start time.Time) { observe(ctx, "workout.create", start, err) }(time.Now())
	err = s.withCode("create workout", func(code string) error {
		return s.inTx(ctx, func(tx *sqlx.Tx) error {
			out = domain.WorkoutDefinition{}
			if err := tx.GetContext(ctx, &out, `
				INSERT INTO workouts (name, description, created_by, unique_id)
				VALUES ($1, $2, $3, $4)
				RETURNING `+workoutColumns,
				in.Name, in.Description, in.CreatedBy, code,
			); err != nil {
				return err
			}
			out.Phases = make(map[domain.Phase][]domain.ExerciseAssignment)
			for _, ex := range in.Exercises {
				if err := tx.GetContext(ctx, &ex.ExerciseID, `
					INSERT INTO exercises (name) VALUES ($1)
					ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
					RETURNING id`, ex.ExerciseName); err != nil {
					return fmt.Errorf("exercise %q: %w", ex.ExerciseName, err)
				}
				ex.Position = len(out.Phases[ex.Phase]) + 1
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO workout_exercises
						(workout_id, exercise_id, phase, position, sets, reps_min, reps_max,
						 percent_1rm, fixed_weight, rest_seconds)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
					out.ID, ex.ExerciseID, string(ex.Phase), ex.Position, ex.Sets, ex.RepsMin, ex.RepsMax,
					ex.Percent1RM, ex.FixedWeight, ex.RestSeconds,
				); err != nil {
					return fmt.Errorf("link exercise %q: %w", ex.ExerciseName, err)
				}
				out.Phases[ex.Phase] = append(out.Phases[ex.Phase], ex)
			}
			return nil
		})
	})
	if err != nil {
		return domain.WorkoutDefinition{}, fmt.Errorf("create workout: %w", err)
	}
	return out, nil
}

// GetWorkout loads a workout with its exercises grouped by phase.
func (s *Store) GetWorkout(ctx context.Context, id int64) (out domain.WorkoutDefinition, err error) {
	defer func(start time.Time) { observe(ctx, "workout.get", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id); err != nil {
		return domain.WorkoutDefinition{}, fmt.Errorf("get workout %d: %w", id, notFound(err))
	}
	if err = s.loadExercises(ctx, &out); err != nil {
		return domain.WorkoutDefinition{}, err
	}
	return out, nil
}

// GetWorkoutByCode resolves a shareable workout code.
func (s *Store) GetWorkoutByCode(ctx context.Context, code string) (out domain.WorkoutDefinition, err error) {
	defer func(start time.Time) { observe(ctx, "workout.by_code", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, `SELECT `+workoutColumns+` FROM workouts WHERE unique_id = $1`, domain.NormalizeCode(code)); err != nil {
		return domain.WorkoutDefinition{}, fmt.Errorf("workout by code: %w", notFound(err))
	}
	if err = s.loadExercises(ctx, &out); err != nil {
		return domain.WorkoutDefinition{}, err
	}
	return out, nil
}

// ListWorkouts returns headers only; Phases stays nil.
func (s *Store) ListWorkouts(ctx context.Context, coachID int64) (out []domain.WorkoutDefinition, err error) {
	defer func(start time.Time) { observe(ctx, "workout.list", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE created_by = $1
		ORDER BY created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return out, nil
}

func (s *Store) loadExercises(ctx context.Context, w *domain.WorkoutDefinition) error {
	var rows []domain.ExerciseAssignment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT we.exercise_id, e.name AS exercise_name, we.phase, we.position, we.sets,
		       we.reps_min, we.reps_max, we.percent_1rm, we.fixed_weight, we.rest_seconds
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = $1
		ORDER BY we.phase, we.position`, w.ID)
	if err != nil {
		return fmt.Errorf("load exercises for workout %d: %w", w.ID, err)
	}
	w.Phases = make(map[domain.Phase][]domain.ExerciseAssignment)
	for _, r := range rows {
		w.Phases[r.Phase] = append(w.Phases[r.Phase], r)
	}
	return nil
}

// ListExercises returns catalog names in alphabetical order.
func (s *Store) ListExercises(ctx context.Context, limit int) (names []string, err error) {
	defer func(start time.Time) { observe(ctx, "exercise.list", start, err) }(time.Now())
	if err = s.db.SelectContext(ctx, &names, `SELECT name FROM exercises ORDER BY name LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return names, nil
}
