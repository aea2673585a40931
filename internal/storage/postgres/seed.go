package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/multicco/sportbot4-sub000/core/bootstrap"
)

// DefaultExercises is the starter catalog offered as quick picks while
// building a workout.
var DefaultExercises = []string{
	"Back squat",
	"Front squat",
	"Deadlift",
	"Romanian deadlift",
	"Bench press",
	"Overhead press",
	"Pull-up",
	"Barbell row",
	"Box jump",
	"Sprint 30m",
	"Plank",
	"Hip mobility",
}

// ExerciseSeeder inserts DefaultExercises, leaving existing rows untouched.
func ExerciseSeeder() bootstrap.Seeder {
	return bootstrap.SeederFunc{Label: "exercises", Fn: seedExercises}
}

func seedExercises(ctx context.Context, db *sqlx.DB) error {
	for _, name := range DefaultExercises {
		if _, err := db.ExecContext(ctx, `INSERT INTO exercises (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed exercise %q: %w", name, err)
		}
	}
	return nil
}
