package domain

import "time"

// Phase is a block of a workout.
type Phase string

const (
	PhaseWarmup      Phase = "warmup"
	PhaseNervousPrep Phase = "nervous_prep"
	PhaseMain        Phase = "main"
	PhaseCooldown    Phase = "cooldown"
)

// Phases is the fixed display order of workout phases.
var Phases = []Phase{PhaseWarmup, PhaseNervousPrep, PhaseMain, PhaseCooldown}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, v := range Phases {
		if v == p {
			return true
		}
	}
	return false
}

// ExerciseAssignment prescribes one exercise inside a workout phase.
type ExerciseAssignment struct {
	ExerciseID   int64    `db:"exercise_id"`
	ExerciseName string   `db:"exercise_name"`
	Phase        Phase    `db:"phase"`
	Position     int      `db:"position"`
	Sets         int      `db:"sets"`
	RepsMin      int      `db:"reps_min"`
	RepsMax      int      `db:"reps_max"`
	Percent1RM   *float64 `db:"percent_1rm"`
	FixedWeight  *float64 `db:"fixed_weight"`
	RestSeconds  int      `db:"rest_seconds"`
}

// WorkoutDefinition is a coach-authored workout.
type WorkoutDefinition struct {
	ID          int64                          `db:"id"`
	Name        string                         `db:"name"`
	Description string                         `db:"description"`
	CreatedBy   int64                          `db:"created_by"`
	UniqueID    string                         `db:"unique_id"`
	CreatedAt   time.Time                      `db:"created_at"`
	Phases      map[Phase][]ExerciseAssignment `db:"-"`
}

// OrderedPhases returns non-empty phases in display order regardless of insertion order.
func (w WorkoutDefinition) OrderedPhases() []Phase {
	out := make([]Phase, 0, len(Phases))
	for _, p := range Phases {
		if len(w.Phases[p]) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// ExerciseCount totals exercises across phases.
func (w WorkoutDefinition) ExerciseCount() int {
	n := 0
	for _, list := range w.Phases {
		n += len(list)
	}
	return n
}

// NewWorkout is the payload for creating a workout with all its exercises.
type NewWorkout struct {
	Name        string
	Description string
	CreatedBy   int64
	Exercises   []ExerciseAssignment
}

// Exercise is a catalog entry.
type Exercise struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
