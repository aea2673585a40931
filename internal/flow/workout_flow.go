package flow

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowWorkoutCreate state.FlowID = "workout_create"

	workoutStepName        state.Step = "name"
	workoutStepDescription state.Step = "description"
	workoutStepPhase       state.Step = "phase"
	workoutStepExercise    state.Step = "exercise"
	workoutStepSets        state.Step = "sets"
	workoutStepReps        state.Step = "reps"
	workoutStepLoad        state.Step = "load"
	workoutStepRest        state.Step = "rest"
)

const (
	catalogPicks   = 12
	pickNameMaxLen = 40
)

// draftExercise is an exercise collected in a previous loop of the flow.
type draftExercise struct {
	Phase   domain.Phase `json:"phase"`
	Name    string       `json:"name"`
	Sets    int          `json:"sets"`
	RepsMin int          `json:"reps_min"`
	RepsMax int          `json:"reps_max"`
	Percent *float64     `json:"percent,omitempty"`
	Weight  *float64     `json:"weight,omitempty"`
	Rest    int          `json:"rest"`
}

func drafts(t *Turn) ([]draftExercise, error) {
	raw := t.Value("exercises")
	if raw == "" {
		return nil, nil
	}
	var out []draftExercise
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	return out, nil
}

func workoutCreateFlow() *Definition {
	return &Definition{
		ID:    flowWorkoutCreate,
		First: workoutStepName,
		Steps: map[state.Step]*StepSpec{
			workoutStepName: {
				Fields: []string{"name"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Workout name? (2-100 characters)"}, nil
				},
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, teamNameMin, teamNameMax)
					if !ok {
						return t.Retry("The name must be 2 to 100 characters long.")
					}
					return t.Advance(workoutStepDescription, map[string]string{"name": name})
				},
			},
			workoutStepDescription: {
				Fields: []string{"description"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Notes for athletes?", Buttons: [][]Button{skipRow()}}, nil
				},
				OnText: func(t *Turn, text string) error {
					desc, ok := textLen(text, 0, teamDescMax)
					if !ok {
						return t.Retry("Notes must be at most 500 characters.")
					}
					return t.Advance(workoutStepPhase, map[string]string{"description": desc})
				},
				Actions: map[string]ActionHandler{
					TagSkip: func(t *Turn, _ string) error { return t.Advance(workoutStepPhase, nil) },
				},
			},
			workoutStepPhase: {
				Fields: []string{"phase"},
				Prompt: promptPhase,
				Actions: map[string]ActionHandler{
					TagPhase: func(t *Turn, payload string) error {
						if !domain.Phase(payload).Valid() {
							return t.Retry(msgUseButtons)
						}
						return t.Advance(workoutStepExercise, map[string]string{"phase": payload})
					},
					TagPhaseDone: createWorkout,
				},
			},
			workoutStepExercise: {
				Fields: []string{"exercise"},
				Prompt: promptExercise,
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, teamNameMin, teamNameMax)
					if !ok {
						return t.Retry("The exercise name must be 2 to 100 characters long.")
					}
					return t.Advance(workoutStepSets, map[string]string{"exercise": name})
				},
				Actions: map[string]ActionHandler{
					TagExercisePick: func(t *Turn, payload string) error {
						name, ok := textLen(payload, 1, pickNameMaxLen)
						if !ok {
							return t.Retry(msgUseButtons)
						}
						return t.Advance(workoutStepSets, map[string]string{"exercise": name})
					},
				},
			},
			workoutStepSets: {
				Fields: []string{"sets"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: fmt.Sprintf("How many sets? (1-%d)", setsMax)}, nil
				},
				OnText: func(t *Turn, text string) error {
					n, err := parseIntRange(text, 1, setsMax)
					if err != nil {
						return t.Retry(fmt.Sprintf("Send a whole number from 1 to %d.", setsMax))
					}
					return t.Advance(workoutStepReps, map[string]string{"sets": strconv.Itoa(n)})
				},
			},
			workoutStepReps: {
				Fields: []string{"reps_min", "reps_max"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Reps per set? Send 8 or a range like 8-12."}, nil
				},
				OnText: func(t *Turn, text string) error {
					lo, hi, err := parseReps(text)
					if err != nil {
						return t.Retry("Send a number like 8 or a range like 8-12 where the first is not larger.")
					}
					return t.Advance(workoutStepLoad, map[string]string{
						"reps_min": strconv.Itoa(lo),
						"reps_max": strconv.Itoa(hi),
					})
				},
			},
			workoutStepLoad: {
				Fields: []string{"percent", "weight"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Load? Send 70% of one-rep max or 60kg.", Buttons: [][]Button{skipRow()}}, nil
				},
				OnText: func(t *Turn, text string) error {
					percent, weight, err := parseLoad(text)
					if err != nil {
						return t.Retry("Send a percentage like 70% or a weight like 60kg, or skip.")
					}
					return t.Advance(workoutStepRest, map[string]string{
						"percent": formatOptional(percent),
						"weight":  formatOptional(weight),
					})
				},
				Actions: map[string]ActionHandler{
					TagSkip: func(t *Turn, _ string) error {
						return t.Advance(workoutStepRest, map[string]string{"percent": "", "weight": ""})
					},
				},
			},
			workoutStepRest: {
				Fields: []string{"rest", "exercises"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: fmt.Sprintf("Rest between sets in seconds? (0-%d)", restMax)}, nil
				},
				OnText: addDraftExercise,
			},
		},
		OnCancel: func(t *Turn, _ state.Conversation) error { return listWorkouts(t, "") },
	}
}

func startWorkoutCreate(t *Turn, _ string) error {
	if _, ok, err := requireCoach(t); !ok || err != nil {
		return err
	}
	return t.Start(flowWorkoutCreate, nil)
}

func promptPhase(t *Turn) (Reply, error) {
	list, err := drafts(t)
	if err != nil {
		return Reply{}, err
	}
	rows := make([][]Button, 0, len(domain.Phases)+1)
	for _, p := range domain.Phases {
		rows = append(rows, []Button{{Text: phaseTitles[p], Tag: TagPhase, Payload: string(p)}})
	}
	text := "Pick a phase for the first exercise."
	if len(list) > 0 {
		text = fmt.Sprintf("%d exercise(s) so far. Add another or finish.", len(list))
		rows = append(rows, []Button{{Text: "✅ Done", Tag: TagPhaseDone}})
	}
	return Reply{Text: text, Buttons: rows}, nil
}

func promptExercise(t *Turn) (Reply, error) {
	r := Reply{Text: "Exercise name? Type it or pick one below."}
	names, err := t.Store().ListExercises(t.ctx, catalogPicks)
	if err != nil {
		logger.Warn(t.ctx, "flow", "catalog.unavailable", slog.String("err", err.Error()))
		r.Text = "Exercise name?"
		return r, nil
	}
	var row []Button
	for _, n := range names {
		if len(n) > pickNameMaxLen {
			continue
		}
		row = append(row, Button{Text: n, Tag: TagExercisePick, Payload: n})
		if len(row) == 2 {
			r.Buttons = append(r.Buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		r.Buttons = append(r.Buttons, row)
	}
	return r, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func addDraftExercise(t *Turn, text string) error {
	rest, err := parseIntRange(text, 0, restMax)
	if err != nil {
		return t.Retry(fmt.Sprintf("Send a whole number of seconds from 0 to %d.", restMax))
	}
	list, err := drafts(t)
	if err != nil {
		return err
	}
	sets, _ := strconv.Atoi(t.Value("sets"))
	lo, _ := strconv.Atoi(t.Value("reps_min"))
	hi, _ := strconv.Atoi(t.Value("reps_max"))
	list = append(list, draftExercise{
		Phase:   domain.Phase(t.Value("phase")),
		Name:    t.Value("exercise"),
		Sets:    sets,
		RepsMin: lo,
		RepsMax: hi,
		Percent: parseOptional(t.Value("percent")),
		Weight:  parseOptional(t.Value("weight")),
		Rest:    rest,
	})
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode exercises: %w", err)
	}
	return t.Advance(workoutStepPhase, map[string]string{
		"rest":      strconv.Itoa(rest),
		"exercises": string(raw),
	})
}

func createWorkout(t *Turn, _ string) error {
	list, err := drafts(t)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return t.Retry("Add at least one exercise first.")
	}
	coach, err := t.Subject()
	if err != nil {
		return err
	}
	in := domain.NewWorkout{
		Name:        t.Value("name"),
		Description: t.Value("description"),
		CreatedBy:   coach.ID,
		Exercises:   make([]domain.ExerciseAssignment, 0, len(list)),
	}
	for _, d := range list {
		in.Exercises = append(in.Exercises, domain.ExerciseAssignment{
			ExerciseName: d.Name,
			Phase:        d.Phase,
			Sets:         d.Sets,
			RepsMin:      d.RepsMin,
			RepsMax:      d.RepsMax,
			Percent1RM:   d.Percent,
			FixedWeight:  d.Weight,
			RestSeconds:  d.Rest,
		})
	}
	w, err := t.Store().CreateWorkout(t.ctx, in)
	if err != nil {
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.workouts", "workout.created",
		slog.Int64("workout_id", w.ID),
		slog.Int("exercises", w.ExerciseCount()),
	)
	return t.Reply(renderWorkoutCard(w))
}
