package flow

import (
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowStudentAdd state.FlowID = "student_add"

	studentStepFirstName state.Step = "first_name"
	studentStepLastName  state.Step = "last_name"
	studentStepSpecialty state.Step = "specialization"
	studentStepLevel     state.Step = "level"
)

func studentAddFlow() *Definition {
	return &Definition{
		ID:    flowStudentAdd,
		First: studentStepFirstName,
		Steps: map[state.Step]*StepSpec{
			studentStepFirstName: {
				Fields: []string{"first_name"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Student's first name?"}, nil
				},
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, 1, personNameMax)
					if !ok {
						return t.Retry("The first name must be 1 to 100 characters long.")
					}
					return t.Advance(studentStepLastName, map[string]string{"first_name": name})
				},
			},
			studentStepLastName: optionalText("last_name", "Student's last name?", 1, personNameMax, studentStepSpecialty),
			studentStepSpecialty: {
				Fields: []string{"specialization"},
				Prompt: func(*Turn) (Reply, error) {
					rows := make([][]Button, 0, len(domain.Specializations)+1)
					for _, s := range domain.Specializations {
						rows = append(rows, []Button{{Text: string(s), Tag: TagSpecialty, Payload: string(s)}})
					}
					return Reply{Text: "Specialization?", Buttons: append(rows, skipRow())}, nil
				},
				Actions: map[string]ActionHandler{
					TagSpecialty: func(t *Turn, payload string) error {
						if !domain.Specialization(payload).Valid() {
							return t.Retry(msgUseButtons)
						}
						return t.Advance(studentStepLevel, map[string]string{"specialization": payload})
					},
					TagSkip: func(t *Turn, _ string) error { return t.Advance(studentStepLevel, nil) },
				},
			},
			studentStepLevel: {
				Prompt: func(*Turn) (Reply, error) {
					row := make([]Button, 0, len(domain.Levels))
					for _, l := range domain.Levels {
						row = append(row, Button{Text: string(l), Tag: TagLevel, Payload: string(l)})
					}
					return Reply{Text: "Training level?", Buttons: [][]Button{row}}, nil
				},
				Actions: map[string]ActionHandler{TagLevel: addStudent},
			},
		},
		OnCancel: func(t *Turn, _ state.Conversation) error { return listStudents(t, "") },
	}
}

func startStudentAdd(t *Turn, _ string) error {
	if _, ok, err := requireCoach(t); !ok || err != nil {
		return err
	}
	return t.Start(flowStudentAdd, nil)
}

func addStudent(t *Turn, payload string) error {
	level := domain.Level(payload)
	if !level.Valid() {
		return t.Retry(msgUseButtons)
	}
	coach, err := t.Subject()
	if err != nil {
		return err
	}
	var spec *domain.Specialization
	if t.Has("specialization") {
		s := domain.Specialization(t.Value("specialization"))
		spec = &s
	}
	student, err := t.Store().AddStudent(t.ctx, domain.NewStudent{
		CoachID:        coach.ID,
		FirstName:      t.Value("first_name"),
		LastName:       optional(t, "last_name"),
		Specialization: spec,
		Level:          level,
	})
	if err != nil {
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.roster", "student.added", slog.Int64("student_id", student.ID))
	return t.Say("Added "+student.FirstName+" to your students.", []Button{
		{Text: "➕ Add another", Tag: TagStudentNew},
		{Text: "🧑‍🎓 Students", Tag: TagStudents},
	})
}
