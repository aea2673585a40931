package flow

import (
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowTeamCreate state.FlowID = "team_create"

	teamStepName        state.Step = "name"
	teamStepDescription state.Step = "description"
	teamStepSport       state.Step = "sport"
)

const (
	teamNameMin = 2
	teamNameMax = 100
	teamDescMax = 500
)

func teamCreateFlow() *Definition {
	return &Definition{
		ID:    flowTeamCreate,
		First: teamStepName,
		Steps: map[state.Step]*StepSpec{
			teamStepName: {
				Fields: []string{"name"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Team name? (2-100 characters)"}, nil
				},
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, teamNameMin, teamNameMax)
					if !ok {
						return t.Retry("The name must be 2 to 100 characters long.")
					}
					return t.Advance(teamStepDescription, map[string]string{"name": name})
				},
			},
			teamStepDescription: {
				Fields: []string{"description"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Short description? (up to 500 characters)", Buttons: [][]Button{skipRow()}}, nil
				},
				OnText: func(t *Turn, text string) error {
					desc, ok := textLen(text, 0, teamDescMax)
					if !ok {
						return t.Retry("The description must be at most 500 characters.")
					}
					return t.Advance(teamStepSport, map[string]string{"description": desc})
				},
				Actions: map[string]ActionHandler{
					TagSkip: func(t *Turn, _ string) error { return t.Advance(teamStepSport, nil) },
				},
			},
			teamStepSport: {
				Prompt: func(*Turn) (Reply, error) {
					var rows [][]Button
					var row []Button
					for _, s := range domain.SportTypes {
						row = append(row, Button{Text: string(s), Tag: TagSport, Payload: string(s)})
						if len(row) == 2 {
							rows = append(rows, row)
							row = nil
						}
					}
					if len(row) > 0 {
						rows = append(rows, row)
					}
					return Reply{Text: "Which sport?", Buttons: rows}, nil
				},
				Actions: map[string]ActionHandler{TagSport: createTeam},
			},
		},
		OnCancel: func(t *Turn, _ state.Conversation) error { return listTeams(t, "") },
	}
}

func startTeamCreate(t *Turn, _ string) error {
	if _, ok, err := requireCoach(t); !ok || err != nil {
		return err
	}
	return t.Start(flowTeamCreate, nil)
}

func createTeam(t *Turn, payload string) error {
	sport := domain.SportType(payload)
	if !sport.Valid() {
		return t.Retry(msgUseButtons)
	}
	coach, err := t.Subject()
	if err != nil {
		return err
	}
	team, err := t.Store().CreateTeam(t.ctx, domain.NewTeam{
		Name:        t.Value("name"),
		Description: t.Value("description"),
		CoachID:     coach.ID,
		SportType:   sport,
		MaxMembers:  t.d.deps.TeamCapacity,
	})
	if err != nil {
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.teams", "team.created",
		slog.Int64("team_id", team.ID),
		slog.Int64("coach_id", coach.ID),
	)
	return t.Reply(renderTeamCreated(team))
}
