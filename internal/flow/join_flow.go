package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowJoin state.FlowID = "team_join"

	joinStepCode      state.Step = "code"
	joinStepFirstName state.Step = "first_name"
	joinStepLastName  state.Step = "last_name"
	joinStepPosition  state.Step = "position"
	joinStepJersey    state.Step = "jersey"
)

const (
	personNameMax = 100
	positionMax   = 50
	joinNameMin   = 2
)

func joinFlow() *Definition {
	return &Definition{
		ID:    flowJoin,
		First: joinStepCode,
		Steps: map[state.Step]*StepSpec{
			joinStepCode: {
				Fields: []string{"team_id", "team_name", "coach_id"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Send the team access code you got from your coach."}, nil
				},
				OnText: joinCode,
			},
			joinStepFirstName: {
				Fields: []string{"first_name"},
				Prompt: func(t *Turn) (Reply, error) {
					return Reply{Text: fmt.Sprintf("Joining %s. Your first name?", t.Value("team_name"))}, nil
				},
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, joinNameMin, personNameMax)
					if !ok {
						return t.Retry("The first name must be 2 to 100 characters long.")
					}
					return t.Advance(joinStepLastName, map[string]string{"first_name": name})
				},
			},
			joinStepLastName: optionalText("last_name", "Last name?", 1, personNameMax, joinStepPosition),
			joinStepPosition: optionalText("position", "Position on the field?", 1, positionMax, joinStepJersey),
			joinStepJersey: {
				Prompt: func(*Turn) (Reply, error) {
					return Reply{
						Text:    fmt.Sprintf("Jersey number? (%d-%d)", JoinJerseyMin, JoinJerseyMax),
						Buttons: [][]Button{skipRow()},
					}, nil
				},
				OnText: func(t *Turn, text string) error {
					n, err := ParseJersey(text, JoinJerseyMin, JoinJerseyMax)
					if err != nil {
						return t.Retry(fmt.Sprintf("Send a whole number from %d to %d.", JoinJerseyMin, JoinJerseyMax))
					}
					return joinTeam(t, &n)
				},
				Actions: map[string]ActionHandler{
					TagSkip: func(t *Turn, _ string) error { return joinTeam(t, nil) },
				},
			},
		},
	}
}

// optionalText builds a skippable free-text step storing key and advancing to next.
func optionalText(key, prompt string, min, max int, next state.Step) *StepSpec {
	return &StepSpec{
		Fields: []string{key},
		Prompt: func(*Turn) (Reply, error) {
			return Reply{Text: prompt, Buttons: [][]Button{skipRow()}}, nil
		},
		OnText: func(t *Turn, text string) error {
			v, ok := textLen(text, min, max)
			if !ok {
				return t.Retry(fmt.Sprintf("Use %d to %d characters, or skip.", min, max))
			}
			return t.Advance(next, map[string]string{key: v})
		},
		Actions: map[string]ActionHandler{
			TagSkip: func(t *Turn, _ string) error { return t.Advance(next, nil) },
		},
	}
}

func startJoin(t *Turn, args string) error {
	if code := strings.TrimSpace(args); code != "" {
		if err := t.enter(flowJoin, nil); err != nil {
			return err
		}
		return joinCode(t, code)
	}
	return t.Start(flowJoin, nil)
}

func joinCode(t *Turn, text string) error {
	subject, err := t.Subject()
	if err != nil {
		return err
	}
	team, err := t.Store().GetTeamByCode(t.ctx, text)
	if errors.Is(err, domain.ErrNotFound) {
		return t.Retry("No team with this code. Check it and send again.")
	}
	if err != nil {
		return err
	}
	member, err := t.Store().IsTeamMember(t.ctx, team.ID, subject.ID)
	if err != nil {
		return err
	}
	if member {
		return t.Abort(fmt.Sprintf("You are already on %s.", team.Name), menuRow())
	}
	if team.Full() {
		return t.Abort(fmt.Sprintf("%s is full (%d/%d).", team.Name, team.PlayersCount, team.MaxMembers), menuRow())
	}
	return t.Advance(joinStepFirstName, map[string]string{
		"team_id":   id(team.ID),
		"team_name": team.Name,
		"coach_id":  id(team.CoachID),
	})
}

func joinTeam(t *Turn, jersey *int) error {
	subject, err := t.Subject()
	if err != nil {
		return err
	}
	teamID, err := t.Int64("team_id")
	if err != nil {
		return err
	}
	player, err := t.Store().AddRosterPlayer(t.ctx, domain.NewRosterPlayer{
		TeamID:       teamID,
		SubjectID:    &subject.ID,
		FirstName:    t.Value("first_name"),
		LastName:     optional(t, "last_name"),
		Position:     optional(t, "position"),
		JerseyNumber: jersey,
	})
	switch {
	case errors.Is(err, domain.ErrRosterFull):
		return t.Decline(err, "Sorry, the team filled up while you were joining.", menuRow())
	case errors.Is(err, domain.ErrAlreadyMember):
		return t.Decline(err, "You are already on this team.", menuRow())
	case errors.Is(err, domain.ErrNotFound):
		return t.Abort(msgGone, menuRow())
	case err != nil:
		return err
	}
	teamName := t.Value("team_name")
	coachID, _ := strconv.ParseInt(t.Value("coach_id"), 10, 64)
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.roster", "roster.joined",
		slog.Int64("team_id", teamID),
		slog.Int64("player_id", player.ID),
	)
	t.notify(coachID, Reply{Text: fmt.Sprintf("%s joined %s.", playerLine(player), teamName)})
	return t.Say(fmt.Sprintf("Welcome to %s, %s!", teamName, player.FirstName), menuRow())
}

// optional returns a pointer to a collected field or nil when it was skipped.
func optional(t *Turn, key string) *string {
	if !t.Has(key) {
		return nil
	}
	v := t.Value(key)
	return &v
}
