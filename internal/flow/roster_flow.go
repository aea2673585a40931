package flow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowRosterAdd state.FlowID = "roster_add"

	rosterStepFirstName state.Step = "first_name"
	rosterStepLastName  state.Step = "last_name"
	rosterStepPosition  state.Step = "position"
	rosterStepJersey    state.Step = "jersey"
)

func rosterAddFlow() *Definition {
	return &Definition{
		ID:    flowRosterAdd,
		First: rosterStepFirstName,
		Entry: []string{"team_id"},
		Steps: map[state.Step]*StepSpec{
			rosterStepFirstName: {
				Fields: []string{"first_name"},
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Player's first name?"}, nil
				},
				OnText: func(t *Turn, text string) error {
					name, ok := textLen(text, 1, personNameMax)
					if !ok {
						return t.Retry("The first name must be 1 to 100 characters long.")
					}
					return t.Advance(rosterStepLastName, map[string]string{"first_name": name})
				},
			},
			rosterStepLastName: optionalText("last_name", "Player's last name?", 1, personNameMax, rosterStepPosition),
			rosterStepPosition: optionalText("position", "Player's position?", 1, positionMax, rosterStepJersey),
			rosterStepJersey: {
				Prompt: func(*Turn) (Reply, error) {
					return Reply{
						Text:    fmt.Sprintf("Jersey number? (%d-%d)", RosterJerseyMin, RosterJerseyMax),
						Buttons: [][]Button{skipRow()},
					}, nil
				},
				OnText: func(t *Turn, text string) error {
					n, err := ParseJersey(text, RosterJerseyMin, RosterJerseyMax)
					if err != nil {
						return t.Retry(fmt.Sprintf("Send a whole number from %d to %d.", RosterJerseyMin, RosterJerseyMax))
					}
					return addRosterPlayer(t, &n)
				},
				Actions: map[string]ActionHandler{
					TagSkip: func(t *Turn, _ string) error { return addRosterPlayer(t, nil) },
				},
			},
		},
		OnCancel: func(t *Turn, last state.Conversation) error { return showTeam(t, last.Value("team_id")) },
	}
}

func startRosterAdd(t *Turn, payload string) error {
	team, ok, err := ownTeam(t, payload)
	if !ok || err != nil {
		return err
	}
	if team.Full() {
		return t.Say(fmt.Sprintf("%s is full (%d/%d).", team.Name, team.PlayersCount, team.MaxMembers),
			[]Button{{Text: "⬅️ Team", Tag: TagTeamCard, Payload: id(team.ID)}})
	}
	return t.Start(flowRosterAdd, map[string]string{"team_id": id(team.ID)})
}

func addRosterPlayer(t *Turn, jersey *int) error {
	teamID, err := t.Int64("team_id")
	if err != nil {
		return err
	}
	back := []Button{{Text: "⬅️ Team", Tag: TagTeamCard, Payload: id(teamID)}}
	player, err := t.Store().AddRosterPlayer(t.ctx, domain.NewRosterPlayer{
		TeamID:       teamID,
		FirstName:    t.Value("first_name"),
		LastName:     optional(t, "last_name"),
		Position:     optional(t, "position"),
		JerseyNumber: jersey,
	})
	switch {
	case errors.Is(err, domain.ErrRosterFull):
		return t.Decline(err, "The roster is full.", back)
	case errors.Is(err, domain.ErrNotFound):
		return t.Abort(msgGone, menuRow())
	case err != nil:
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.roster", "roster.added",
		slog.Int64("team_id", teamID),
		slog.Int64("player_id", player.ID),
	)
	return t.Say("Added "+playerLine(player)+".", []Button{
		{Text: "➕ Add another", Tag: TagRosterAdd, Payload: id(teamID)},
		{Text: "📋 Roster", Tag: TagRoster, Payload: id(teamID)},
	})
}
