package flow

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const (
	flowTrainerLink state.FlowID = "trainer_link"

	trainerStepCode state.Step = "code"
)

func trainerLinkFlow() *Definition {
	return &Definition{
		ID:    flowTrainerLink,
		First: trainerStepCode,
		Steps: map[state.Step]*StepSpec{
			trainerStepCode: {
				Prompt: func(*Turn) (Reply, error) {
					return Reply{Text: "Send your coach's trainer code."}, nil
				},
				OnText: linkTrainer,
			},
		},
	}
}

func startTrainerLink(t *Turn, args string) error {
	if code := strings.TrimSpace(args); code != "" {
		if err := t.enter(flowTrainerLink, nil); err != nil {
			return err
		}
		return linkTrainer(t, code)
	}
	return t.Start(flowTrainerLink, nil)
}

func linkTrainer(t *Turn, text string) error {
	athlete, err := t.Subject()
	if err != nil {
		return err
	}
	coach, err := t.Store().GetCoachByCode(t.ctx, text)
	if errors.Is(err, domain.ErrNotFound) {
		return t.Retry("No coach with this code. Check it and send again.")
	}
	if err != nil {
		return err
	}
	if coach.ID == athlete.ID {
		return t.Retry("That is your own code. Send your coach's code instead.")
	}
	err = t.Store().AssignTrainee(t.ctx, coach.ID, athlete.ID)
	if errors.Is(err, domain.ErrAlreadyLinked) {
		return t.Decline(err, "You are already linked to "+coach.DisplayName()+".", menuRow())
	}
	if err != nil {
		return err
	}
	if err := t.Finish(); err != nil {
		return err
	}
	logger.Info(t.ctx, "service.roster", "trainee.linked", slog.Int64("coach_id", coach.ID))
	t.notify(coach.ID, Reply{Text: athlete.DisplayName() + " linked to you as a trainee."})
	return t.Say("You are now training with "+coach.DisplayName()+".", menuRow())
}
