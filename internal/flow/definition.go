package flow

import (
	"github.com/multicco/sportbot4-sub000/core/telegram/state"
)

// TextHandler consumes free text at a step.
type TextHandler func(t *Turn, text string) error

// ActionHandler consumes a button press. Payload is opaque to the router.
type ActionHandler func(t *Turn, payload string) error

// StepSpec describes one step of a flow.
type StepSpec struct {
	// Fields lists the data keys this step may write when advancing.
	Fields  []string
	Prompt  func(t *Turn) (Reply, error)
	OnText  TextHandler
	Actions map[string]ActionHandler
}

func (s *StepSpec) declares(key string) bool {
	for _, f := range s.Fields {
		if f == key {
			return true
		}
	}
	return false
}

// Definition is a flow: a closed set of steps plus entry and cancel behavior.
type Definition struct {
	ID    state.FlowID
	First state.Step
	// Entry lists data keys supplied when the flow starts.
	Entry []string
	Steps map[state.Step]*StepSpec
	// OnCancel renders the parent menu from the conversation being cancelled.
	// Nil falls back to the main menu.
	OnCancel func(t *Turn, last state.Conversation) error
}

func (d *Definition) acceptsEntry(key string) bool {
	for _, f := range d.Entry {
		if f == key {
			return true
		}
	}
	return false
}

func indexFlows(defs ...*Definition) map[state.FlowID]*Definition {
	out := make(map[state.FlowID]*Definition, len(defs))
	for _, def := range defs {
		if _, dup := out[def.ID]; dup {
			panic("flow: duplicate flow " + string(def.ID))
		}
		if def.Steps[def.First] == nil {
			panic("flow: " + string(def.ID) + " has no first step")
		}
		out[def.ID] = def
	}
	return out
}
