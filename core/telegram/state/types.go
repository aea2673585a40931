package state

import "context"

// FlowID names a multi-step conversation process.
type FlowID string

// Step names a position inside a flow.
type Step string

// Conversation is the state of a single subject's dialog with the bot.
// Flow and Step are either both empty or both set.
type Conversation struct {
	SubjectID int64
	Flow      FlowID
	Step      Step
	Data      map[string]string
}

// Active reports whether a flow is in progress.
func (c Conversation) Active() bool {
	return c.Flow != "" && c.Step != ""
}

// Value returns a collected field or "" when absent.
func (c Conversation) Value(key string) string {
	if c.Data == nil {
		return ""
	}
	return c.Data[key]
}

// Has reports whether a field was collected, even if empty.
func (c Conversation) Has(key string) bool {
	if c.Data == nil {
		return false
	}
	_, ok := c.Data[key]
	return ok
}

// Store persists conversation state per subject. Writes for the same subject are
// last-write-wins; there is no optimistic locking.
type Store interface {
	// Get returns the subject's conversation or an empty one when none exists.
	Get(ctx context.Context, subjectID int64) (Conversation, error)
	// SetStep moves the subject to step of flow, creating the conversation if needed.
	// Switching to a different flow drops previously collected data.
	SetStep(ctx context.Context, subjectID int64, flow FlowID, step Step) error
	// MergeData adds or overwrites collected fields.
	MergeData(ctx context.Context, subjectID int64, fields map[string]string) error
	// Clear removes the conversation. Clearing an absent conversation is a no-op.
	Clear(ctx context.Context, subjectID int64) error
}
