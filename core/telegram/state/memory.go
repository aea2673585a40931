package state

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// ErrNoFlow is returned by MergeData when the subject has no active flow.
var ErrNoFlow = errors.New("state: no active flow")

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Conversation
}

// NewMemoryStore constructs an in-process Store. State is lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Conversation),
	}
}

func (m *memoryStore) Get(_ context.Context, subjectID int64) (Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.sessions[subjectID]
	if !ok {
		return Conversation{SubjectID: subjectID, Data: map[string]string{}}, nil
	}
	out := *conv
	out.Data = maps.Clone(conv.Data)
	if out.Data == nil {
		out.Data = map[string]string{}
	}
	return out, nil
}

func (m *memoryStore) SetStep(_ context.Context, subjectID int64, flow FlowID, step Step) error {
	if flow == "" || step == "" {
		return errors.New("state: flow and step must both be set")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.sessions[subjectID]
	if !ok || conv.Flow != flow {
		conv = &Conversation{SubjectID: subjectID, Data: make(map[string]string)}
		m.sessions[subjectID] = conv
	}
	conv.Flow = flow
	conv.Step = step
	return nil
}

func (m *memoryStore) MergeData(_ context.Context, subjectID int64, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.sessions[subjectID]
	if !ok {
		return ErrNoFlow
	}
	maps.Copy(conv.Data, fields)
	return nil
}

func (m *memoryStore) Clear(_ context.Context, subjectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, subjectID)
	return nil
}
