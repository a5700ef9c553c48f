package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	mu    sync.Mutex
	draft Draft
}

type MemoryRepository struct {
	drafts sync.Map
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (m *MemoryRepository) Create() (*Draft, error) {
	now := m.now()
	entry := &memoryEntry{draft: Draft{
		ID:         DraftID(uuid.New().String()),
		State:      StateIdle,
		CreatedAt:  now,
		ModifiedAt: now,
	}}
	m.drafts.Store(entry.draft.ID, entry)

	draft := entry.draft
	return &draft, nil
}

func (m *MemoryRepository) entry(id DraftID) (*memoryEntry, error) {
	if e, ok := m.drafts.Load(id); ok {
		return e.(*memoryEntry), nil
	}
	return nil, ErrDraftNotFound
}

func (m *MemoryRepository) Get(id DraftID) (*Draft, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.draft
	return &draft, nil
}

func (m *MemoryRepository) Update(id DraftID, fn func(*Draft) error) (*Draft, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.draft
	if err := fn(&draft); err != nil {
		return nil, err
	}
	draft.ID = e.draft.ID
	draft.State = e.draft.State
	draft.CreatedAt = e.draft.CreatedAt
	draft.ModifiedAt = m.now()
	e.draft = draft

	out := draft
	return &out, nil
}

func (m *MemoryRepository) Delete(id DraftID) error {
	m.drafts.Delete(id)
	return nil
}

func (m *MemoryRepository) BeginSubmission(id DraftID) error {
	return m.transition(id, StateIdle, StateSubmitting)
}

func (m *MemoryRepository) EndSubmission(id DraftID) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.State = StateIdle
	return nil
}

func (m *MemoryRepository) transition(id DraftID, from, to SubmissionState) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.State != from {
		return ErrSubmissionInFlight
	}
	e.draft.State = to
	return nil
}
