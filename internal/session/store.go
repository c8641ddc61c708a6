package session

import (
	"context"
	"sync"
	"time"

	"crisp/interview/internal/models"
)

// Store persists session snapshots. Implementations must return
// ErrNotFound when no snapshot exists for the ID.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
	// List returns all stored session IDs; used by the reaper job.
	List(ctx context.Context) ([]string, error)
}

// MarkerStore tracks the session-active marker that gates the resume
// prompt. The marker lives for one client lifetime: present means this
// client already made its resume decision.
type MarkerStore interface {
	Active(ctx context.Context, sessionID string) (bool, error)
	SetActive(ctx context.Context, sessionID string) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is a mutex-guarded in-memory Store for tests and
// single-instance development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy out so callers cannot mutate the stored snapshot in place.
	cp := state
	cp.Questions = append([]models.InterviewQuestion(nil), state.Questions...)
	cp.Answers = append([]models.InterviewAnswer(nil), state.Answers...)
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.ID] = *state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// MemoryMarkerStore is an in-memory MarkerStore. Entries expire after
// ttl so an abandoned client eventually counts as a fresh load again.
type MemoryMarkerStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	markers map[string]time.Time
}

func NewMemoryMarkerStore(ttl time.Duration) *MemoryMarkerStore {
	return &MemoryMarkerStore{ttl: ttl, markers: make(map[string]time.Time)}
}

func (m *MemoryMarkerStore) Active(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.markers[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(m.markers, sessionID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryMarkerStore) SetActive(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[sessionID] = time.Now().Add(m.ttl)
	return nil
}

func (m *MemoryMarkerStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, sessionID)
	return nil
}
