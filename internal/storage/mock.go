package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu         sync.RWMutex
	adventures map[string]*adventure.Adventure
	sessions   map[uuid.UUID]*session.Session

	// Optional error hooks
	GetSessionErr  error
	SaveSessionErr error
	PingErr        error

	// FailGetSessionAfter, when positive, lets that many GetSession calls
	// succeed and fails every call after them. Zero disables the hook.
	FailGetSessionAfter int
	getSessionCalls     int
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		adventures: make(map[string]*adventure.Adventure),
		sessions:   make(map[uuid.UUID]*session.Session),
	}
}

// AddAdventure registers an adventure for lookup.
func (m *MockStorage) AddAdventure(adv *adventure.Adventure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adventures[adv.ID] = adv
}

func (m *MockStorage) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) GetAdventure(ctx context.Context, adventureID string) (*adventure.Adventure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adventures[adventureID], nil
}

func (m *MockStorage) ListAdventures(ctx context.Context) ([]*adventure.Adventure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	advs := make([]*adventure.Adventure, 0, len(m.adventures))
	for _, adv := range m.adventures {
		advs = append(advs, adv)
	}
	sort.Slice(advs, func(i, j int) bool { return advs[i].ID < advs[j].ID })
	return advs, nil
}

func (m *MockStorage) CreateSession(ctx context.Context, adventureID, startingLocationID, playerName string) (*session.Session, error) {
	s := session.New(adventureID, startingLocationID, playerName)
	if err := m.SaveSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *MockStorage) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	if m.GetSessionErr != nil {
		return nil, m.GetSessionErr
	}
	if m.FailGetSessionAfter > 0 {
		m.mu.Lock()
		m.getSessionCalls++
		exhausted := m.getSessionCalls > m.FailGetSessionAfter
		m.mu.Unlock()
		if exhausted {
			return nil, errors.New("storage unavailable")
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := cloneSession(s)
	return cp, nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s *session.Session) error {
	if m.SaveSessionErr != nil {
		return m.SaveSessionErr
	}
	now := time.Now().UTC()
	s.UpdatedAt = now
	s.LastPlayedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListSessions(ctx context.Context, adventureID string) ([]*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if adventureID != "" && s.AdventureID != adventureID {
			continue
		}
		sessions = append(sessions, cloneSession(s))
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// cloneSession deep-copies a session so callers can't mutate stored state
// without going through SaveSession. Mirrors the serialize boundary the
// Redis implementation gets for free.
func cloneSession(s *session.Session) *session.Session {
	cp := *s
	cp.VisitedLocations = make(map[string]bool, len(s.VisitedLocations))
	for k, v := range s.VisitedLocations {
		cp.VisitedLocations[k] = v
	}
	cp.Inventory = append([]string(nil), s.Inventory...)
	if s.LocationFlags != nil {
		cp.LocationFlags = make(map[string]map[string]bool, len(s.LocationFlags))
		for loc, flags := range s.LocationFlags {
			inner := make(map[string]bool, len(flags))
			for k, v := range flags {
				inner[k] = v
			}
			cp.LocationFlags[loc] = inner
		}
	}
	if s.GlobalFlags != nil {
		cp.GlobalFlags = make(map[string]bool, len(s.GlobalFlags))
		for k, v := range s.GlobalFlags {
			cp.GlobalFlags[k] = v
		}
	}
	return &cp
}
