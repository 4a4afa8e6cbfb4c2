// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mostafamaarof/AI-Survey/answers"
	"github.com/mostafamaarof/AI-Survey/models"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrSubmitLocked = errors.New("session submission in progress")
	ErrSubmitted    = errors.New("session already submitted")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Session is one respondent's wizard between requests.
type Session struct {
	ID        string               `json:"id"`
	Survey    models.SurveyPayload `json:"survey"`
	Token     *string              `json:"token"`
	State     answers.State        `json:"state"`
	Current   int                  `json:"current"`
	Submitted bool                 `json:"submitted"`
	// RespondentID is set once the session was submitted.
	RespondentID string    `json:"respondent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store keeps sessions. Once a submitted session is saved, later saves fail
// with ErrSubmitted. AcquireSubmit takes a per-session lock that is held
// for the duration of one submission; release must be called to free it.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	AcquireSubmit(ctx context.Context, id string) (release func(), err error)
}

type memoryEntry struct {
	data      Session
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired sessions are dropped on
// access.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	locks    map[string]struct{}
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]struct{}),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s := e.data
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[s.ID]; ok && e.data.Submitted && !m.now().After(e.expiresAt) {
		return ErrSubmitted
	}
	m.sessions[s.ID] = memoryEntry{data: *s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) AcquireSubmit(_ context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return nil, ErrSubmitLocked
	}
	m.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}
