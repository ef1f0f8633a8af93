// Package store persists sessions across runs and restarts. The worker
// loads a session before each run and saves it after; backends are
// in-memory (tests, one-shot runs), JSON files, and Redis.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/taskforge/taskforge/internal/session"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// SessionStore loads and saves sessions. GetOrCreate returns the stored
// session when it exists and a fresh one otherwise; Save persists the
// full transcript (the history is append-only, so last write wins is
// safe under the scheduler's one-run-per-session guarantee).
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, sess *session.Session) error
}

// MemorySessionStore keeps live sessions in a map. Unlike the durable
// backends it hands out the same *Session instance on every Get, which
// is what the one-shot runner wants.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*session.Session)}
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) GetOrCreate(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}
	sess := session.New(id)
	m.sessions[sess.ID] = sess
	return sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}
