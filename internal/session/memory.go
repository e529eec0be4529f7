package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medicalbot/internal/helper"
)

type InMemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]*memorySession
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewInMemoryStore(ttl time.Duration, maxEntries int) *InMemoryStore {
	return &InMemoryStore{
		sessions:   make(map[string]*memorySession),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *InMemoryStore) EnsureSession(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)

	if validID(id) {
		if sess, ok := s.sessions[id]; ok {
			sess.expiresAt = now.Add(s.ttl)
			return sess, nil
		}
	}

	newID, err := helper.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess := &memorySession{store: s, id: newID, expiresAt: now.Add(s.ttl)}
	s.sessions[sess.id] = sess
	return sess, nil
}

func (s *InMemoryStore) Close() error { return nil }

// Len reports the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.sessions)
}

// sweep drops expired sessions; callers hold s.mu.
func (s *InMemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

type memorySession struct {
	store     *InMemoryStore
	id        string
	lines     []string
	expiresAt time.Time
}

func (m *memorySession) ID() string { return m.id }

func (m *memorySession) History(_ context.Context) ([]string, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *memorySession) Append(_ context.Context, lines ...string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.lines = trimTo(append(m.lines, lines...), m.store.maxEntries)
	m.expiresAt = m.store.now().Add(m.store.ttl)
	return nil
}
