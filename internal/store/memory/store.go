package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stakecast/internal/model"
	"stakecast/internal/store"
)

// Store is an in-memory session store with the same ordering semantics as
// the Postgres store. Used for tests and the memory backend.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]model.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]model.Session)}
}

func (s *Store) Create(_ context.Context, chatID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[chatID]; ok {
		return store.ErrConflict
	}
	s.nextID++
	s.sessions[chatID] = model.Session{
		ID:         s.nextID,
		Name:       name,
		ChatID:     chatID,
		Subscribed: true,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *Store) Get(_ context.Context, chatID string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return model.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Update(_ context.Context, chatID string, patch model.SessionPatch) error {
	if patch.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		sess.Name = *patch.Name
	}
	if patch.Subscribed != nil {
		sess.Subscribed = *patch.Subscribed
	}
	s.sessions[chatID] = sess
	return nil
}

func (s *Store) Delete(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[chatID]; !ok {
		return store.ErrNotFound
	}
	delete(s.sessions, chatID)
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]model.Session, error) {
	return s.list(func(model.Session) bool { return true }), nil
}

func (s *Store) ListActive(_ context.Context) ([]model.Session, error) {
	return s.list(func(sess model.Session) bool { return sess.Subscribed }), nil
}

func (s *Store) list(keep func(model.Session) bool) []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if keep(sess) {
			sessions = append(sessions, sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions
}
