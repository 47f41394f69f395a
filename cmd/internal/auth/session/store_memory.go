package session

import (
	"context"
	"sync"
	"time"

	"atrium/cmd/identity"
)

// MemoryStore is an in-memory session store. It backs tests and the
// database-less development mode and honors the same contracts as the
// Postgres store, including token-digest uniqueness.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]Row
	byHash map[string]string // token hash -> session id
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Row),
		byHash: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id, err := identity.NewULID(now)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byHash[tokenHash]; dup {
		return "", identity.ConflictError{Op: "session.Create", Field: "session_token"}
	}
	s.byID[id] = Row{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now.UTC(),
	}
	s.byHash[tokenHash] = id
	return id, nil
}

func (s *MemoryStore) GetByTokenHash(_ context.Context, tokenHash string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[tokenHash]
	if !ok {
		return false, nil
	}
	delete(s.byHash, tokenHash)
	delete(s.byID, id)
	return true, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byHash, row.TokenHash)
	delete(s.byID, id)
	return true, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.byID {
		if !row.ExpiresAt.After(now) {
			delete(s.byHash, row.TokenHash)
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions the store currently holds.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
