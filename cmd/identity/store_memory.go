package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for DB-less development and tests.
// It enforces the same email uniqueness contract as the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]UserAuth
	byEmail map[string]string // email_norm -> user id
}

// NewMemoryStore creates an empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]UserAuth),
		byEmail: make(map[string]string),
	}
}

// CreateUser persists a new user. Duplicate email -> ConflictError.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	emailNorm := NormalizeEmail(email)
	name := trimPtr(in.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[emailNorm]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:        userID,
		Email:     email,
		Name:      name,
		CreatedAt: now,
	}
	s.byID[userID] = UserAuth{User: u, PasswordHash: in.PasswordHash}
	s.byEmail[emailNorm] = userID

	return u, nil
}

// GetUserAuthByEmail loads a user plus password hash by normalized email.
func (s *MemoryStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

// GetUserByID loads a user by ID.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return ua.User, nil
}
