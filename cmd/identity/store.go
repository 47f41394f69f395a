package identity

import (
	"context"
	"time"
)

// User is Atrium's canonical security principal.
// ID and Email are immutable after creation; PasswordHash never leaves
// the store boundary except inside UserAuth for verification.
type User struct {
	ID    string
	Email string
	Name  *string

	CreatedAt time.Time
}

// UserAuth carries the stored password hash alongside the user.
// It exists only for credential verification and must never be serialized
// toward a client.
type UserAuth struct {
	User
	PasswordHash string
}

// CreateUserInput describes a user registration request.
// PasswordHash must already be an encoded hash record; this boundary never
// sees plaintext passwords.
type CreateUserInput struct {
	Email        string
	Name         *string
	PasswordHash string
	Now          time.Time
}

// Store is the identity persistence boundary.
//
// Implementations rely on the backing store's uniqueness constraint on the
// normalized email as the authoritative duplicate guard: a violation is
// surfaced as ConflictError regardless of any earlier existence check.
type Store interface {
	// CreateUser persists a new user. Duplicate email -> ConflictError.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserAuthByEmail loads a user plus password hash by normalized email.
	// Missing user -> NotFoundError.
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	// GetUserByID loads a user by ID. Missing user -> NotFoundError.
	GetUserByID(ctx context.Context, id string) (User, error)
}
