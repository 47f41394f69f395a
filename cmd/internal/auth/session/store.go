package session

import (
	"context"
	"time"
)

// Row is a stored session. TokenHash is the hex digest of the opaque
// token; the token itself is never persisted.
type Row struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store persists sessions keyed by token digest.
type Store interface {
	// Create inserts a session for userID and returns its ID.
	Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error)

	// GetByTokenHash returns the session with the given token digest,
	// or ErrSessionNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (Row, error)

	// DeleteByTokenHash removes the session with the given token
	// digest. It reports whether a row was removed; a missing row is
	// not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	// DeleteByID removes the session with the given ID. A missing row
	// is not an error.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteExpired removes every session with expires_at <= now and
	// returns how many rows were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
