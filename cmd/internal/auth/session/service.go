package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"atrium/cmd/identity"
	"atrium/cmd/security/password"
	"atrium/cmd/security/token"
)

// Issued is the result of a successful token issuance. Token is the
// plaintext handed to the client; it is never stored or logged.
type Issued struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Identity is the authenticated principal attached to a resolved
// session.
type Identity struct {
	UserID    string
	Email     string
	Name      *string
	SessionID string
}

// SignUpInput carries a registration request. Password is plaintext and
// must not outlive the call.
type SignUpInput struct {
	Email    string
	Password string
	Name     *string
}

// SignInInput carries a credential check request.
type SignInInput struct {
	Email    string
	Password string
}

// Service orchestrates authentication flows over the identity and
// session stores.
type Service struct {
	cfg      Config
	users    identity.Store
	sessions Store
	hasher   password.Config
	log      *slog.Logger

	// hashSem bounds concurrent argon2id computations. Each computation
	// pins Params.MemoryKiB for its duration, so the semaphore caps the
	// aggregate hashing memory under load.
	hashSem chan struct{}

	// dummyHash is verified against unknown emails so that SignIn takes
	// comparable time whether or not the account exists.
	dummyHash string
}

// NewService wires a Service. It pre-computes the timing-equalization
// hash, which costs one argon2id computation up front.
func NewService(cfg Config, users identity.Store, sessions Store, hasher password.Config, log *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if users == nil || sessions == nil {
		return nil, errors.New("session: nil store")
	}
	if log == nil {
		log = slog.Default()
	}

	filler, err := token.New(cfg.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("session: dummy hash seed: %w", err)
	}
	dummy, err := hasher.Hash(filler)
	if err != nil {
		return nil, fmt.Errorf("session: dummy hash: %w", err)
	}

	return &Service{
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		log:       log,
		hashSem:   make(chan struct{}, cfg.MaxConcurrentHashes),
		dummyHash: dummy,
	}, nil
}

// SignUp registers a new account and opens its first session. On a
// duplicate email nothing is created and the ConflictError from the
// store is returned as is.
func (s *Service) SignUp(ctx context.Context, now time.Time, in SignUpInput) (identity.User, Issued, error) {
	if fields := validateSignUp(s.hasher, in); len(fields) > 0 {
		return identity.User{}, Issued{}, identity.ValidationError{Op: "session.SignUp", Fields: fields}
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return identity.User{}, Issued{}, fmt.Errorf("session: sign up: %w", err)
	}

	user, err := s.users.CreateUser(ctx, identity.CreateUserInput{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		return identity.User{}, Issued{}, err
	}

	issued, err := s.issue(ctx, now, user.ID)
	if err != nil {
		// The account exists but has no session; the caller decides how
		// to present that. We do not roll the user back.
		return user, Issued{}, fmt.Errorf("session: sign up: issue: %w", err)
	}
	return user, issued, nil
}

// SignIn verifies credentials and opens a session. Unknown email and
// wrong password are indistinguishable to the caller, in both error
// value and, as far as hashing allows, in timing.
func (s *Service) SignIn(ctx context.Context, now time.Time, in SignInInput) (identity.User, Issued, error) {
	auth, lookupErr := s.users.GetUserAuthByEmail(ctx, in.Email)
	if lookupErr != nil && !identity.IsNotFound(lookupErr) {
		return identity.User{}, Issued{}, fmt.Errorf("session: sign in: %w", lookupErr)
	}

	encoded := s.dummyHash
	if lookupErr == nil {
		encoded = auth.PasswordHash
	}
	ok, err := s.verifyPassword(ctx, encoded, in.Password)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			// A corrupt stored hash must read as a failed login, not an
			// oracle about the account.
			s.log.Error("session.signin.hash.corrupt", "user_id", auth.ID)
			return identity.User{}, Issued{}, ErrInvalidCredentials
		}
		return identity.User{}, Issued{}, fmt.Errorf("session: sign in: %w", err)
	}
	if lookupErr != nil || !ok {
		return identity.User{}, Issued{}, ErrInvalidCredentials
	}

	issued, err := s.issue(ctx, now, auth.ID)
	if err != nil {
		return identity.User{}, Issued{}, fmt.Errorf("session: sign in: issue: %w", err)
	}
	return auth.User, issued, nil
}

// Resolve maps a presented token onto its Identity. Expired sessions
// are deleted on sight and reported as ErrSessionExpired.
func (s *Service) Resolve(ctx context.Context, now time.Time, tok string) (Identity, error) {
	if tok == "" {
		return Identity{}, ErrNoToken
	}

	row, err := s.sessions.GetByTokenHash(ctx, token.HashSessionTokenHex(tok))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrSessionNotFound
		}
		return Identity{}, fmt.Errorf("session: resolve: %w", err)
	}

	if !row.ExpiresAt.After(now) {
		if _, derr := s.sessions.DeleteByID(ctx, row.ID); derr != nil {
			// The row stays behind but is inert: every resolution
			// re-checks expiry and the reaper retries the delete.
			s.log.Error("session.expired.delete.fail", "session_id", row.ID, "error", derr)
		}
		return Identity{}, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, row.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			// Orphaned session: the user is gone, so the token is dead.
			if _, derr := s.sessions.DeleteByID(ctx, row.ID); derr != nil {
				s.log.Error("session.orphan.delete.fail", "session_id", row.ID, "error", derr)
			}
			return Identity{}, ErrSessionNotFound
		}
		return Identity{}, fmt.Errorf("session: resolve: %w", err)
	}

	return Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		SessionID: row.ID,
	}, nil
}

// SignOut revokes the session behind the presented token. A token that
// matches nothing is a no-op, not an error.
func (s *Service) SignOut(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}
	if _, err := s.sessions.DeleteByTokenHash(ctx, token.HashSessionTokenHex(tok)); err != nil {
		return fmt.Errorf("session: sign out: %w", err)
	}
	return nil
}

// issue mints a fresh token, stores its digest, and returns the
// plaintext exactly once.
func (s *Service) issue(ctx context.Context, now time.Time, userID string) (Issued, error) {
	tok, err := token.New(s.cfg.TokenBytes)
	if err != nil {
		return Issued{}, err
	}
	expiresAt := now.Add(s.cfg.TTL)
	id, err := s.sessions.Create(ctx, now, userID, token.HashSessionTokenHex(tok), expiresAt)
	if err != nil {
		return Issued{}, err
	}
	return Issued{SessionID: id, Token: tok, ExpiresAt: expiresAt}, nil
}

func (s *Service) hashPassword(ctx context.Context, plaintext string) (string, error) {
	release, err := s.acquireHashSlot(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return s.hasher.Hash(plaintext)
}

func (s *Service) verifyPassword(ctx context.Context, encoded, plaintext string) (bool, error) {
	release, err := s.acquireHashSlot(ctx)
	if err != nil {
		return false, err
	}
	defer release()
	return s.hasher.Verify(encoded, plaintext)
}

func (s *Service) acquireHashSlot(ctx context.Context) (func(), error) {
	select {
	case s.hashSem <- struct{}{}:
		return func() { <-s.hashSem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// validateSignUp collects every field failure at once so clients can
// render them together.
func validateSignUp(hasher password.Config, in SignUpInput) []identity.FieldError {
	var fields []identity.FieldError
	if in.Email == "" || !identity.ValidEmail(in.Email) {
		fields = append(fields, identity.FieldError{Path: "email", Message: "Invalid email address"})
	}
	for _, msg := range hasher.Violations(in.Password) {
		fields = append(fields, identity.FieldError{Path: "password", Message: msg})
	}
	return fields
}
