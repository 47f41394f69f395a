package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atrium/cmd/identity"
	"atrium/cmd/security/password"
	"atrium/cmd/security/token"
)

func fastHasher() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func newTestService(t *testing.T) (*Service, *identity.MemoryStore, *MemoryStore) {
	t.Helper()
	users := identity.NewMemoryStore()
	sessions := NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(DefaultConfig(), users, sessions, fastHasher(), log)
	require.NoError(t, err)
	return svc, users, sessions
}

func strp(s string) *string { return &s }

func TestSignUpIssuesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	user, issued, err := svc.SignUp(ctx, now, SignUpInput{
		Email:    "ada@example.com",
		Password: "Sup3rSecret",
		Name:     strp("Ada"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "Ada", *user.Name)

	assert.NotEmpty(t, issued.SessionID)
	assert.Len(t, issued.Token, token.DefaultTokenBytes*2)
	assert.Equal(t, now.Add(DefaultTTL).Unix(), issued.ExpiresAt.Unix())
	assert.Equal(t, 1, sessions.Len())

	// Only the digest is at rest.
	row, err := sessions.GetByTokenHash(ctx, token.HashSessionTokenHex(issued.Token))
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, row.ID)
	assert.NotEqual(t, issued.Token, row.TokenHash)
}

func TestSignUpValidationCollectsAllFields(t *testing.T) {
	svc, _, sessions := newTestService(t)

	_, _, err := svc.SignUp(context.Background(), time.Now(), SignUpInput{
		Email:    "not-an-email",
		Password: "weak",
	})
	require.Error(t, err)

	var verr identity.ValidationError
	require.ErrorAs(t, err, &verr)

	paths := make(map[string]int)
	for _, f := range verr.Fields {
		paths[f.Path]++
	}
	assert.Equal(t, 1, paths["email"])
	// "weak" is short and has no uppercase letter and no digit.
	assert.Equal(t, 3, paths["password"])
	assert.Equal(t, 0, sessions.Len())
}

func TestSignUpDuplicateEmailAbortsWithoutSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, _, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	// Same address modulo case and whitespace.
	_, issued, err := svc.SignUp(ctx, now, SignUpInput{Email: "  ADA@Example.COM  ", Password: "An0therSecret"})
	require.Error(t, err)
	assert.True(t, identity.IsConflict(err))
	assert.Empty(t, issued.Token)
	assert.Equal(t, 1, sessions.Len())
}

func TestSignInRightAndWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, _, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	user, issued, err := svc.SignIn(ctx, now, SignInInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEmpty(t, issued.Token)

	_, _, err = svc.SignIn(ctx, now, SignInInput{Email: "ada@example.com", Password: "WrongSecret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownEmailIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, errUnknown := svc.SignIn(context.Background(), time.Now(), SignInInput{
		Email:    "nobody@example.com",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)

	_, _, errBlank := svc.SignIn(context.Background(), time.Now(), SignInInput{
		Email:    "   ",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, errBlank, ErrInvalidCredentials)
}

// The Postgres-backed user store must report a blank email the same
// way as an unknown one, so sign-in yields the usual credential error
// instead of surfacing a store failure.
func TestSignInBlankEmailAgainstPostgresStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	users, err := identity.NewPostgresStore(mock)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(DefaultConfig(), users, NewMemoryStore(), fastHasher(), log)
	require.NoError(t, err)

	_, _, err = svc.SignIn(context.Background(), time.Now(), SignInInput{
		Email:    "   ",
		Password: "Sup3rSecret",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInEachSessionGetsFreshToken(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, first, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, second, err := svc.SignIn(ctx, now, SignInInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, sessions.Len())

	// Both sessions resolve independently.
	for _, tok := range []string{first.Token, second.Token} {
		id, err := svc.Resolve(ctx, now, tok)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", id.Email)
	}
}

func TestResolve(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	user, issued, err := svc.SignUp(ctx, now, SignUpInput{
		Email:    "ada@example.com",
		Password: "Sup3rSecret",
		Name:     strp("Ada"),
	})
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, now, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, issued.SessionID, id.SessionID)
	require.NotNil(t, id.Name)
	assert.Equal(t, "Ada", *id.Name)

	_, err = svc.Resolve(ctx, now, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = svc.Resolve(ctx, now, "deadbeef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveExpiredDeletesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, issued, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	// Exactly at the expiry instant the session is already invalid.
	at := issued.ExpiresAt
	_, err = svc.Resolve(ctx, at, issued.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, sessions.Len())

	// A second presentation of the same token now reads as unknown.
	_, err = svc.Resolve(ctx, at, issued.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveJustBeforeExpiryStillValid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, issued, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, issued.ExpiresAt.Add(-time.Second), issued.Token)
	assert.NoError(t, err)
}

func TestSignOutRevokesAndIsIdempotent(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, issued, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, issued.Token))
	assert.Equal(t, 0, sessions.Len())

	_, err = svc.Resolve(ctx, now, issued.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revoking again, or revoking garbage, is a no-op.
	assert.NoError(t, svc.SignOut(ctx, issued.Token))
	assert.NoError(t, svc.SignOut(ctx, "deadbeef"))
	assert.NoError(t, svc.SignOut(ctx, ""))
}

func TestSignOutLeavesOtherSessionsAlone(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, first, err := svc.SignUp(ctx, now, SignUpInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	_, second, err := svc.SignIn(ctx, now, SignInInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, first.Token))
	assert.Equal(t, 1, sessions.Len())

	_, err = svc.Resolve(ctx, now, second.Token)
	assert.NoError(t, err)
}

func TestResolveOrphanedSessionReadsAsNotFound(t *testing.T) {
	users := identity.NewMemoryStore()
	sessions := NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(DefaultConfig(), users, sessions, fastHasher(), log)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now()

	// Session points at a user that does not exist.
	tok, err := token.New(32)
	require.NoError(t, err)
	_, err = sessions.Create(ctx, now, "01JUSERGONE00000000000000", token.HashSessionTokenHex(tok), now.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, now, tok)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, sessions.Len())
}

func TestReaperSweepsExpiredOnly(t *testing.T) {
	sessions := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_, err := sessions.Create(ctx, now, "u1", "hash-live", now.Add(time.Hour))
	require.NoError(t, err)
	_, err = sessions.Create(ctx, now, "u1", "hash-dead", now.Add(-time.Minute))
	require.NoError(t, err)

	n, err := sessions.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, sessions.Len())

	_, err = sessions.GetByTokenHash(ctx, "hash-live")
	assert.NoError(t, err)
	_, err = sessions.GetByTokenHash(ctx, "hash-dead")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReaperRunStopsOnCancel(t *testing.T) {
	sessions := NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewReaper(sessions, 10*time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}

func TestHashSlotRespectsContext(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Fill the semaphore so the next acquire must wait.
	for i := 0; i < cap(svc.hashSem); i++ {
		svc.hashSem <- struct{}{}
	}
	defer func() {
		for i := 0; i < cap(svc.hashSem); i++ {
			<-svc.hashSem
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := svc.SignIn(ctx, time.Now(), SignInInput{Email: "ada@example.com", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
