package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"atrium/cmd/identity"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it too, which keeps the store testable without a database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const defaultSchema = "atrium"

var pgIdentRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore persists sessions in the sessions table.
type PostgresStore struct {
	db     DB
	schema string
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore) error

// WithSchema points the store at a schema other than "atrium".
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("session: invalid schema name %q", schema)
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore wraps db as a session Store.
func NewPostgresStore(db DB, opts ...PostgresOption) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("session: nil db")
	}
	s := &PostgresStore{db: db, schema: defaultSchema}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "sessions"}.Sanitize()
}

func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id, err := identity.NewULID(now)
	if err != nil {
		return "", fmt.Errorf("session: create: %w", err)
	}
	sql := fmt.Sprintf(
		`INSERT INTO %s (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.table(),
	)
	if _, err := s.db.Exec(ctx, sql, id, userID, tokenHash, expiresAt.UTC(), now.UTC()); err != nil {
		if cerr := classifyPgError(err); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("session: create: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	sql := fmt.Sprintf(
		`SELECT id, user_id, token_hash, expires_at, created_at FROM %s WHERE token_hash = $1`,
		s.table(),
	)
	var row Row
	err := s.db.QueryRow(ctx, sql, tokenHash).Scan(
		&row.ID, &row.UserID, &row.TokenHash, &row.ExpiresAt, &row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{}, ErrSessionNotFound
		}
		return Row{}, fmt.Errorf("session: get by token hash: %w", err)
	}
	return row, nil
}

func (s *PostgresStore) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE token_hash = $1`, s.table())
	tag, err := s.db.Exec(ctx, sql, tokenHash)
	if err != nil {
		return false, fmt.Errorf("session: delete by token hash: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table())
	tag, err := s.db.Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("session: delete by id: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, s.table())
	tag, err := s.db.Exec(ctx, sql, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

// classifyPgError maps constraint violations onto the identity error
// types. A duplicate token digest means the random token collided; a
// foreign-key violation means the user row disappeared between lookup
// and insert.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == "uq_sessions_token_hash" || strings.Contains(pgErr.ConstraintName, "token_hash") {
			return identity.ConflictError{Op: "session.Create", Field: "session_token"}
		}
		return identity.ConflictError{Op: "session.Create", Field: pgErr.ConstraintName}
	case pgerrcode.ForeignKeyViolation:
		return identity.NotFoundError{Op: "session.Create", Resource: "user"}
	}
	return nil
}
