// Package user stores accounts in Postgres next to the document catalog.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/docinsight/internal/db"
	"github.com/kailas-cloud/docinsight/internal/domain"
	domuser "github.com/kailas-cloud/docinsight/internal/domain/user"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is the Postgres-backed user store.
type Repo struct {
	q querier
}

// New creates a user repository.
func New(q querier) *Repo {
	return &Repo{q: q}
}

// Create inserts u. A taken email yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u domuser.User) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC(),
	)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("user %q: %w", u.Email, domain.ErrAlreadyExists)
	}
	return &db.Error{Op: db.OpInsert, Err: fmt.Errorf("insert user: %w", err)}
}

// ByEmail loads the account for a normalized email. Unknown emails yield domain.ErrNotFound.
func (r *Repo) ByEmail(ctx context.Context, email string) (domuser.User, error) {
	var u domuser.User
	err := r.q.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domuser.User{}, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return domuser.User{}, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("select user: %w", err)}
	}
	return u, nil
}
