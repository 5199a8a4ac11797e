// Package catalog records uploaded filenames in Postgres.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/docinsight/internal/db"
	domcatalog "github.com/kailas-cloud/docinsight/internal/domain/catalog"
)

// querier is the subset of pgxpool.Pool the repo needs (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo is the Postgres-backed document catalog.
type Repo struct {
	q   querier
	now func() time.Time
}

// New creates a catalog repository.
func New(q querier) *Repo {
	return &Repo{q: q, now: time.Now}
}

// Add inserts filename if absent. created is false when the filename was already recorded.
func (r *Repo) Add(ctx context.Context, filename string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`INSERT INTO documents (filename, upload_date) VALUES ($1, $2) ON CONFLICT (filename) DO NOTHING`,
		filename, r.now().UTC(),
	)
	if err != nil {
		return false, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("insert document %q: %w", filename, err)}
	}
	return tag.RowsAffected() == 1, nil
}

// List returns every catalog entry, oldest upload first.
func (r *Repo) List(ctx context.Context) ([]domcatalog.Document, error) {
	rows, err := r.q.Query(ctx, `SELECT filename, upload_date FROM documents ORDER BY upload_date, id`)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("list documents: %w", err)}
	}
	defer rows.Close()

	out := make([]domcatalog.Document, 0)
	for rows.Next() {
		var d domcatalog.Document
		if err := rows.Scan(&d.Filename, &d.UploadedAt); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("scan document: %w", err)}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("iterate documents: %w", err)}
	}
	return out, nil
}
