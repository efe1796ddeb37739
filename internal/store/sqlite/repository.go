// Package sqlite stores records in a named in-memory SQLite database.
//
// The database lives only as long as the Repository that opened it; it is
// never backed by a file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

var ErrInvalidName = errors.New("invalid in-memory database name")

type Repository struct {
	db *sql.DB
}

// MemoryDSN returns the shared-cache in-memory DSN for name.
func MemoryDSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared"
}

func NewRepository(name string) (*Repository, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	dsn := MemoryDSN(name)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The in-memory database is dropped when its last connection closes,
	// so keep exactly one connection open for the repository's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements store.RecordWriter
func (r *Repository) Add(ctx context.Context, rec core.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, title, date, amount) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Title, rec.Date.ISO(), rec.Amount)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"kind", rec.Kind,
		"amount", rec.Amount)
	return nil
}

// Remove implements store.RecordRemover
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record rows affected: %w", err)
	}
	return n > 0, nil
}

// List implements store.RecordLister
func (r *Repository) List(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, title, date, amount FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec        core.Record
			kind, date string
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.Title, &date, &rec.Amount); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Kind = core.Kind(kind)
		if rec.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse record date %q: %w", date, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
