// Package store implements typed CRUD and filtered reads for every resource
// kind. The query core is generic and instantiated once per kind through a
// table descriptor; the per-kind files keep thin typed wrappers around it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mkamran/campushub/internal/apperr"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// table maps a resource kind onto its SQL table.
type table[T any] struct {
	name string
	cols string
	scan func(scanner) (*T, error)
}

// get returns a record by ID, or apperr.ErrNotFound.
func (t table[T]) get(ctx context.Context, db *sql.DB, id int64) (*T, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+t.cols+` FROM `+t.name+` WHERE id = ?`, id)
	rec, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s record: %w", t.name, err)
	}
	return rec, nil
}

// list returns records matching the filter, newest first. Ordering by
// (created_at, id) descending keeps rows created within the same second in
// commit order.
func (t table[T]) list(ctx context.Context, db *sql.DB, f *filter) ([]T, error) {
	query := `SELECT ` + t.cols + ` FROM ` + t.name
	where, args := f.clause()
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(f.limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", t.name, err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// count returns the number of rows in the table.
func (t table[T]) count(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.name, err)
	}
	return n, nil
}

// filter is an equality predicate over zero or more columns, plus the list
// shaping (substring search, limit) the read paths need.
type filter struct {
	conds []string
	args  []any
	limit int
}

func newFilter() *filter { return &filter{} }

func (f *filter) eq(col string, v any) *filter {
	f.conds = append(f.conds, col+` = ?`)
	f.args = append(f.args, v)
	return f
}

func (f *filter) notEq(col string, v any) *filter {
	f.conds = append(f.conds, col+` != ?`)
	f.args = append(f.args, v)
	return f
}

func (f *filter) contains(col, term string) *filter {
	f.conds = append(f.conds, col+` LIKE ? ESCAPE '\'`)
	f.args = append(f.args, `%`+escapeLike(term)+`%`)
	return f
}

func (f *filter) withLimit(n int) *filter {
	f.limit = n
	return f
}

func (f *filter) clause() (string, []any) {
	if len(f.conds) == 0 {
		return "", nil
	}
	where := f.conds[0]
	for _, c := range f.conds[1:] {
		where += ` AND ` + c
	}
	return where, f.args
}

func escapeLike(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// updateVersioned applies a versioned update: the row must still carry the
// version the caller read, and the write bumps it. A zero row count is
// disambiguated into not-found versus stale-version.
func updateVersioned(ctx context.Context, db *sql.DB, tableName, sets string, id, version int64, args ...any) error {
	args = append(args, id, version)
	result, err := db.ExecContext(ctx,
		`UPDATE `+tableName+` SET `+sets+`, version = version + 1 WHERE id = ? AND version = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", tableName, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", tableName, err)
	}
	if n == 0 {
		var exists int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+tableName+` WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("updating %s: %w", tableName, err)
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	return nil
}

// deleteRow hard-deletes a record. No soft-delete, no cascade.
func deleteRow(ctx context.Context, db *sql.DB, tableName string, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM `+tableName+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", tableName, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", tableName, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
