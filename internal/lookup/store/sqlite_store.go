package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/sebastianm/inventar/internal/lookup"
)

// SQLiteStore implements lookup.Store. Table names are interpolated into
// the queries, so callers must only pass lookup.Table values that are Valid.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ListItems(ctx context.Context, t lookup.Table) ([]lookup.Item, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id, name FROM %s ORDER BY name, id", t))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t, err)
	}
	defer rows.Close()

	items := []lookup.Item{}
	for rows.Next() {
		var it lookup.Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", t, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t, err)
	}
	return items, nil
}

func (s *SQLiteStore) GetItem(ctx context.Context, t lookup.Table, id int64) (lookup.Item, error) {
	var it lookup.Item
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id, name FROM %s WHERE id = ?", t), id).Scan(&it.ID, &it.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return lookup.Item{}, apperr.NotFound(string(t), id)
	}
	if err != nil {
		return lookup.Item{}, fmt.Errorf("getting %s %d: %w", t, id, err)
	}
	return it, nil
}

func (s *SQLiteStore) FindItem(ctx context.Context, t lookup.Table, name string) (lookup.Item, error) {
	var it lookup.Item
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id, name FROM %s WHERE name = ? ORDER BY id LIMIT 1", t), name,
	).Scan(&it.ID, &it.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return lookup.Item{}, apperr.NotFound(string(t), name)
	}
	if err != nil {
		return lookup.Item{}, fmt.Errorf("finding %s %q: %w", t, name, err)
	}
	return it, nil
}

func (s *SQLiteStore) InsertItem(ctx context.Context, t lookup.Table, name string) (lookup.Item, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", t), name)
	if err != nil {
		return lookup.Item{}, fmt.Errorf("inserting into %s: %w", t, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return lookup.Item{}, fmt.Errorf("reading inserted id: %w", err)
	}
	return lookup.Item{ID: id, Name: name}, nil
}

func (s *SQLiteStore) RenameItem(ctx context.Context, t lookup.Table, id int64, name string) (lookup.Item, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ?", t), name, id)
	if err != nil {
		return lookup.Item{}, fmt.Errorf("updating %s %d: %w", t, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return lookup.Item{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return lookup.Item{}, apperr.NotFound(string(t), id)
	}
	return lookup.Item{ID: id, Name: name}, nil
}

func (s *SQLiteStore) DeleteItem(ctx context.Context, t lookup.Table, id int64) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &apperr.ConstraintError{Kind: string(t), ID: id, Reason: "still referenced by artifacts"}
		}
		return fmt.Errorf("deleting %s %d: %w", t, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(string(t), id)
	}
	return nil
}
