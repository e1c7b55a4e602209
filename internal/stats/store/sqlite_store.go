package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sebastianm/inventar/internal/stats"
)

// SQLiteStore implements stats.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Totals(ctx context.Context) (stats.Totals, error) {
	var t stats.Totals
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM artifacts),
		(SELECT COUNT(*) FROM artifact_images),
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM storage_locations),
		(SELECT COUNT(*) FROM historical_periods),
		(SELECT COUNT(*) FROM materials)`,
	).Scan(&t.Artifacts, &t.Images, &t.Users, &t.StorageLocations, &t.Periods, &t.Materials)
	if err != nil {
		return stats.Totals{}, fmt.Errorf("counting rows: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) CountByType(ctx context.Context) ([]stats.Bucket, error) {
	return s.buckets(ctx, "artifact_types", "artifact_type_id")
}

func (s *SQLiteStore) CountByPreservationState(ctx context.Context) ([]stats.Bucket, error) {
	return s.buckets(ctx, "preservation_states", "preservation_state_id")
}

// buckets counts artifacts per row of a lookup table. Artifacts without a
// reference are not counted; lookup rows with no artifacts are omitted.
func (s *SQLiteStore) buckets(ctx context.Context, table, column string) ([]stats.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT l.name, COUNT(a.id) FROM artifacts a
		JOIN %s l ON a.%s = l.id
		GROUP BY l.id, l.name
		ORDER BY COUNT(a.id) DESC, l.name`, table, column))
	if err != nil {
		return nil, fmt.Errorf("grouping artifacts by %s: %w", table, err)
	}
	defer rows.Close()

	out := []stats.Bucket{}
	for rows.Next() {
		var b stats.Bucket
		if err := rows.Scan(&b.Name, &b.Count); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buckets: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CountStateMatches(ctx context.Context, keywords []string) (int, error) {
	if len(keywords) == 0 {
		return 0, nil
	}
	conds := make([]string, len(keywords))
	args := make([]any, len(keywords))
	for i, k := range keywords {
		conds[i] = "instr(lower(s.name), lower(?)) > 0"
		args[i] = k
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(a.id) FROM artifacts a
		JOIN preservation_states s ON a.preservation_state_id = s.id
		WHERE `+strings.Join(conds, " OR "),
		args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting maintenance matches: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) RecentArtifacts(ctx context.Context, limit int) ([]stats.RecentArtifact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artifact_code, name FROM artifacts ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent artifacts: %w", err)
	}
	defer rows.Close()

	out := []stats.RecentArtifact{}
	for rows.Next() {
		var r stats.RecentArtifact
		if err := rows.Scan(&r.ID, &r.Code, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning recent artifact: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent artifacts: %w", err)
	}
	return out, nil
}
