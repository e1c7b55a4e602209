// Package sequence implements the named counters that feed generated
// identity codes.
package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/database"
)

// ArtifactCode is the counter behind artifact codes.
const ArtifactCode = "artifact_code_seq"

const codeWidth = 9

// Querier is satisfied by both *sql.DB and *sql.Tx so Next can join the
// caller's transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Next increments the named counter and returns its new value.
func Next(ctx context.Context, q Querier, name string) (int64, error) {
	var v int64
	err := q.QueryRowContext(ctx,
		"UPDATE sequences SET current_value = current_value + 1 WHERE name = ? RETURNING current_value",
		name,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("sequence", name)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing sequence %q: %w", name, err)
	}
	return v, nil
}

// FormatCode renders a counter value as a zero-padded nine digit code.
func FormatCode(n int64) string {
	return fmt.Sprintf("%0*d", codeWidth, n)
}

// Generator hands out codes from one named counter, one transaction per
// call.
type Generator struct {
	db   *sql.DB
	name string
}

// NewGenerator creates a Generator over the named counter.
func NewGenerator(db *sql.DB, name string) *Generator {
	return &Generator{db: db, name: name}
}

// NextCode increments the counter and returns the formatted code.
func (g *Generator) NextCode(ctx context.Context) (string, error) {
	var n int64
	err := database.WithTx(ctx, g.db, func(tx *sql.Tx) error {
		var err error
		n, err = Next(ctx, tx, g.name)
		return err
	})
	if err != nil {
		return "", err
	}
	return FormatCode(n), nil
}

// Current returns the last value handed out.
func (g *Generator) Current(ctx context.Context) (int64, error) {
	var v int64
	err := g.db.QueryRowContext(ctx, "SELECT current_value FROM sequences WHERE name = ?", g.name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("sequence", g.name)
	}
	if err != nil {
		return 0, fmt.Errorf("reading sequence %q: %w", g.name, err)
	}
	return v, nil
}

// Reset moves the counter forward so the next code is value+1. Values
// below the current one are rejected, as codes are never reissued.
func (g *Generator) Reset(ctx context.Context, value int64) error {
	if value < 0 {
		return apperr.Invalid("value", "must not be negative")
	}
	res, err := g.db.ExecContext(ctx,
		"UPDATE sequences SET current_value = ? WHERE name = ? AND current_value <= ?",
		value, g.name, value,
	)
	if err != nil {
		return fmt.Errorf("resetting sequence %q: %w", g.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	cur, err := g.Current(ctx)
	if err != nil {
		return err
	}
	return apperr.Invalid("value", fmt.Sprintf("must not be below the current value %d", cur))
}
