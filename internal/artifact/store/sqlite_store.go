package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/sebastianm/inventar/internal/sequence"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

const artifactColumns = `a.id, a.artifact_code, a.inventory_number, a.name, a.source, a.quantity,
	a.description, a.notes,
	a.artifact_type_id, a.material_id, a.historical_period_id, a.preservation_state_id,
	a.restoration_method_id, a.storage_location_id,
	a.restoration_date, a.storage_row, a.storage_col,
	a.dim_length, a.dim_width, a.dim_diameter, a.dim_thickness, a.weight, a.weight_unit,
	a.card_editor, a.editing_date, a.created_at, a.updated_at`

const viewColumns = artifactColumns + `,
	COALESCE(t.name, ''), COALESCE(m.name, ''), COALESCE(p.name, ''), COALESCE(ps.name, ''),
	COALESCE(rm.name, ''), COALESCE(sl.name, '')`

const viewJoins = `FROM artifacts a
	LEFT JOIN artifact_types t ON a.artifact_type_id = t.id
	LEFT JOIN materials m ON a.material_id = m.id
	LEFT JOIN historical_periods p ON a.historical_period_id = p.id
	LEFT JOIN preservation_states ps ON a.preservation_state_id = ps.id
	LEFT JOIN restoration_methods rm ON a.restoration_method_id = rm.id
	LEFT JOIN storage_locations sl ON a.storage_location_id = sl.id`

// SQLiteStore implements artifact.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateArtifact(ctx context.Context, f artifact.Fields) (artifact.Artifact, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	nowStr := now.Format(timeFormat)

	var a artifact.Artifact
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		n, err := sequence.Next(ctx, tx, sequence.ArtifactCode)
		if err != nil {
			return err
		}
		code := sequence.FormatCode(n)

		res, err := tx.ExecContext(ctx, `INSERT INTO artifacts (
				artifact_code, inventory_number, name, source, quantity, description, notes,
				artifact_type_id, material_id, historical_period_id, preservation_state_id,
				restoration_method_id, storage_location_id,
				restoration_date, storage_row, storage_col,
				dim_length, dim_width, dim_diameter, dim_thickness, weight, weight_unit,
				card_editor, editing_date, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append([]any{code}, append(fieldArgs(f), nowStr, nowStr)...)...,
		)
		if err != nil {
			return translateWriteError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading inserted id: %w", err)
		}

		a = artifact.Artifact{ID: id, Code: code, Fields: f, CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return artifact.Artifact{}, err
	}
	return a, nil
}

func (s *SQLiteStore) UpdateArtifact(ctx context.Context, id int64, f artifact.Fields) (artifact.Artifact, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `UPDATE artifacts SET
			inventory_number = ?, name = ?, source = ?, quantity = ?, description = ?, notes = ?,
			artifact_type_id = ?, material_id = ?, historical_period_id = ?, preservation_state_id = ?,
			restoration_method_id = ?, storage_location_id = ?,
			restoration_date = ?, storage_row = ?, storage_col = ?,
			dim_length = ?, dim_width = ?, dim_diameter = ?, dim_thickness = ?, weight = ?, weight_unit = ?,
			card_editor = ?, editing_date = ?, updated_at = ?
		WHERE id = ?`,
		append(fieldArgs(f), now.Format(timeFormat), id)...,
	)
	if err != nil {
		return artifact.Artifact{}, translateWriteError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return artifact.Artifact{}, apperr.NotFound("artifact", id)
	}

	return s.GetArtifact(ctx, id)
}

func (s *SQLiteStore) GetArtifact(ctx context.Context, id int64) (artifact.Artifact, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+artifactColumns+" FROM artifacts a WHERE a.id = ?", id)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return artifact.Artifact{}, apperr.NotFound("artifact", id)
	}
	if err != nil {
		return artifact.Artifact{}, err
	}
	return a, nil
}

func (s *SQLiteStore) GetArtifactView(ctx context.Context, id int64) (artifact.View, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+viewColumns+" "+viewJoins+" WHERE a.id = ?", id)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return artifact.View{}, apperr.NotFound("artifact", id)
	}
	if err != nil {
		return artifact.View{}, err
	}
	return v, nil
}

func (s *SQLiteStore) SearchArtifacts(ctx context.Context, text string) ([]artifact.Summary, error) {
	pattern := likePattern(text)
	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.artifact_code, a.inventory_number, a.name,
			COALESCE(t.name, ''), COALESCE(m.name, ''), COALESCE(p.name, ''), COALESCE(sl.name, ''),
			a.created_at
		FROM artifacts a
		LEFT JOIN artifact_types t ON a.artifact_type_id = t.id
		LEFT JOIN materials m ON a.material_id = m.id
		LEFT JOIN historical_periods p ON a.historical_period_id = p.id
		LEFT JOIN storage_locations sl ON a.storage_location_id = sl.id
		WHERE a.name LIKE ? ESCAPE '\'
			OR a.artifact_code LIKE ? ESCAPE '\'
			OR a.inventory_number LIKE ? ESCAPE '\'
		ORDER BY a.created_at DESC, a.id DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching artifacts: %w", err)
	}
	defer rows.Close()

	out := []artifact.Summary{}
	for rows.Next() {
		var (
			sum     artifact.Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Code, &sum.InventoryNumber, &sum.Name,
			&sum.TypeName, &sum.MaterialName, &sum.PeriodName, &sum.StorageLocationName,
			&created); err != nil {
			return nil, fmt.Errorf("scanning artifact summary: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(timeFormat, created)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ListArtifactViews(ctx context.Context) ([]artifact.View, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+viewColumns+" "+viewJoins+" ORDER BY a.id")
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	out := []artifact.View{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CountArtifacts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting artifacts: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) DeleteArtifact(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artifacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting artifact %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("artifact", id)
	}
	return nil
}

// fieldArgs lists f in the column order shared by INSERT and UPDATE.
func fieldArgs(f artifact.Fields) []any {
	return []any{
		f.InventoryNumber, f.Name, f.Source, f.Quantity, f.Description, f.Notes,
		f.TypeID, f.MaterialID, f.PeriodID, f.PreservationStateID,
		f.RestorationMethodID, f.StorageLocationID,
		f.RestorationDate, f.StorageRow, f.StorageColumn,
		f.Dimensions.Length, f.Dimensions.Width, f.Dimensions.Diameter, f.Dimensions.Thickness,
		f.Weight, f.WeightUnit,
		f.CardEditor, f.EditingDate,
	}
}

func translateWriteError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return apperr.Invalid("lookup reference", "refers to a lookup row that does not exist")
	case database.IsUniqueViolation(err):
		return &apperr.ConstraintError{Kind: "artifact", Reason: "artifact code already in use"}
	default:
		return fmt.Errorf("writing artifact: %w", err)
	}
}

func likePattern(text string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + esc.Replace(text) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func artifactDest(a *artifact.Artifact, refs *[6]sql.NullInt64, created, updated *string) []any {
	return []any{
		&a.ID, &a.Code, &a.InventoryNumber, &a.Name, &a.Source, &a.Quantity,
		&a.Description, &a.Notes,
		&refs[0], &refs[1], &refs[2], &refs[3], &refs[4], &refs[5],
		&a.RestorationDate, &a.StorageRow, &a.StorageColumn,
		&a.Dimensions.Length, &a.Dimensions.Width, &a.Dimensions.Diameter, &a.Dimensions.Thickness,
		&a.Weight, &a.WeightUnit,
		&a.CardEditor, &a.EditingDate, created, updated,
	}
}

func finishArtifact(a *artifact.Artifact, refs [6]sql.NullInt64, created, updated string) {
	a.TypeID = nullableID(refs[0])
	a.MaterialID = nullableID(refs[1])
	a.PeriodID = nullableID(refs[2])
	a.PreservationStateID = nullableID(refs[3])
	a.RestorationMethodID = nullableID(refs[4])
	a.StorageLocationID = nullableID(refs[5])
	a.CreatedAt, _ = time.Parse(timeFormat, created)
	a.UpdatedAt, _ = time.Parse(timeFormat, updated)
}

func scanArtifact(sc scanner) (artifact.Artifact, error) {
	var (
		a                artifact.Artifact
		refs             [6]sql.NullInt64
		created, updated string
	)
	if err := sc.Scan(artifactDest(&a, &refs, &created, &updated)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return artifact.Artifact{}, err
		}
		return artifact.Artifact{}, fmt.Errorf("scanning artifact row: %w", err)
	}
	finishArtifact(&a, refs, created, updated)
	return a, nil
}

func scanView(sc scanner) (artifact.View, error) {
	var (
		v                artifact.View
		refs             [6]sql.NullInt64
		created, updated string
	)
	dest := append(artifactDest(&v.Artifact, &refs, &created, &updated),
		&v.TypeName, &v.MaterialName, &v.PeriodName, &v.PreservationStateName,
		&v.RestorationMethodName, &v.StorageLocationName,
	)
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return artifact.View{}, err
		}
		return artifact.View{}, fmt.Errorf("scanning artifact row: %w", err)
	}
	finishArtifact(&v.Artifact, refs, created, updated)
	return v, nil
}

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
