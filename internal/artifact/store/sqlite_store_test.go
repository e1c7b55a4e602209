package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/artifact"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func insertLookup(t *testing.T, s *SQLiteStore, table, name string) *int64 {
	t.Helper()
	res, err := s.db.Exec("INSERT INTO "+table+" (name) VALUES (?)", name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return &id
}

func fields(name, inv string) artifact.Fields {
	return artifact.Fields{Name: name, InventoryNumber: inv, Quantity: 1, WeightUnit: "g"}
}

func codes(sums []artifact.Summary) []string {
	out := make([]string, len(sums))
	for i, s := range sums {
		out[i] = s.Code
	}
	return out
}

func TestSQLiteStore(t *testing.T) {
	t.Run("codes on an empty store", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		a1, err := s.CreateArtifact(ctx, fields("Bronze Vase", "100/A"))
		require.NoError(t, err)
		assert.Equal(t, "000000001", a1.Code)

		a2, err := s.CreateArtifact(ctx, fields("Clay Lamp", "101/A"))
		require.NoError(t, err)
		assert.Equal(t, "000000002", a2.Code)
		assert.Greater(t, a2.ID, a1.ID)
	})

	t.Run("get returns stored fields", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		mat := insertLookup(t, s, "materials", "Bronze")
		f := fields("Bronze Vase", "100/A")
		f.Source = "Excavation 2023"
		f.MaterialID = mat
		f.Dimensions = artifact.Dimensions{Length: 12.5, Diameter: 4}
		f.Weight = 1.2
		f.WeightUnit = "kg"
		f.StorageRow = "R-1"
		f.StorageColumn = "C-4"
		f.CardEditor = "Mona"
		f.EditingDate = "2024-03-01"

		created, err := s.CreateArtifact(ctx, f)
		require.NoError(t, err)

		got, err := s.GetArtifact(ctx, created.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(f, got.Fields); diff != "" {
			t.Errorf("fields mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, created.CreatedAt, got.CreatedAt)
		assert.Nil(t, got.TypeID)
	})

	t.Run("view resolves lookup names", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		f := fields("Bronze Vase", "100/A")
		f.TypeID = insertLookup(t, s, "artifact_types", "Vessel")
		f.MaterialID = insertLookup(t, s, "materials", "Bronze")
		f.PeriodID = insertLookup(t, s, "historical_periods", "Roman")
		f.PreservationStateID = insertLookup(t, s, "preservation_states", "Good")
		f.RestorationMethodID = insertLookup(t, s, "restoration_methods", "Cleaning")
		f.StorageLocationID = insertLookup(t, s, "storage_locations", "Vault A")

		a, err := s.CreateArtifact(ctx, f)
		require.NoError(t, err)

		v, err := s.GetArtifactView(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Vessel", v.TypeName)
		assert.Equal(t, "Bronze", v.MaterialName)
		assert.Equal(t, "Roman", v.PeriodName)
		assert.Equal(t, "Good", v.PreservationStateName)
		assert.Equal(t, "Cleaning", v.RestorationMethodName)
		assert.Equal(t, "Vault A", v.StorageLocationName)
		assert.Equal(t, "000000001", v.Code)
	})

	t.Run("view with nothing selected", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		a, err := s.CreateArtifact(ctx, fields("Shard", "1"))
		require.NoError(t, err)

		v, err := s.GetArtifactView(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, v.TypeName)
		assert.Empty(t, v.StorageLocationName)
	})

	t.Run("get not found", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		_, err := s.GetArtifact(ctx, 99)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = s.GetArtifactView(ctx, 99)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("missing lookup reference is a validation error and consumes no code", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		f := fields("Bronze Vase", "100/A")
		missing := int64(42)
		f.MaterialID = &missing

		_, err := s.CreateArtifact(ctx, f)
		assert.ErrorIs(t, err, apperr.ErrValidation)

		a, err := s.CreateArtifact(ctx, fields("Bronze Vase", "100/A"))
		require.NoError(t, err)
		assert.Equal(t, "000000001", a.Code)
	})

	t.Run("update keeps code", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		a, err := s.CreateArtifact(ctx, fields("Bronze Vase", "100/A"))
		require.NoError(t, err)

		f := fields("Bronze Vase (restored)", "100/B")
		f.Quantity = 2
		updated, err := s.UpdateArtifact(ctx, a.ID, f)
		require.NoError(t, err)
		assert.Equal(t, a.Code, updated.Code)
		assert.Equal(t, "Bronze Vase (restored)", updated.Name)
		assert.Equal(t, "100/B", updated.InventoryNumber)
		assert.Equal(t, 2, updated.Quantity)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("update not found", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.UpdateArtifact(context.Background(), 5, fields("x", "y"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("search by name code and inventory number newest first", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		for _, in := range []artifact.Fields{
			fields("Bronze Vase", "100/A"),
			fields("Clay Lamp", "200/B"),
			fields("Bronze Coin", "300/C"),
			fields("Manuscript", "1000/D"),
		} {
			_, err := s.CreateArtifact(ctx, in)
			require.NoError(t, err)
		}

		got, err := s.SearchArtifacts(ctx, "bronze")
		require.NoError(t, err)
		assert.Equal(t, []string{"000000003", "000000001"}, codes(got))

		got, err = s.SearchArtifacts(ctx, "000000002")
		require.NoError(t, err)
		assert.Equal(t, []string{"000000002"}, codes(got))

		got, err = s.SearchArtifacts(ctx, "00/")
		require.NoError(t, err)
		assert.Equal(t, []string{"000000004", "000000003", "000000002", "000000001"}, codes(got))

		got, err = s.SearchArtifacts(ctx, "")
		require.NoError(t, err)
		assert.Len(t, got, 4)

		got, err = s.SearchArtifacts(ctx, "nothing like this")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		_, err := s.CreateArtifact(ctx, fields("Jar", "A_1"))
		require.NoError(t, err)
		_, err = s.CreateArtifact(ctx, fields("Jug", "AB1"))
		require.NoError(t, err)
		_, err = s.CreateArtifact(ctx, fields("100% bronze", "X"))
		require.NoError(t, err)

		got, err := s.SearchArtifacts(ctx, "A_1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Jar", got[0].Name)

		got, err = s.SearchArtifacts(ctx, "%")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "100% bronze", got[0].Name)
	})

	t.Run("delete cascades images", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		a, err := s.CreateArtifact(ctx, fields("Bronze Vase", "100/A"))
		require.NoError(t, err)
		_, err = s.db.Exec("INSERT INTO artifact_images (artifact_id, image_path, uploaded_at) VALUES (?, 'a.jpg', 'x'), (?, 'b.jpg', 'x')", a.ID, a.ID)
		require.NoError(t, err)

		require.NoError(t, s.DeleteArtifact(ctx, a.ID))

		var n int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM artifact_images WHERE artifact_id = ?", a.ID).Scan(&n))
		assert.Zero(t, n)

		assert.ErrorIs(t, s.DeleteArtifact(ctx, a.ID), apperr.ErrNotFound)
	})

	t.Run("list views and count", func(t *testing.T) {
		s := newTestStore(t)
		ctx := context.Background()

		for _, n := range []string{"a", "b", "c"} {
			_, err := s.CreateArtifact(ctx, fields(n, n))
			require.NoError(t, err)
		}

		views, err := s.ListArtifactViews(ctx)
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, "a", views[0].Name)

		n, err := s.CountArtifacts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%%", likePattern(""))
	assert.Equal(t, `%a\%b\_c\\%`, likePattern(`a%b_c\`))
}
