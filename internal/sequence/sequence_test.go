package sequence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "000000001", FormatCode(1))
	assert.Equal(t, "000000042", FormatCode(42))
	assert.Equal(t, "123456789", FormatCode(123456789))
	assert.Len(t, FormatCode(999), 9)
}

func TestGenerator(t *testing.T) {
	t.Run("codes start at one on a fresh store", func(t *testing.T) {
		g := NewGenerator(newTestDB(t), ArtifactCode)
		ctx := context.Background()

		code, err := g.NextCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "000000001", code)

		code, err = g.NextCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "000000002", code)
	})

	t.Run("strictly increasing", func(t *testing.T) {
		g := NewGenerator(newTestDB(t), ArtifactCode)
		ctx := context.Background()

		prev := ""
		for i := 0; i < 25; i++ {
			code, err := g.NextCode(ctx)
			require.NoError(t, err)
			require.Len(t, code, 9)
			assert.Greater(t, code, prev)
			prev = code
		}

		cur, err := g.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(25), cur)
	})

	t.Run("reset", func(t *testing.T) {
		g := NewGenerator(newTestDB(t), ArtifactCode)
		ctx := context.Background()

		require.NoError(t, g.Reset(ctx, 50))
		code, err := g.NextCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "000000051", code)

		err = g.Reset(ctx, -1)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("reset never moves backwards", func(t *testing.T) {
		g := NewGenerator(newTestDB(t), ArtifactCode)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := g.NextCode(ctx)
			require.NoError(t, err)
		}

		err := g.Reset(ctx, 0)
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "value", ve.Field)

		require.NoError(t, g.Reset(ctx, 3))
		code, err := g.NextCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "000000004", code)
	})

	t.Run("unknown counter", func(t *testing.T) {
		g := NewGenerator(newTestDB(t), "nope")
		ctx := context.Background()

		_, err := g.NextCode(ctx)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = g.Current(ctx)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.ErrorIs(t, g.Reset(ctx, 1), apperr.ErrNotFound)
	})

	t.Run("rolled back transaction does not consume a value", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		boom := errors.New("boom")
		err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := Next(ctx, tx, ArtifactCode); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		code, err := NewGenerator(db, ArtifactCode).NextCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "000000001", code)
	})
}
