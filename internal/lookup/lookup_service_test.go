package lookup

import (
	"context"
	"sort"
	"testing"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for testing.
type memStore struct {
	next   int64
	tables map[Table]map[int64]string
	inUse  map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[Table]map[int64]string), inUse: make(map[int64]bool)}
}

func (m *memStore) table(t Table) map[int64]string {
	if m.tables[t] == nil {
		m.tables[t] = make(map[int64]string)
	}
	return m.tables[t]
}

func (m *memStore) ListItems(_ context.Context, t Table) ([]Item, error) {
	out := []Item{}
	for id, name := range m.table(t) {
		out = append(out, Item{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetItem(_ context.Context, t Table, id int64) (Item, error) {
	name, ok := m.table(t)[id]
	if !ok {
		return Item{}, apperr.NotFound(string(t), id)
	}
	return Item{ID: id, Name: name}, nil
}

func (m *memStore) FindItem(_ context.Context, t Table, name string) (Item, error) {
	for id, n := range m.table(t) {
		if n == name {
			return Item{ID: id, Name: n}, nil
		}
	}
	return Item{}, apperr.NotFound(string(t), name)
}

func (m *memStore) InsertItem(_ context.Context, t Table, name string) (Item, error) {
	m.next++
	m.table(t)[m.next] = name
	return Item{ID: m.next, Name: name}, nil
}

func (m *memStore) RenameItem(_ context.Context, t Table, id int64, name string) (Item, error) {
	if _, ok := m.table(t)[id]; !ok {
		return Item{}, apperr.NotFound(string(t), id)
	}
	m.table(t)[id] = name
	return Item{ID: id, Name: name}, nil
}

func (m *memStore) DeleteItem(_ context.Context, t Table, id int64) error {
	if _, ok := m.table(t)[id]; !ok {
		return apperr.NotFound(string(t), id)
	}
	if m.inUse[id] {
		return &apperr.ConstraintError{Kind: string(t), ID: id, Reason: "still referenced by artifacts"}
	}
	delete(m.table(t), id)
	return nil
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		in   string
		want Table
	}{
		{"artifact_types", Types},
		{"type", Types},
		{" Material ", Materials},
		{"period", Periods},
		{"state", PreservationStates},
		{"method", RestorationMethods},
		{"location", StorageLocations},
		{"storage_locations", StorageLocations},
	}
	for _, tt := range tests {
		got, err := ParseTable(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTable("users")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLookupService(t *testing.T) {
	t.Run("add and list ordered by name", func(t *testing.T) {
		svc := NewLookupService(newMemStore(), nil)
		ctx := context.Background()

		_, err := svc.Add(ctx, Materials, "Stone")
		require.NoError(t, err)
		_, err = svc.Add(ctx, Materials, "  Bronze  ")
		require.NoError(t, err)

		items, err := svc.List(ctx, Materials)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Bronze", items[0].Name)
		assert.Equal(t, "Stone", items[1].Name)
	})

	t.Run("add rejects blank name", func(t *testing.T) {
		svc := NewLookupService(newMemStore(), nil)

		_, err := svc.Add(context.Background(), Types, "   ")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("rejects unknown table", func(t *testing.T) {
		svc := NewLookupService(newMemStore(), nil)
		ctx := context.Background()

		_, err := svc.List(ctx, Table("users"))
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = svc.Add(ctx, Table("users; DROP TABLE artifacts"), "x")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.ErrorIs(t, svc.Delete(ctx, Table("users"), 1), apperr.ErrValidation)
	})

	t.Run("rename", func(t *testing.T) {
		svc := NewLookupService(newMemStore(), nil)
		ctx := context.Background()

		it, err := svc.Add(ctx, Periods, "Roman")
		require.NoError(t, err)

		renamed, err := svc.Rename(ctx, Periods, it.ID, "Late Roman")
		require.NoError(t, err)
		assert.Equal(t, "Late Roman", renamed.Name)

		_, err = svc.Rename(ctx, Periods, it.ID, "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = svc.Rename(ctx, Periods, 999, "x")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("delete referenced is a constraint error", func(t *testing.T) {
		store := newMemStore()
		svc := NewLookupService(store, nil)
		ctx := context.Background()

		it, err := svc.Add(ctx, StorageLocations, "Vault A")
		require.NoError(t, err)
		store.inUse[it.ID] = true

		err = svc.Delete(ctx, StorageLocations, it.ID)
		assert.ErrorIs(t, err, apperr.ErrConstraint)

		store.inUse[it.ID] = false
		require.NoError(t, svc.Delete(ctx, StorageLocations, it.ID))
	})

	t.Run("find by name", func(t *testing.T) {
		svc := NewLookupService(newMemStore(), nil)
		ctx := context.Background()

		it, err := svc.Add(ctx, Types, "Coin")
		require.NoError(t, err)

		got, err := svc.FindByName(ctx, Types, " Coin ")
		require.NoError(t, err)
		assert.Equal(t, it.ID, got.ID)

		_, err = svc.FindByName(ctx, Types, "Sword")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
